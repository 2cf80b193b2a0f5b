package resolve

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
)

// PipTools adapts pip-compile (from the pip-tools project) to the
// Solver interface. Constraints are written to a temporary .in file,
// pip-compile is run once, and its pinned output is parsed back.
type PipTools struct {
	// Command is the pip-compile executable, default "pip-compile".
	Command string
}

// NewPipTools creates the default pip-compile adapter.
func NewPipTools() *PipTools {
	return &PipTools{Command: "pip-compile"}
}

// Solve writes the constraints to a temp file and runs pip-compile in
// dry-run mode, returning the pinned nodes it reports.
func (p *PipTools) Solve(ctx context.Context, constraints []Constraint, indexURL string) ([]Node, error) {
	out, err := p.run(ctx, constraints, indexURL)
	if err != nil {
		return nil, err
	}
	return parsePinned(out), nil
}

// ResolveHashes re-runs pip-compile with hash generation for the given
// nodes, pinned exactly, and parses the per-node hash lists.
func (p *PipTools) ResolveHashes(ctx context.Context, nodes []Node) (map[Node][]string, error) {
	constraints := make([]Constraint, 0, len(nodes))
	for _, n := range nodes {
		constraints = append(constraints, Constraint{Line: n.Name + n.Specifier})
	}
	out, err := p.run(ctx, constraints, "", "--generate-hashes")
	if err != nil {
		return nil, err
	}
	return parseHashes(out), nil
}

func (p *PipTools) run(ctx context.Context, constraints []Constraint, indexURL string, extraArgs ...string) (string, error) {
	in, err := os.CreateTemp("", "pipelock-*.in")
	if err != nil {
		return "", err
	}
	defer os.Remove(in.Name())

	var buf bytes.Buffer
	for _, c := range constraints {
		if c.Editable {
			buf.WriteString(editableMarker)
		}
		buf.WriteString(c.Line)
		buf.WriteByte('\n')
	}
	if _, err := in.Write(buf.Bytes()); err != nil {
		in.Close()
		return "", err
	}
	in.Close()

	command := p.Command
	if command == "" {
		command = "pip-compile"
	}
	args := []string{"--dry-run", "--quiet", "--no-header", "--no-annotate", "--output-file", "-"}
	if indexURL != "" {
		args = append(args, "-i", indexURL)
	}
	args = append(args, extraArgs...)
	args = append(args, in.Name())

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s: %w: %s", command, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

var pinnedRE = regexp.MustCompile(`^([A-Za-z0-9][-A-Za-z0-9._]*)(?:\[[^\]]*\])?==(\S+?)\s*(?:\\)?$`)

// parsePinned extracts "name==version" nodes from pip-compile output.
// Comment lines, hash continuation lines, and anything unpinned are
// skipped.
func parsePinned(output string) []Node {
	var nodes []Node
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "--hash=") {
			continue
		}
		if m := pinnedRE.FindStringSubmatch(line); m != nil {
			nodes = append(nodes, Node{Name: m[1], Specifier: "==" + m[2]})
		}
	}
	return nodes
}

// parseHashes pairs each pinned node with the --hash continuation
// lines that follow it, preserving output order.
func parseHashes(output string) map[Node][]string {
	hashes := make(map[Node][]string)
	var current *Node

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "--hash=") {
			if current != nil {
				token := strings.TrimRight(strings.TrimPrefix(line, "--hash="), " \\")
				hashes[*current] = append(hashes[*current], token)
			}
			continue
		}
		if m := pinnedRE.FindStringSubmatch(line); m != nil {
			node := Node{Name: m[1], Specifier: "==" + m[2]}
			current = &node
			continue
		}
		if line != "" && !strings.HasPrefix(line, "#") {
			current = nil
		}
	}
	return hashes
}
