package pipfile

import (
	"strings"

	"github.com/matzehuels/pipelock/pkg/errors"
)

// Specifier is one comparator+version pair, e.g. {">=", "1.10"}.
type Specifier struct {
	Op      string
	Version string
}

// Requirement is the parse result of a single pip requirement line.
type Requirement struct {
	Name      string      // package name; empty for plain file installs
	Specs     []Specifier // parsed comparator+version pairs, input order
	Specifier string      // verbatim comparator+version tail, e.g. ">=1.10,<2.0"
	Extras    []string    // bracketed extras, input order
	VCS       string      // one of VCSKinds, or empty
	URI       string      // full uri for VCS and file installs
	Revision  string      // "@<ref>" suffix captured from a VCS uri
	Editable  bool        // line carried a leading "-e "
	IsFile    bool        // plain file install (uri, no vcs)
}

const editablePrefix = "-e "

// ParseRequirement decomposes one pip requirement line. The four shapes
// are tried in priority order: VCS install, file install,
// specifier/extras install, bare name. A VCS line without an
// "#egg=<name>" fragment is the only fatal input.
func ParseRequirement(line string) (*Requirement, error) {
	req := &Requirement{}

	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, editablePrefix) {
		req.Editable = true
		line = strings.TrimSpace(line[len(editablePrefix):])
	}

	if vcs := vcsKind(line); vcs != "" {
		if err := parseVCS(line, vcs, req); err != nil {
			return nil, err
		}
		return req, nil
	}

	if IsFileURI(line) {
		req.URI = line
		req.IsFile = true
		return req, nil
	}

	parseNamed(line, req)
	return req, nil
}

// vcsKind returns the VCS prefix of line, or "" if there is none.
// Recognized forms are "<vcs>+<scheme>://..." and "<vcs>://...".
func vcsKind(line string) string {
	for _, vcs := range VCSKinds {
		if strings.HasPrefix(line, vcs+"+") || strings.HasPrefix(line, vcs+"://") {
			return vcs
		}
	}
	return ""
}

func parseVCS(line, vcs string, req *Requirement) error {
	req.VCS = vcs

	uri, fragment, found := strings.Cut(line, "#egg=")
	if !found || fragment == "" {
		return errors.New(errors.ErrCodeMissingEggFragment,
			"an #egg fragment is required for version controlled dependencies; "+
				"install the remote dependency in the form %s#egg=<package-name>", uri)
	}
	req.Name = fragment

	// A revision "@<ref>" sits after the last path segment; an "@"
	// before that belongs to the userinfo part of the url.
	if at := strings.LastIndex(uri, "@"); at > strings.LastIndex(uri, "/") {
		req.Revision = uri[at+1:]
		uri = uri[:at]
	}
	req.URI = uri
	return nil
}

// parseNamed handles the specifier/extras and bare-name shapes.
func parseNamed(line string, req *Requirement) {
	rest := line

	if open := strings.IndexByte(rest, '['); open >= 0 {
		if end := strings.IndexByte(rest, ']'); end > open {
			for _, extra := range strings.Split(rest[open+1:end], ",") {
				if extra = strings.TrimSpace(extra); extra != "" {
					req.Extras = append(req.Extras, extra)
				}
			}
			req.Name = rest[:open]
			rest = rest[end+1:]
		}
	}

	if cut := strings.IndexAny(rest, "=<>"); cut >= 0 {
		// Pull compound operators like "!=" and "~=" fully into the tail.
		for cut > 0 && (rest[cut-1] == '!' || rest[cut-1] == '~') {
			cut--
		}
		if req.Name == "" {
			req.Name = strings.TrimSpace(rest[:cut])
		}
		req.Specifier = rest[cut:]
		req.Specs = parseSpecs(req.Specifier)
		return
	}

	if req.Name == "" {
		req.Name = rest
	}
}

// parseSpecs splits a verbatim specifier tail into comparator+version
// pairs, preserving input order.
func parseSpecs(tail string) []Specifier {
	var specs []Specifier
	for _, part := range strings.Split(tail, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		i := 0
		for i < len(part) && strings.ContainsRune("=<>!~", rune(part[i])) {
			i++
		}
		specs = append(specs, Specifier{
			Op:      part[:i],
			Version: strings.TrimSpace(part[i:]),
		})
	}
	return specs
}
