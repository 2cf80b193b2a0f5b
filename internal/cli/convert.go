package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pipelock/pkg/pipfile"
)

// newImportCmd creates the import command, converting pip requirement
// lines into Pipfile records.
func newImportCmd() *cobra.Command {
	var fromFile string
	var output string

	cmd := &cobra.Command{
		Use:   "import [requirement...]",
		Short: "Convert pip requirement lines into Pipfile records",
		Long: `Convert pip requirement lines into Pipfile records.

Requirements are given as arguments or read from a requirements file.

Examples:
  pipelock import "requests>=2.0" "Django>1.10"
  pipelock import -f requirements.txt -o Pipfile`,
		RunE: func(cmd *cobra.Command, args []string) error {
			lines := args
			if fromFile != "" {
				fileLines, err := readRequirementLines(fromFile)
				if err != nil {
					return err
				}
				lines = append(fileLines, lines...)
			}
			if len(lines) == 0 {
				return fmt.Errorf("no requirements given; pass lines or -f <file>")
			}

			f := &pipfile.File{Packages: make(map[string]pipfile.Dep, len(lines))}
			for _, line := range lines {
				name, dep, err := pipfile.FromLine(line)
				if err != nil {
					return err
				}
				f.Packages[name] = dep
			}

			if output != "" {
				if err := f.Save(output); err != nil {
					return err
				}
				printSuccess("Imported %d dependencies", len(f.Packages))
				printFile(output)
				return nil
			}
			return f.Encode(cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&fromFile, "file", "f", "", "read requirement lines from a file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write a Pipfile to this path (stdout if empty)")
	return cmd
}

// newRequirementsCmd creates the requirements command, rendering a
// Pipfile back into pip requirement lines.
func newRequirementsCmd() *cobra.Command {
	var dev bool
	var temp bool
	var output string

	cmd := &cobra.Command{
		Use:   "requirements [Pipfile]",
		Short: "Render a Pipfile as pip requirement lines",
		Long: `Render a Pipfile as pip requirement lines.

Examples:
  pipelock requirements
  pipelock requirements Pipfile --dev
  pipelock requirements --temp    # write to a temp file, print its path`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "Pipfile"
			if len(args) == 1 {
				path = args[0]
			}
			f, err := pipfile.Load(path)
			if err != nil {
				return err
			}

			deps := make(map[string]pipfile.Dep, len(f.Packages)+len(f.DevPackages))
			for name, dep := range f.Packages {
				deps[name] = dep
			}
			if dev {
				for name, dep := range f.DevPackages {
					deps[name] = dep
				}
			}

			if temp {
				tmpPath, err := pipfile.WriteRequirements(deps)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), tmpPath)
				return nil
			}

			lines := pipfile.ToLines(deps)
			out := strings.Join(lines, "\n")
			if output != "" {
				if err := os.WriteFile(output, []byte(out+"\n"), 0o644); err != nil {
					return err
				}
				printSuccess("Wrote %d requirements", len(lines))
				printFile(output)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dev, "dev", false, "include dev-packages")
	cmd.Flags().BoolVar(&temp, "temp", false, "write to a temp file and print its path")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}

// readRequirementLines reads a requirements file, skipping blanks and
// comments.
func readRequirementLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}
