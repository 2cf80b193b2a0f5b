package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pipelock/pkg/cache"
	"github.com/matzehuels/pipelock/pkg/integrations/pypi"
	"github.com/matzehuels/pipelock/pkg/pipfile"
	"github.com/matzehuels/pipelock/pkg/resolve"
)

// newResolveCmd creates the resolve command, producing a hash-pinned
// lock list from abstract constraints.
func newResolveCmd() *cobra.Command {
	var fromPipfile string
	var indexURL string
	var pipCompile string

	cmd := &cobra.Command{
		Use:   "resolve [constraint...]",
		Short: "Resolve constraints into a hash-pinned lock list",
		Long: `Resolve constraints into a hash-pinned lock list.

Constraint solving is delegated to pip-compile; artifact hashes come
from the package index, with pip-compile as fallback for packages the
index has no metadata for. The lock list is printed as JSON.

Examples:
  pipelock resolve "requests>=2.0"
  pipelock resolve --pipfile Pipfile
  pipelock resolve "-e git+https://example.com/repo.git#egg=mypkg"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			deps := args
			var sources []pipfile.Source
			if fromPipfile != "" {
				f, err := pipfile.Load(fromPipfile)
				if err != nil {
					return err
				}
				deps = append(deps, pipfile.ToLines(f.Packages)...)
				sources = f.Sources
			}
			if len(deps) == 0 {
				return fmt.Errorf("no constraints given; pass lines or --pipfile <path>")
			}
			indexURL = envDefault(indexURL, "PIPELOCK_INDEX_URL")
			if indexURL != "" {
				sources = append([]pipfile.Source{{Name: "cli", URL: indexURL}}, sources...)
			}

			solver := resolve.NewPipTools()
			if pipCompile != "" {
				solver.Command = pipCompile
			}
			// Hash lookups run uncached so every resolution sees the
			// index as it is right now.
			index := pypi.NewClient(cache.NullCache{}, 0)
			resolver := resolve.New(solver, index, resolve.Options{
				Logger: func(format string, args ...any) { logger.Warnf(format, args...) },
			})

			tracker := newProgress(logger)
			spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Resolving %d constraints...", len(deps)))
			spinner.Start()
			locked, err := resolver.Resolve(ctx, deps, sources)
			if err != nil {
				spinner.StopWithError("Resolution failed")
				return err
			}
			spinner.StopWithSuccess(fmt.Sprintf("Locked %d packages", len(locked)))
			tracker.done(fmt.Sprintf("Resolved %d constraints", len(deps)))

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(locked)
		},
	}

	cmd.Flags().StringVar(&fromPipfile, "pipfile", "", "resolve the [packages] section of this Pipfile")
	cmd.Flags().StringVarP(&indexURL, "index", "i", "", "package index URL (or PIPELOCK_INDEX_URL; overrides Pipfile sources)")
	cmd.Flags().StringVar(&pipCompile, "pip-compile", "", "pip-compile executable to use as solver")
	return cmd
}
