package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pipelock/pkg/cache"
	"github.com/matzehuels/pipelock/pkg/integrations/pypi"
	"github.com/matzehuels/pipelock/pkg/pipfile"
)

const recaseCacheTTL = 24 * time.Hour

// newRecaseCmd creates the recase command, rewriting Pipfile keys to
// their canonical index spelling.
func newRecaseCmd() *cobra.Command {
	var redisAddr string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "recase [Pipfile]",
		Short: "Proper-case Pipfile package names against the index",
		Long: `Proper-case Pipfile package names against the index.

Each package key is looked up on the index and rewritten to its
canonical spelling (e.g. "django" becomes "Django"). Lookups that fail
keep the original name. Results are cached; use --redis to share the
cache between machines or --no-cache to look everything up fresh.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			path := "Pipfile"
			if len(args) == 1 {
				path = args[0]
			}
			f, err := pipfile.Load(path)
			if err != nil {
				return err
			}

			backend, err := nameBackend(ctx, envDefault(redisAddr, "REDIS_ADDR"), noCache)
			if err != nil {
				return err
			}
			defer backend.Close()

			client := pypi.NewClient(cache.NullCache{}, 0)
			f.Recase(func(name string) (string, error) {
				key := "propercase:" + name
				if data, ok, _ := backend.Get(ctx, key); ok {
					return string(data), nil
				}
				cased, err := client.ProperName(ctx, name)
				if err != nil {
					logger.Debugf("proper-case lookup failed for %s: %v", name, err)
					return "", err
				}
				_ = backend.Set(ctx, key, []byte(cased), recaseCacheTTL)
				return cased, nil
			})

			if err := f.Save(path); err != nil {
				return err
			}
			printSuccess("Recased %s", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&redisAddr, "redis", "", "redis address for a shared lookup cache (host:port, or REDIS_ADDR)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable lookup caching")
	return cmd
}

// nameBackend picks the cache backend for proper-case lookups.
func nameBackend(ctx context.Context, redisAddr string, noCache bool) (cache.Cache, error) {
	switch {
	case noCache:
		return cache.NullCache{}, nil
	case redisAddr != "":
		return cache.NewRedisCache(ctx, cache.RedisConfig{Addr: redisAddr})
	default:
		dir, err := cacheDir()
		if err != nil {
			return nil, err
		}
		return cache.NewFileCache(dir)
	}
}
