package resolve

import (
	"context"
	"errors"

	"github.com/matzehuels/pipelock/pkg/integrations/pypi"
)

// collectHashes gathers artifact hashes for one resolved node. The
// index is authoritative; when it yields nothing (missing metadata,
// transport failure, or an empty artifact list) the solver fallback is
// asked instead. Index failures are absorbed here — a fallback failure
// is the caller's problem.
func (r *Resolver) collectHashes(ctx context.Context, node Node, name, version string) ([]string, error) {
	hashes, err := r.index.ReleaseHashes(ctx, name, version)
	if err == nil && len(hashes) > 0 {
		return hashes, nil
	}

	// Missing metadata is expected; transport and parse failures are
	// logged distinctly so outages remain observable.
	if err != nil {
		if errors.Is(err, pypi.ErrNoReleases) {
			r.opts.Logger("no hash metadata for %s %s, using solver hashes", name, version)
		} else {
			r.opts.Logger("hash metadata lookup failed for %s %s: %v", name, version, err)
		}
	}

	resolved, err := r.solver.ResolveHashes(ctx, []Node{node})
	if err != nil {
		return nil, err
	}
	return resolved[node], nil
}
