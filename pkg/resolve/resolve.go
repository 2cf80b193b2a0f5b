// Package resolve turns abstract dependency constraints into a locked,
// hash-pinned package list.
//
// Constraint solving itself is delegated to an external collaborator
// behind the [Solver] interface; the concrete adapter in this package
// shells out to pip-compile. Hash collection queries the package index
// first and falls back to the solver when the index has no usable
// metadata, so one package's metadata outage never aborts a whole
// resolution.
package resolve

import (
	"context"
	"strings"

	"github.com/matzehuels/pipelock/pkg/errors"
	"github.com/matzehuels/pipelock/pkg/pep"
	"github.com/matzehuels/pipelock/pkg/pipfile"
)

// Constraint is one input requirement handed to the solver.
type Constraint struct {
	Line     string // requirement line without the editable marker
	Editable bool
}

// Node is one solved package reported by the external solver.
type Node struct {
	Name      string
	Specifier string // pinned specifier, e.g. "==2.31.0"
}

// Solver is the external constraint solver collaborator. It is
// consumed as a black box: Solve materializes the full resolved tree
// in one call, ResolveHashes supplies artifact hashes for nodes the
// index could not describe.
type Solver interface {
	Solve(ctx context.Context, constraints []Constraint, indexURL string) ([]Node, error)
	ResolveHashes(ctx context.Context, nodes []Node) (map[Node][]string, error)
}

// HashIndex supplies artifact hashes from the package index. Satisfied
// by [pypi.Client].
type HashIndex interface {
	ReleaseHashes(ctx context.Context, name, version string) ([]string, error)
}

// Locked is one entry of the resolved lock list: a normalized
// name/version pair with the content hashes pinning its artifacts.
// Hashes may be empty when no authoritative hash could be obtained.
type Locked struct {
	Name    string   `json:"name" toml:"name"`
	Version string   `json:"version" toml:"version"`
	Hashes  []string `json:"hashes" toml:"hashes"`
}

// Options configures a Resolver.
type Options struct {
	Logger func(string, ...any) // progress/error callback (optional)
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = func(string, ...any) {}
	}
	return o
}

// Resolver orchestrates constraint construction, solving, and hash
// collection. One Resolver owns its index client for the duration of a
// resolution run; it is not safe for concurrent use.
type Resolver struct {
	solver Solver
	index  HashIndex
	opts   Options
}

// New creates a Resolver around the given solver and index client.
func New(solver Solver, index HashIndex, opts Options) *Resolver {
	return &Resolver{solver: solver, index: index, opts: opts.withDefaults()}
}

const editableMarker = "-e "

// Resolve builds constraints from raw requirement lines, solves them,
// and assembles the locked list. Entries prefixed with "-e " become
// editable constraints. Only the first index source is honored.
//
// Solver failure is fatal and propagates; hash collection degrades
// per package instead of aborting.
func (r *Resolver) Resolve(ctx context.Context, deps []string, sources []pipfile.Source) ([]Locked, error) {
	constraints := make([]Constraint, 0, len(deps))
	for _, dep := range deps {
		if strings.HasPrefix(dep, editableMarker) {
			constraints = append(constraints, Constraint{
				Line:     strings.TrimSpace(dep[len(editableMarker):]),
				Editable: true,
			})
			continue
		}
		constraints = append(constraints, Constraint{Line: dep})
	}

	indexURL := ""
	if len(sources) > 0 {
		indexURL = sources[0].URL
	}

	// Solve eagerly before any hash lookups, so editable and local
	// packages never trigger index queries they cannot answer.
	nodes, err := r.solver.Solve(ctx, constraints, indexURL)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSolver, err, "resolving dependencies")
	}

	results := make([]Locked, 0, len(nodes))
	for _, node := range nodes {
		name := pep.NormalizeName(node.Name)
		version := pep.NormalizeVersion(node.Specifier)

		hashes, err := r.collectHashes(ctx, node, name, version)
		if err != nil {
			return nil, err
		}
		results = append(results, Locked{Name: name, Version: version, Hashes: hashes})
	}
	return results, nil
}
