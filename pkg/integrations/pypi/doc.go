// Package pypi implements the PyPI JSON API client used during lock
// generation.
//
// Two lookups are provided. ReleaseHashes fetches the release mapping
// for a package and returns the sha256 digests of the artifacts
// published for one version; release keys are normalized before lookup
// so "1.0" and "1.0.0" spellings line up with the resolver's output.
// ProperName recovers the canonically cased project name from the
// redirect target of the JSON endpoint, with a short fixed timeout so
// a slow index never stalls interactive use.
//
// ReleaseHashes failures are expected and absorbed by the caller (a
// package with missing metadata degrades to resolver-provided hashes);
// ProperName reports not-found distinctly from transport errors so
// callers can keep the original spelling.
package pypi
