package pipfile

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// FromLine converts a pip requirement line into a Pipfile record entry,
// returning the dependency name and its record value.
//
// Plain file installs carry no package name, so one is synthesized from
// the last 7 hex characters of the sha256 digest of the uri. VCS lines
// without an #egg fragment are rejected.
func FromLine(line string) (string, Dep, error) {
	req, err := ParseRequirement(line)
	if err != nil {
		return "", Dep{}, err
	}

	if req.IsFile {
		return fileName(req.URI), Dep{Kind: KindFile, File: req.URI}, nil
	}

	if req.VCS != "" {
		// Crop off the "git+" etc. part.
		d := Dep{
			Kind:     KindVCS,
			VCS:      req.VCS,
			URL:      req.URI[len(req.VCS)+1:],
			Ref:      req.Revision,
			Editable: req.Editable,
		}
		return req.Name, d, nil
	}

	if len(req.Extras) > 0 {
		return req.Name, Dep{
			Kind:    KindExtras,
			Extras:  append([]string(nil), req.Extras...),
			Version: req.Specifier,
		}, nil
	}

	if req.Specifier != "" {
		return req.Name, Dep{Kind: KindVersion, Version: req.Specifier}, nil
	}

	return req.Name, Dep{Kind: KindBare}, nil
}

// fileName derives a short deterministic pseudo-name for a file install
// from the sha256 digest of its uri.
func fileName(uri string) string {
	digest := sha256.Sum256([]byte(uri))
	hexDigest := hex.EncodeToString(digest[:])
	return hexDigest[len(hexDigest)-7:]
}

// ToLine renders one Pipfile record entry back into a pip requirement
// line. The line is assembled from fixed-order accumulators:
// <dep><extra><version><hash>.
//
// Only the first extras entry is rendered; additional extras are
// silently ignored. This matches long-standing converter behavior and
// callers depend on it, so it is kept rather than fixed.
func ToLine(name string, d Dep) string {
	dep := name
	extra := ""
	version := ""
	hash := ""

	if d.Kind == KindVersion && d.Hash == "" && len(d.Hashes) == 0 {
		extra = d.Version
	}

	if d.Hash != "" {
		hash = " --hash=" + d.Hash
	}
	if len(d.Hashes) > 0 {
		var b strings.Builder
		for _, h := range d.Hashes {
			b.WriteString(" --hash=")
			b.WriteString(h)
		}
		hash = b.String()
	}

	if d.Kind == KindExtras {
		if len(d.Extras) > 0 {
			extra = "[" + d.Extras[0] + "]"
		}
		version = d.Version
	}
	if d.Kind == KindVersion && extra == "" {
		version = d.Version
	}

	if d.Kind == KindFile {
		dep = d.File
	}

	if d.Kind == KindVCS {
		extra = d.VCS + "+" + d.URL
		if d.Ref != "" {
			extra += "@" + d.Ref
		}
		extra += "#egg=" + name
		if d.Editable {
			dep = editablePrefix
		} else {
			dep = ""
		}
	}

	return dep + extra + version + hash
}

// ToLines converts a full record mapping to pip requirement lines,
// sorted by dependency name for stable output.
func ToLines(deps map[string]Dep) []string {
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(deps))
	for _, name := range names {
		lines = append(lines, ToLine(name, deps[name]))
	}
	return lines
}

// WriteRequirements converts deps to requirement lines and writes them,
// one per line, to a fresh file in the OS temp directory. It returns
// the path of the written file.
func WriteRequirements(deps map[string]Dep) (string, error) {
	lines := ToLines(deps)
	path := filepath.Join(os.TempDir(), uuid.NewString()+"-requirements.txt")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
