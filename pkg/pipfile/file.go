package pipfile

import (
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/pipelock/pkg/errors"
)

// Source is one package index entry from a Pipfile [[source]] block.
type Source struct {
	Name      string `toml:"name"`
	URL       string `toml:"url"`
	VerifySSL bool   `toml:"verify_ssl"`
}

// File is a decoded Pipfile. The -vcs sections are empty until
// SplitVCS is called.
type File struct {
	Sources        []Source       `toml:"source"`
	Packages       map[string]Dep `toml:"packages"`
	DevPackages    map[string]Dep `toml:"dev-packages"`
	PackagesVCS    map[string]Dep `toml:"packages-vcs"`
	DevPackagesVCS map[string]Dep `toml:"dev-packages-vcs"`
}

// Load reads and decodes a Pipfile from path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPipfile, err, "decoding %s", path)
	}
	return &f, nil
}

// Encode writes the file as TOML. Sections and keys come out in
// lexicographic order; pretty-printing beyond that is left to callers.
func (f *File) Encode(w io.Writer) error {
	out := make(map[string]any)
	if len(f.Sources) > 0 {
		out["source"] = f.Sources
	}
	for section, entries := range f.sections() {
		if len(entries) == 0 {
			continue
		}
		values := make(map[string]any, len(entries))
		for name, dep := range entries {
			values[name] = dep.Value()
		}
		out[section] = values
	}
	return toml.NewEncoder(w).Encode(out)
}

// Save encodes the file to path.
func (f *File) Save(path string) error {
	w, err := os.Create(path)
	if err != nil {
		return err
	}
	defer w.Close()
	return f.Encode(w)
}

func (f *File) sections() map[string]map[string]Dep {
	return map[string]map[string]Dep{
		"packages":         f.Packages,
		"dev-packages":     f.DevPackages,
		"packages-vcs":     f.PackagesVCS,
		"dev-packages-vcs": f.DevPackagesVCS,
	}
}

// SplitVCS moves VCS entries out of the plain sections into their
// "-vcs" counterparts, so version-pinned and revision-pinned
// dependencies can be handled separately.
func (f *File) SplitVCS() {
	f.Packages, f.PackagesVCS = splitVCS(f.Packages, f.PackagesVCS)
	f.DevPackages, f.DevPackagesVCS = splitVCS(f.DevPackages, f.DevPackagesVCS)
}

func splitVCS(entries, vcs map[string]Dep) (map[string]Dep, map[string]Dep) {
	if vcs == nil {
		vcs = make(map[string]Dep)
	}
	for name, dep := range entries {
		if dep.Kind == KindVCS {
			vcs[name] = dep
			delete(entries, name)
		}
	}
	return entries, vcs
}

// Caser looks up the canonical spelling of a package name. Lookup
// failures are non-fatal; Recase keeps the original key.
type Caser func(name string) (string, error)

// Recase rewrites section keys to their canonical index spelling.
// Keys that cannot be looked up are left unchanged.
func (f *File) Recase(caser Caser) {
	for _, entries := range f.sections() {
		for name, dep := range entries {
			cased, err := caser(name)
			if err != nil || cased == name {
				continue
			}
			delete(entries, name)
			entries[cased] = dep
		}
	}
}

// IsRequiredVersion reports whether version satisfies a hard "=="
// pin in the record value. Records without a hard pin always match.
func IsRequiredVersion(version string, d Dep) bool {
	spec := d.Version
	if !strings.HasPrefix(spec, "==") {
		return true
	}
	return strings.TrimSpace(version) == strings.TrimSpace(strings.TrimPrefix(spec, "=="))
}
