// Package pipfile converts dependency declarations between pip
// requirement lines and Pipfile-style structured records.
//
// A Pipfile entry is one of five mutually exclusive shapes: a bare "*"
// wildcard, a version-specifier string, an extras mapping, a VCS
// mapping, or a file mapping. The package models this as a tagged
// variant ([Dep]) rather than probing an untyped map, so a record can
// never ambiguously satisfy two shapes at once. Any shape may
// additionally carry one or more content hashes.
package pipfile

import (
	"fmt"
	"strings"
)

// VCSKinds lists the version control systems recognized in requirement
// lines and record values. It is the single source of truth shared by
// the parser and the converter.
var VCSKinds = []string{"git", "svn", "hg", "bzr"}

// FilePrefixes lists URI schemes that mark a plain file install.
var FilePrefixes = []string{"http://", "https://", "ftp://", "file:///"}

// Kind discriminates the record shape of a Dep.
type Kind int

const (
	KindBare    Kind = iota // value is "*"
	KindVersion             // value is a version-specifier string
	KindExtras              // {extras = [...], version? = "..."}
	KindVCS                 // {git = "...", editable? = true, ref? = "..."}
	KindFile                // {file = "..."}
)

// Dep is one Pipfile dependency record value. Exactly the fields
// belonging to its Kind are meaningful; Hash and Hashes may accompany
// any kind.
type Dep struct {
	Kind     Kind
	Version  string   // KindVersion, or optional on KindExtras
	Extras   []string // KindExtras
	VCS      string   // KindVCS: one of VCSKinds
	URL      string   // KindVCS: url with the "<vcs>+" prefix cropped
	Ref      string   // KindVCS: optional revision
	Editable bool     // KindVCS
	File     string   // KindFile: uri
	Hash     string   // single pinned hash
	Hashes   []string // multiple pinned hashes, order preserved
}

// IsVCSValue reports whether a decoded record value describes a VCS
// dependency, i.e. it is a mapping containing one of VCSKinds as a key.
func IsVCSValue(v any) bool {
	m, ok := v.(map[string]any)
	if !ok {
		return false
	}
	for _, vcs := range VCSKinds {
		if _, ok := m[vcs]; ok {
			return true
		}
	}
	return false
}

// IsFileURI reports whether s is a direct file-install URI.
func IsFileURI(s string) bool {
	for _, prefix := range FilePrefixes {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

// Value returns the record value in its wire shape: the literal "*", a
// bare specifier string, or a mapping. The result round-trips through
// ParseValue.
func (d Dep) Value() any {
	switch d.Kind {
	case KindBare:
		if d.Hash == "" && len(d.Hashes) == 0 {
			return "*"
		}
		m := map[string]any{}
		d.addHashes(m)
		return m
	case KindVersion:
		if d.Hash == "" && len(d.Hashes) == 0 {
			return d.Version
		}
		m := map[string]any{"version": d.Version}
		d.addHashes(m)
		return m
	case KindExtras:
		m := map[string]any{"extras": append([]string(nil), d.Extras...)}
		if d.Version != "" {
			m["version"] = d.Version
		}
		d.addHashes(m)
		return m
	case KindVCS:
		m := map[string]any{d.VCS: d.URL}
		if d.Editable {
			m["editable"] = true
		}
		if d.Ref != "" {
			m["ref"] = d.Ref
		}
		d.addHashes(m)
		return m
	case KindFile:
		m := map[string]any{"file": d.File}
		d.addHashes(m)
		return m
	}
	return "*"
}

func (d Dep) addHashes(m map[string]any) {
	if d.Hash != "" {
		m["hash"] = d.Hash
	}
	if len(d.Hashes) > 0 {
		m["hashes"] = append([]string(nil), d.Hashes...)
	}
}

// ParseValue builds a Dep from a decoded record value. Accepted inputs
// are the wildcard "*", a specifier string, or a mapping in one of the
// recognized shapes. Shape detection order matches the converter: file,
// vcs, extras, version.
func ParseValue(v any) (Dep, error) {
	switch val := v.(type) {
	case string:
		if val == "*" || val == "" {
			return Dep{Kind: KindBare}, nil
		}
		return Dep{Kind: KindVersion, Version: val}, nil
	case map[string]any:
		return parseMap(val)
	default:
		return Dep{}, fmt.Errorf("unsupported dependency value type %T", v)
	}
}

func parseMap(m map[string]any) (Dep, error) {
	var d Dep

	if h, ok := m["hash"].(string); ok {
		d.Hash = h
	}
	if hs, ok := m["hashes"]; ok {
		list, err := stringSlice(hs)
		if err != nil {
			return Dep{}, fmt.Errorf("hashes: %w", err)
		}
		d.Hashes = list
	}

	if file, ok := m["file"].(string); ok {
		d.Kind = KindFile
		d.File = file
		return d, nil
	}

	if IsVCSValue(m) {
		for _, vcs := range VCSKinds {
			url, ok := m[vcs].(string)
			if !ok {
				continue
			}
			d.Kind = KindVCS
			d.VCS = vcs
			d.URL = url
			if ref, ok := m["ref"].(string); ok {
				d.Ref = ref
			}
			if editable, ok := m["editable"].(bool); ok {
				d.Editable = editable
			}
			return d, nil
		}
		return Dep{}, fmt.Errorf("vcs url must be a string")
	}

	if extras, ok := m["extras"]; ok {
		list, err := stringSlice(extras)
		if err != nil {
			return Dep{}, fmt.Errorf("extras: %w", err)
		}
		d.Kind = KindExtras
		d.Extras = list
		if version, ok := m["version"].(string); ok {
			d.Version = version
		}
		return d, nil
	}

	if version, ok := m["version"].(string); ok {
		d.Kind = KindVersion
		d.Version = version
		return d, nil
	}

	// Empty mapping degrades to the wildcard, same as "*".
	d.Kind = KindBare
	return d, nil
}

// UnmarshalTOML implements toml.Unmarshaler so Dep values decode
// directly from Pipfile tables.
func (d *Dep) UnmarshalTOML(v any) error {
	parsed, err := ParseValue(v)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func stringSlice(v any) ([]string, error) {
	switch list := v.(type) {
	case []string:
		return append([]string(nil), list...), nil
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected string, got %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected array, got %T", v)
	}
}
