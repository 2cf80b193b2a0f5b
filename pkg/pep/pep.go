// Package pep implements the package-name and version-string
// normalization rules used across the Python packaging ecosystem.
//
// NormalizeName follows PEP 503 (lowercase, underscores become hyphens),
// the same rule PyPI applies to its simple index. NormalizeVersion
// follows the PEP 440 canonical form: a leading "==" is stripped, then
// the version is rewritten to its normalized spelling (leading zeros
// removed from numeric components, pre/post/dev segments canonicalized).
// Both functions are total and idempotent.
package pep

import (
	"regexp"
	"strconv"
	"strings"
)

// NormalizeName converts a package name to its canonical form.
// Applies lowercase and replaces underscores with hyphens, following
// PEP 503 normalization rules used by PyPI.
func NormalizeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
}

// versionRE matches a PEP 440 version. Groups: epoch, release, pre
// label+number, post label+number, implicit post ("-N"), dev number,
// local segment.
var versionRE = regexp.MustCompile(`^v?` +
	`(?:(\d+)!)?` + // epoch
	`(\d+(?:\.\d+)*)` + // release
	`(?:[._-]?(a|b|c|rc|alpha|beta|pre|preview)[._-]?(\d*))?` + // pre
	`(?:(?:-(\d+))|(?:[._-]?(post|rev|r)[._-]?(\d*)))?` + // post
	`(?:[._-]?(dev)[._-]?(\d*))?` + // dev
	`(?:\+([a-z0-9]+(?:[._-][a-z0-9]+)*))?$`) // local

// NormalizeVersion rewrites a version or "==" pinned specifier to its
// PEP 440 canonical form. Strings that do not parse as PEP 440 versions
// are returned unchanged (minus the "==" prefix and surrounding space),
// mirroring how pip treats legacy versions.
func NormalizeVersion(version string) string {
	v := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(version), "=="))

	m := versionRE.FindStringSubmatch(strings.ToLower(v))
	if m == nil {
		return v
	}
	epoch, release := m[1], m[2]
	preLabel, preN := m[3], m[4]
	implicitPost, postLabel, postN := m[5], m[6], m[7]
	devLabel, devN, local := m[8], m[9], m[10]

	var b strings.Builder
	if epoch != "" && trimZeros(epoch) != "0" {
		b.WriteString(trimZeros(epoch))
		b.WriteByte('!')
	}

	parts := strings.Split(release, ".")
	for i, p := range parts {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(trimZeros(p))
	}

	if preLabel != "" {
		b.WriteString(canonPreLabel(preLabel))
		b.WriteString(trimZeros(preN))
	}
	switch {
	case implicitPost != "":
		b.WriteString(".post")
		b.WriteString(trimZeros(implicitPost))
	case postLabel != "":
		b.WriteString(".post")
		b.WriteString(trimZeros(postN))
	}
	if devLabel != "" {
		b.WriteString(".dev")
		b.WriteString(trimZeros(devN))
	}
	if local != "" {
		b.WriteByte('+')
		b.WriteString(canonLocal(local))
	}
	return b.String()
}

func trimZeros(s string) string {
	if s == "" {
		return "0"
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return s
	}
	return strconv.Itoa(n)
}

func canonPreLabel(label string) string {
	switch label {
	case "alpha":
		return "a"
	case "beta":
		return "b"
	case "c", "pre", "preview":
		return "rc"
	default:
		return label
	}
}

func canonLocal(local string) string {
	seg := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '-' || r == '_'
	})
	for i, s := range seg {
		seg[i] = trimZerosKeepAlpha(s)
	}
	return strings.Join(seg, ".")
}

func trimZerosKeepAlpha(s string) string {
	if _, err := strconv.Atoi(s); err != nil {
		return s
	}
	return trimZeros(s)
}
