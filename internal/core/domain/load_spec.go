package domain

import "strings"

// LoadSpec describes where a logical module was found.
type LoadSpec struct {
	// Name is the dotted logical module name.
	Name string
	// Path is the absolute path of the source file.
	Path string
	// SearchPaths is set for packages and holds the package directory.
	SearchPaths []string
	// ModTime is the source modification time in nanoseconds when the spec was produced.
	ModTime int64
}

// IsPackage reports whether the spec points at a package index file.
func (s *LoadSpec) IsPackage() bool {
	return len(s.SearchPaths) > 0
}

// SpecKey identifies a cached LoadSpec.
type SpecKey struct {
	Name string
	Root string
}

// ModuleNameParts splits a dotted module name into path components.
// Empty components, path separators and parent references are rejected.
func ModuleNameParts(name string) ([]string, bool) {
	if name == "" {
		return nil, false
	}
	parts := strings.Split(name, ".")
	for _, p := range parts {
		if p == "" || p == ".." || strings.ContainsAny(p, `/\`) || strings.ContainsRune(p, 0) {
			return nil, false
		}
	}
	return parts, true
}
