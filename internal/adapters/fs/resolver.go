package fs

import (
	"os"
	"path/filepath"

	"go.trai.ch/phi/internal/core/domain"
	"go.trai.ch/phi/internal/core/ports"
)

var _ ports.ModuleResolver = (*Resolver)(nil)

// Resolver maps dotted module names to files below a single root.
// Specs are cached and trusted only while the file modification time is unchanged.
type Resolver struct {
	root  string
	specs ports.Cache[domain.SpecKey, *domain.LoadSpec]
}

// NewResolver creates a Resolver for root.
func NewResolver(root string, specs ports.Cache[domain.SpecKey, *domain.LoadSpec]) *Resolver {
	return &Resolver{root: root, specs: specs}
}

// Root returns the search root.
func (r *Resolver) Root() string {
	return r.root
}

// Resolve looks for <root>/<a>/<b>.φ, then <root>/<a>/<b>/__init__.φ.
func (r *Resolver) Resolve(name string) (*domain.LoadSpec, bool) {
	key := domain.SpecKey{Name: name, Root: r.root}
	if spec, ok := r.specs.Get(key); ok {
		if mtime, ok := modTime(spec.Path); ok && mtime == spec.ModTime {
			return spec, true
		}
		r.specs.Remove(key)
	}

	parts, ok := domain.ModuleNameParts(name)
	if !ok {
		return nil, false
	}
	base := filepath.Join(append([]string{r.root}, parts...)...)

	if mtime, ok := modTime(base + domain.SourceExt); ok {
		spec := &domain.LoadSpec{Name: name, Path: base + domain.SourceExt, ModTime: mtime}
		r.specs.Put(key, spec)
		return spec, true
	}

	index := filepath.Join(base, domain.PackageIndexName)
	if mtime, ok := modTime(index); ok {
		spec := &domain.LoadSpec{
			Name:        name,
			Path:        index,
			SearchPaths: []string{base},
			ModTime:     mtime,
		}
		r.specs.Put(key, spec)
		return spec, true
	}

	return nil, false
}

func modTime(path string) (int64, bool) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return 0, false
	}
	return info.ModTime().UnixNano(), true
}
