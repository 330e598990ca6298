package loader

import (
	"fmt"
	"path/filepath"
	"sync"

	"go.trai.ch/phi/internal/core/domain"
	"go.trai.ch/phi/internal/core/ports"
)

// Registry holds the module resolvers, queried in installation order.
type Registry struct {
	mu        sync.RWMutex
	resolvers []ports.ModuleResolver
	log       ports.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(log ports.Logger) *Registry {
	return &Registry{log: log}
}

// Install adds res unless a resolver for the same root exists, in which case
// the existing resolver is returned with false.
func (r *Registry) Install(res ports.ModuleResolver) (ports.ModuleResolver, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	root := filepath.Clean(res.Root())
	for _, existing := range r.resolvers {
		if filepath.Clean(existing.Root()) == root {
			r.log.Warn(fmt.Sprintf("resolver for %s already installed, ignoring", root))
			return existing, false
		}
	}
	r.resolvers = append(r.resolvers, res)
	return res, true
}

// Roots returns the search roots in priority order.
func (r *Registry) Roots() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roots := make([]string, len(r.resolvers))
	for i, res := range r.resolvers {
		roots[i] = res.Root()
	}
	return roots
}

// Resolve returns the first spec any resolver produces for name.
func (r *Registry) Resolve(name string) (*domain.LoadSpec, bool) {
	r.mu.RLock()
	resolvers := make([]ports.ModuleResolver, len(r.resolvers))
	copy(resolvers, r.resolvers)
	r.mu.RUnlock()

	for _, res := range resolvers {
		if spec, ok := res.Resolve(name); ok {
			return spec, true
		}
	}
	return nil, false
}
