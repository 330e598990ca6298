package ports

import "go.trai.ch/phi/internal/core/domain"

// ModuleResolver maps logical module names to source files below one search root.
//
//go:generate mockgen -source=resolver.go -destination=mocks/mock_resolver.go -package=mocks
type ModuleResolver interface {
	// Root returns the search root the resolver serves.
	Root() string

	// Resolve returns the load spec for name, or false when the resolver does not own it.
	Resolve(name string) (*domain.LoadSpec, bool)
}
