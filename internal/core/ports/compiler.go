package ports

import (
	"context"

	"go.trai.ch/phi/internal/core/domain"
)

// Compiler is the host runtime binding.
//
//go:generate mockgen -source=compiler.go -destination=mocks/mock_compiler.go -package=mocks
type Compiler interface {
	// Identity describes the running host compiler.
	Identity() domain.HostIdentity

	// Compile compiles host-native text. Failures are *domain.SourceError values.
	Compile(path, text string, dialect domain.Dialect) (Program, error)

	// Decode restores a program from an artifact payload.
	// When verify is set the payload checksum is checked as well.
	Decode(payload []byte, verify bool) (Program, error)
}

// Program is a compiled module.
type Program interface {
	// Dialect reports which compile produced the program.
	Dialect() domain.Dialect

	// Encode serializes the program into an artifact payload.
	Encode() ([]byte, error)

	// Execute runs the program in the namespace of mod.
	Execute(ctx context.Context, mod *domain.Module, imp Importer) error
}

// Importer loads other modules on behalf of an executing program.
type Importer interface {
	Import(ctx context.Context, name string) (*domain.Module, error)
}
