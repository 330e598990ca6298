package ports

import "context"

// SourceReader reads module sources from disk.
//
//go:generate mockgen -source=source.go -destination=mocks/mock_source.go -package=mocks
type SourceReader interface {
	// Canonicalize returns the absolute, symlink-free form of path.
	Canonicalize(path string) (string, error)

	// Read returns the UTF-8 text of the file at path, retrying transient failures.
	Read(ctx context.Context, path string) (string, error)
}
