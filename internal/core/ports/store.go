package ports

import "go.trai.ch/phi/internal/core/domain"

// ArtifactStore is the disk-backed cache of compiled artifacts.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type ArtifactStore interface {
	// PathFor returns the artifact path for a canonical source path.
	PathFor(sourcePath string) string

	// IsValid reports whether the artifact exists, has an intact header and matches the host and key.
	IsValid(artifactPath string, key domain.ArtifactKey) bool

	// Load returns the header and payload of an artifact, pending writes included.
	Load(artifactPath string) (domain.ArtifactHeader, []byte, error)

	// Enqueue queues an artifact for persistence, flushing when the batch is full.
	Enqueue(artifactPath string, payload []byte, key domain.ArtifactKey, flags domain.ArtifactFlags) error

	// Flush persists every pending artifact atomically.
	Flush() error

	// Close flushes pending artifacts and rejects further writes.
	Close() error
}
