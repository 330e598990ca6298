// Package artifact implements the disk-backed cache of compiled artifacts.
package artifact

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/phi/internal/core/domain"
	"go.trai.ch/phi/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ArtifactStore = (*Store)(nil)

type pendingWrite struct {
	path string
	data []byte
}

// Store implements ports.ArtifactStore. Artifacts live in one directory per host
// identity and are written in batches through temp files and atomic renames.
type Store struct {
	dir       string
	magic     [4]byte
	batchSize int
	log       ports.Logger

	mu       sync.Mutex
	pending  []pendingWrite
	index    map[string]int
	inflight map[string][]byte
	closed   bool
}

// Open creates the artifact directory for id below root and returns a Store for it.
func Open(root string, id domain.HostIdentity, batchSize int, log ports.Logger) (*Store, error) {
	dir := filepath.Join(root, id.Namespace())
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreCreateFailed.Error()), "dir", dir)
	}
	if batchSize < 1 {
		batchSize = 1
	}
	return &Store{
		dir:       dir,
		magic:     id.Magic,
		batchSize: batchSize,
		log:       log,
		index:     make(map[string]int),
		inflight:  make(map[string][]byte),
	}, nil
}

// Dir returns the directory holding this host's artifacts.
func (s *Store) Dir() string {
	return s.dir
}

// PathFor returns the artifact path for a canonical source path.
func (s *Store) PathFor(sourcePath string) string {
	name := fmt.Sprintf("%016x", xxhash.Sum64String(sourcePath))
	return filepath.Join(s.dir, name+domain.ArtifactExt)
}

// IsValid reports whether the artifact is usable for key on this host.
func (s *Store) IsValid(artifactPath string, key domain.ArtifactKey) bool {
	head, err := s.readHeader(artifactPath)
	if err != nil {
		return false
	}
	h, ok := domain.ParseArtifactHeader(head)
	if !ok {
		return false
	}
	return h.Usable(key.Magic(s.magic), key.SourceHash)
}

// Load returns the header and payload of an artifact. Pending writes are visible.
func (s *Store) Load(artifactPath string) (domain.ArtifactHeader, []byte, error) {
	data, ok := s.lookupPending(artifactPath)
	if !ok {
		//nolint:gosec // Path is built by PathFor from the trusted cache directory
		raw, err := os.ReadFile(artifactPath)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return domain.ArtifactHeader{}, nil, domain.ErrCacheMiss
			}
			return domain.ArtifactHeader{}, nil, zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "path", artifactPath)
		}
		data = raw
	}

	h, ok := domain.ParseArtifactHeader(data)
	if !ok {
		return domain.ArtifactHeader{}, nil, zerr.With(zerr.Wrap(domain.ErrArtifactCorrupt, "malformed artifact header"), "path", artifactPath)
	}
	return h, data[domain.HeaderSize:], nil
}

// Enqueue queues an artifact. A second enqueue of the same path replaces the
// first in place. Reaching the batch size flushes synchronously.
func (s *Store) Enqueue(artifactPath string, payload []byte, key domain.ArtifactKey, flags domain.ArtifactFlags) error {
	header := domain.ArtifactHeader{
		Magic:      key.Magic(s.magic),
		Flags:      flags | domain.FlagHashVerified,
		SourceHash: key.SourceHash,
	}
	data := make([]byte, 0, domain.HeaderSize+len(payload))
	data = append(data, header.Encode()...)
	data = append(data, payload...)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrStoreClosed
	}
	if i, ok := s.index[artifactPath]; ok {
		s.pending[i].data = data
	} else {
		s.index[artifactPath] = len(s.pending)
		s.pending = append(s.pending, pendingWrite{path: artifactPath, data: data})
	}
	full := len(s.pending) >= s.batchSize
	var batch []pendingWrite
	if full {
		batch = s.takeLocked()
	}
	s.mu.Unlock()

	if batch == nil {
		return nil
	}
	return s.persist(batch)
}

// Flush persists every pending artifact.
func (s *Store) Flush() error {
	s.mu.Lock()
	batch := s.takeLocked()
	s.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}
	return s.persist(batch)
}

// Close flushes and rejects further writes. Calling Close twice is safe.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	batch := s.takeLocked()
	s.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}
	return s.persist(batch)
}

// Pending returns the number of queued artifacts.
func (s *Store) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// takeLocked swaps out the queue and marks its entries in flight. Callers hold s.mu.
func (s *Store) takeLocked() []pendingWrite {
	batch := s.pending
	s.pending = nil
	s.index = make(map[string]int)
	for _, w := range batch {
		s.inflight[w.path] = w.data
	}
	return batch
}

func (s *Store) persist(batch []pendingWrite) error {
	err := s.writeBatch(batch)

	s.mu.Lock()
	for _, w := range batch {
		if cur, ok := s.inflight[w.path]; ok && bytes.Equal(cur, w.data) {
			delete(s.inflight, w.path)
		}
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Warn(fmt.Sprintf("dropped %d compiled artifacts: %v", len(batch), err))
		return zerr.With(errors.Join(domain.ErrPersistFailed, err), "count", len(batch))
	}
	s.log.Debug(fmt.Sprintf("persisted %d compiled artifacts", len(batch)))
	return nil
}

func (s *Store) lookupPending(path string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.index[path]; ok {
		return s.pending[i].data, true
	}
	data, ok := s.inflight[path]
	return data, ok
}

func (s *Store) readHeader(path string) ([]byte, error) {
	if data, ok := s.lookupPending(path); ok {
		return data, nil
	}

	//nolint:gosec // Path is built by PathFor from the trusted cache directory
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	head := make([]byte, domain.HeaderSize)
	if _, err := io.ReadFull(f, head); err != nil {
		return nil, err
	}
	return head, nil
}
