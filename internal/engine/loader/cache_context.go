package loader

import (
	"sync"

	"go.trai.ch/phi/internal/core/domain"
	"go.trai.ch/phi/internal/core/ports"
)

// CacheContext owns the process-wide caches of one loader: raw sources keyed
// by canonical path, translated sources keyed by the raw content hash and symbol table, load
// specs keyed by (name, root), and the compiled-artifact store.
type CacheContext struct {
	Sources    ports.Cache[string, string]
	Translated ports.Cache[uint64, string]
	Specs      ports.Cache[domain.SpecKey, *domain.LoadSpec]
	Store      ports.ArtifactStore

	closeOnce sync.Once
	closeErr  error
}

// Close flushes pending artifacts and closes the store. It is safe to call more than once.
func (c *CacheContext) Close() error {
	c.closeOnce.Do(func() {
		if c.Store != nil {
			c.closeErr = c.Store.Close()
		}
	})
	return c.closeErr
}
