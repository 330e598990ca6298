package fs

import (
	"path/filepath"

	"go.trai.ch/phi/internal/core/ports"
	"go.trai.ch/zerr"
)

// Canonicalizer turns paths into absolute, symlink-free form and memoizes the result.
type Canonicalizer struct {
	memo ports.Cache[string, string]
}

// NewCanonicalizer creates a Canonicalizer backed by memo.
func NewCanonicalizer(memo ports.Cache[string, string]) *Canonicalizer {
	return &Canonicalizer{memo: memo}
}

// Canonicalize returns the canonical form of path. Paths that do not exist yet
// are returned cleaned and absolute without being memoized.
func (c *Canonicalizer) Canonicalize(path string) (string, error) {
	if canon, ok := c.memo.Get(path); ok {
		return canon, nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to resolve absolute path"), "path", path)
	}
	canon, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return abs, nil
	}

	c.memo.Put(path, canon)
	return canon, nil
}
