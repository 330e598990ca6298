package lifecycle

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/phi/internal/core/domain"
)

// CleanTransient removes leftover temp and lock files below root and returns
// how many were removed. Flush locks stay, since another process sharing the
// cache may hold one. A missing root is not an error.
func CleanTransient(root string) (int, error) {
	removed := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() || !isTransient(d.Name()) {
			return nil
		}
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			return rmErr
		}
		removed++
		return nil
	})
	return removed, err
}

func isTransient(name string) bool {
	if name == domain.FlushLockName {
		return false
	}
	return strings.HasSuffix(name, domain.TempExt) || strings.HasSuffix(name, domain.LockExt)
}
