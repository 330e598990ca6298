package artifact

import (
	"os"
	"path/filepath"

	"go.trai.ch/phi/internal/core/domain"
	"go.trai.ch/zerr"
)

// writeBatch writes every entry to a sibling temp file, fsyncs the last one and
// renames them into place. On failure all remaining temp files are removed.
func (s *Store) writeBatch(batch []pendingWrite) error {
	unlock, err := lockDir(filepath.Join(s.dir, domain.FlushLockName))
	if err != nil {
		return zerr.Wrap(err, "failed to lock artifact directory")
	}
	defer unlock()

	temps := make([]string, 0, len(batch))
	cleanup := func(from int) {
		for _, name := range temps[from:] {
			_ = os.Remove(name)
		}
	}

	for i, w := range batch {
		name, err := writeTemp(w, i == len(batch)-1)
		if err != nil {
			cleanup(0)
			return zerr.With(err, "path", w.path)
		}
		temps = append(temps, name)
	}

	for i, w := range batch {
		if err := os.Rename(temps[i], w.path); err != nil {
			cleanup(i)
			return zerr.With(zerr.Wrap(err, "failed to rename artifact"), "path", w.path)
		}
	}
	return nil
}

func writeTemp(w pendingWrite, sync bool) (string, error) {
	dir, base := filepath.Split(w.path)
	f, err := os.CreateTemp(dir, base+".*"+domain.TempExt)
	if err != nil {
		return "", zerr.Wrap(err, "failed to create temp artifact")
	}
	name := f.Name()

	if _, err := f.Write(w.data); err != nil {
		_ = f.Close()
		_ = os.Remove(name)
		return "", zerr.Wrap(err, "failed to write temp artifact")
	}
	if sync {
		if err := f.Sync(); err != nil {
			_ = f.Close()
			_ = os.Remove(name)
			return "", zerr.Wrap(err, "failed to sync temp artifact")
		}
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(name)
		return "", zerr.Wrap(err, "failed to close temp artifact")
	}
	if err := os.Chmod(name, domain.FilePerm); err != nil {
		_ = os.Remove(name)
		return "", zerr.Wrap(err, "failed to set artifact permissions")
	}
	return name, nil
}
