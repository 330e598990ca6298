//go:build unix

package fs

import (
	"errors"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

func mmapRead(f *os.File, size int64) ([]byte, error) {
	if size == 0 || int64(int(size)) != size {
		return io.ReadAll(f)
	}

	mapped, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		// Some file systems refuse mappings; fall back to a plain read.
		return io.ReadAll(f)
	}
	defer func() { _ = unix.Munmap(mapped) }()

	out := make([]byte, len(mapped))
	copy(out, mapped)
	return out, nil
}

func isTransient(err error) bool {
	return errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EBUSY) || errors.Is(err, unix.EINTR)
}
