//go:build unix

package artifact

import (
	"os"

	"go.trai.ch/phi/internal/core/domain"
	"golang.org/x/sys/unix"
)

func lockDir(path string) (func(), error) {
	//nolint:gosec // Lock path is inside the trusted cache directory
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, domain.FilePerm)
	if err != nil {
		return nil, err
	}
	for {
		err = unix.Flock(int(f.Fd()), unix.LOCK_EX)
		if err != unix.EINTR {
			break
		}
	}
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return func() {
		_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
		_ = f.Close()
	}, nil
}
