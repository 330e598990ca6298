//go:build !unix

package fs

import (
	"errors"
	"io"
	"os"
	"syscall"
)

func mmapRead(f *os.File, _ int64) ([]byte, error) {
	return io.ReadAll(f)
}

func isTransient(err error) bool {
	return errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EBUSY)
}
