package fs

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"go.trai.ch/phi/internal/core/domain"
	"go.trai.ch/phi/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.SourceReader = (*Reader)(nil)

const utf8BOM = "\ufeff"

// ReaderOptions tunes how sources are read.
type ReaderOptions struct {
	// MmapThreshold is the size from which files are memory-mapped.
	MmapThreshold int64
	// BufferSize is the buffered reader size for smaller files.
	BufferSize int
	// MaxRetries bounds the retries of transient failures.
	MaxRetries int
	// RetryBaseDelay is doubled on every retry.
	RetryBaseDelay time.Duration
}

// ReaderOptionsFrom extracts reader options from cache settings.
func ReaderOptionsFrom(s domain.CacheSettings) ReaderOptions {
	return ReaderOptions{
		MmapThreshold:  s.MmapThreshold,
		BufferSize:     s.BufferSize,
		MaxRetries:     s.MaxFileRetries,
		RetryBaseDelay: s.RetryBaseDelay,
	}
}

// Reader implements ports.SourceReader.
type Reader struct {
	*Canonicalizer
	opts ReaderOptions
	open func(name string) (*os.File, error)
}

// NewReader creates a Reader. canon memoizes canonical paths.
func NewReader(opts ReaderOptions, canon ports.Cache[string, string]) *Reader {
	if opts.BufferSize <= 0 {
		opts.BufferSize = domain.DefaultBufferSize()
	}
	return &Reader{
		Canonicalizer: NewCanonicalizer(canon),
		opts:          opts,
		open:          os.Open,
	}
}

// Read returns the text of path. Transient failures are retried with
// exponential backoff; the text must be valid UTF-8.
func (r *Reader) Read(ctx context.Context, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	for attempt := 0; ; attempt++ {
		data, err = r.readOnce(path)
		if err == nil {
			break
		}
		if !isTransient(err) || attempt >= r.opts.MaxRetries {
			return "", zerr.With(zerr.Wrap(err, domain.ErrReadFailed.Error()), "path", path)
		}

		delay := r.opts.RetryBaseDelay << attempt
		select {
		case <-ctx.Done():
			return "", zerr.Wrap(ctx.Err(), domain.ErrReadFailed.Error())
		case <-time.After(delay):
		}
	}

	if !utf8.Valid(data) {
		return "", zerr.With(zerr.Wrap(domain.ErrSourceDecode, "failed to decode source"), "path", path)
	}
	return strings.TrimPrefix(string(data), utf8BOM), nil
}

func (r *Reader) readOnce(path string) ([]byte, error) {
	f, err := r.open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	if size := info.Size(); r.opts.MmapThreshold > 0 && size >= r.opts.MmapThreshold {
		return mmapRead(f, size)
	}
	return io.ReadAll(bufio.NewReaderSize(f, r.opts.BufferSize))
}
