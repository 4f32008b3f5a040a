package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/exp/mmap"
)

// LocalBackend serves keys from a directory on local disk. Get uses a
// memory-mapped reader (golang.org/x/exp/mmap), falling back to a
// plain *os.File when mmap is disabled. RangeURL/DataURL point at a
// companion byte-range HTTP server (DataServerBaseURL) fronting the
// same directory — the resolver itself never serves bytes, only
// computes which ranges a client should fetch.
type LocalBackend struct {
	Root              string
	DataServerBaseURL string
	UseMmap           bool
}

func (b *LocalBackend) path(key string) string {
	return filepath.Join(b.Root, filepath.FromSlash(key))
}

func (b *LocalBackend) Get(ctx context.Context, key string) (io.ReaderAt, int64, error) {
	p := b.path(key)
	if b.UseMmap {
		r, err := mmap.Open(p)
		if err != nil {
			return nil, 0, fmt.Errorf("storage: mmap open %q: %w", p, err)
		}
		return r, int64(r.Len()), nil
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, 0, fmt.Errorf("storage: open %q: %w", p, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("storage: stat %q: %w", p, err)
	}
	return f, info.Size(), nil
}

func (b *LocalBackend) Head(ctx context.Context, key string) (int64, error) {
	info, err := os.Stat(b.path(key))
	if err != nil {
		return 0, fmt.Errorf("storage: stat %q: %w", key, err)
	}
	return info.Size(), nil
}

func (b *LocalBackend) RangeURL(ctx context.Context, key string, opts RangeURLOptions) (string, map[string]string, error) {
	headers := map[string]string{
		"Range": fmt.Sprintf("bytes=%d-%d", opts.Start, opts.End),
	}
	for k, v := range opts.Headers {
		headers[k] = v
	}
	return b.DataServerBaseURL + "/" + key, headers, nil
}

func (b *LocalBackend) DataURL(ctx context.Context, key string) (string, map[string]string, error) {
	return b.DataServerBaseURL + "/" + key, nil, nil
}
