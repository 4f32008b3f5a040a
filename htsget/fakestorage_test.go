package htsget

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/htsget-io/htsget-server/storage"
)

// memBackend is an in-memory storage.Backend over named byte blobs,
// used to exercise the searchers against synthetic indices without any
// real BAM/CRAM/VCF file.
type memBackend struct {
	objects map[string][]byte
}

func newMemBackend() *memBackend { return &memBackend{objects: map[string][]byte{}} }

func (m *memBackend) Get(ctx context.Context, key string) (io.ReaderAt, int64, error) {
	b, ok := m.objects[key]
	if !ok {
		return nil, 0, fmt.Errorf("no such object %q", key)
	}
	return bytes.NewReader(b), int64(len(b)), nil
}

func (m *memBackend) Head(ctx context.Context, key string) (int64, error) {
	b, ok := m.objects[key]
	if !ok {
		return 0, fmt.Errorf("no such object %q", key)
	}
	return int64(len(b)), nil
}

func (m *memBackend) RangeURL(ctx context.Context, key string, opts storage.RangeURLOptions) (string, map[string]string, error) {
	return fmt.Sprintf("mem://%s?start=%d&end=%d", key, opts.Start, opts.End), nil, nil
}

func (m *memBackend) DataURL(ctx context.Context, key string) (string, map[string]string, error) {
	return fmt.Sprintf("mem://%s", key), nil, nil
}

var _ storage.Backend = (*memBackend)(nil)
