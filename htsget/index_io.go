package htsget

import (
	"context"
	"io"

	"github.com/htsget-io/htsget-server/herr"
	"github.com/htsget-io/htsget-server/htsindex"
	"github.com/htsget-io/htsget-server/storage"
)

// readBinningIndex fetches and parses key as a BAI/CSI-shaped binning
// index. The parser reads through an io.SectionReader over the reader
// the backend's Get returns, so its small sequential reads become
// ReadAt calls on that reader.
func readBinningIndex(ctx context.Context, backend storage.Backend, key string, parse func(io.Reader) (*htsindex.BinningIndex, error)) (*htsindex.BinningIndex, error) {
	r, size, err := backend.Get(ctx, key)
	if err != nil {
		return nil, herr.NotFound("readBinningIndex", err)
	}
	idx, err := parse(io.NewSectionReader(r, 0, size))
	if err != nil {
		return nil, herr.Parse("readBinningIndex", err)
	}
	return idx, nil
}

// readOptionalGZI reads and parses a GZI side index, returning (nil,
// nil) when gziKey is empty (no side index configured for this file) or
// the object does not exist.
func readOptionalGZI(ctx context.Context, backend storage.Backend, gziKey string) (*htsindex.GZIIndex, error) {
	if gziKey == "" {
		return nil, nil
	}
	r, size, err := backend.Get(ctx, gziKey)
	if err != nil {
		return nil, nil
	}
	gzi, err := htsindex.ReadGZI(io.NewSectionReader(r, 0, size))
	if err != nil {
		return nil, herr.Parse("readOptionalGZI", err)
	}
	return gzi, nil
}
