package htsget

import (
	"context"
	"fmt"
	"io"

	"github.com/htsget-io/htsget-server/bgzf"
	"github.com/htsget-io/htsget-server/herr"
	"github.com/htsget-io/htsget-server/htsindex"
	"github.com/htsget-io/htsget-server/storage"
)

// maxSeqPosition is the largest representable 1-based coordinate in a
// binning index bin calculation (2^29 - 1). No search in this package
// reads it: BGZF searches return every chunk of the named reference
// sequence whatever the query interval.
const maxSeqPosition = (1 << 29) - 1

// VCFSearch resolves htsget queries against a bgzipped VCF file's
// tabix (.tbi) index plus an optional GZI side index. Unlike BAM/BCF,
// tabix carries its own reference-sequence name list, so no external
// ReferenceNameResolver is needed.
type VCFSearch struct {
	bgzfSearch
	Storage  storage.Backend
	Key      string
	IndexKey string
	GziKey   string
}

func NewVCFSearch(backend storage.Backend, key, indexKey, gziKey string) *VCFSearch {
	return &VCFSearch{
		bgzfSearch: bgzfSearch{format: FormatVCF},
		Storage:    backend,
		Key:        key,
		IndexKey:   indexKey,
		GziKey:     gziKey,
	}
}

func (s *VCFSearch) Search(ctx context.Context, backend storage.Backend, query Query) (*Response, error) {
	fileSize, err := backend.Head(ctx, s.Key)
	if err != nil {
		return nil, herr.IO("VCFSearch.Search", err)
	}
	bodyEnd := uint64(fileSize) - uint64(len(bgzf.EOF))

	if query.Class != ClassHeader && query.AllReferenceSequences() && !query.Unplaced() {
		ranges := []BytesPosition{{Start: 0, End: bodyEnd}}
		return buildResponse(ctx, backend, s.Key, FormatVCF, query.Class, ranges)
	}

	idx, err := readTBI(ctx, backend, s.IndexKey)
	if err != nil {
		return nil, err
	}
	gzi, err := readOptionalGZI(ctx, backend, s.GziKey)
	if err != nil {
		return nil, err
	}

	positions := indexPositions(&idx.BinningIndex)
	hdrEnd := headerEnd(positions)

	var ranges []BytesPosition
	switch {
	case query.Class == ClassHeader:
		ranges = []BytesPosition{newHeaderPosition(hdrEnd)}
	case query.Unplaced():
		// VCF/BCF have no notion of unmapped-but-placed records distinct
		// from the rest of the body; the unplaced class yields only the
		// header, matching the shared default (see search.go).
		ranges = []BytesPosition{newHeaderPosition(hdrEnd)}
	default:
		ord := idx.IndexOfReferenceSequenceName(*query.ReferenceName)
		if ord < 0 || ord >= len(idx.ReferenceSequences) {
			return nil, herr.NotFound("VCFSearch.Search", fmt.Errorf("unknown reference sequence %q", *query.ReferenceName))
		}
		rs := idx.ReferenceSequences[ord]
		body := getByteRangesForReferenceSequence(rs, gzi, positions, bodyEnd)
		ranges = append([]BytesPosition{newHeaderPosition(hdrEnd)}, body...)
	}

	merged := UpdateClasses(MergeAll(ranges), hdrEnd)
	return buildResponse(ctx, backend, s.Key, FormatVCF, query.Class, merged)
}

func readTBI(ctx context.Context, backend storage.Backend, key string) (*htsindex.TBIIndex, error) {
	r, size, err := backend.Get(ctx, key)
	if err != nil {
		return nil, herr.NotFound("readTBI", err)
	}
	idx, err := htsindex.ReadTBI(io.NewSectionReader(r, 0, size))
	if err != nil {
		return nil, herr.Parse("readTBI", err)
	}
	return idx, nil
}
