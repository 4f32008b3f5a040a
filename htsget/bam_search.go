package htsget

import (
	"context"
	"fmt"

	"github.com/htsget-io/htsget-server/bgzf"
	"github.com/htsget-io/htsget-server/herr"
	"github.com/htsget-io/htsget-server/htsindex"
	"github.com/htsget-io/htsget-server/storage"
)

// ReferenceNameResolver maps a query's reference-sequence name to its
// ordinal position in the index's reference-sequence list. BAI/CSI
// carry no reference names themselves (only the BAM/CRAM header's SAM
// dictionary does, and parsing that header's free-text is out of the
// resolver's scope per the Non-goal against decoding record content) —
// so BAM and BCF searchers are handed a resolver function rather than
// deriving it from the index alone. VCF/TBI is the exception: tabix
// indices carry the name list directly (see vcf_search.go).
type ReferenceNameResolver func(name string) (ordinal int, ok bool, err error)

// BAMSearch resolves htsget queries against a BAM file's BAI index plus
// an optional GZI side index.
type BAMSearch struct {
	bgzfSearch
	Storage       storage.Backend
	Key           string
	IndexKey      string
	GziKey        string // "" if no GZI side index exists for this file
	ResolveName   ReferenceNameResolver
}

// NewBAMSearch builds a BAMSearch for the given storage keys.
func NewBAMSearch(backend storage.Backend, key, indexKey, gziKey string, resolveName ReferenceNameResolver) *BAMSearch {
	return &BAMSearch{
		bgzfSearch:  bgzfSearch{format: FormatBAM},
		Storage:     backend,
		Key:         key,
		IndexKey:    indexKey,
		GziKey:      gziKey,
		ResolveName: resolveName,
	}
}

func (s *BAMSearch) Search(ctx context.Context, backend storage.Backend, query Query) (*Response, error) {
	fileSize, err := backend.Head(ctx, s.Key)
	if err != nil {
		return nil, herr.IO("BAMSearch.Search", err)
	}
	bodyEnd := uint64(fileSize) - uint64(len(bgzf.EOF))

	if query.Class != ClassHeader && query.AllReferenceSequences() && !query.Unplaced() {
		// "all": the whole file, header and body together. No index read
		// needed — the range is just [0, bodyEnd).
		ranges := []BytesPosition{{Start: 0, End: bodyEnd}}
		return buildResponse(ctx, backend, s.Key, FormatBAM, query.Class, ranges)
	}

	idx, err := readBinningIndex(ctx, backend, s.IndexKey, htsindex.ReadBAI)
	if err != nil {
		return nil, err
	}
	gzi, err := readOptionalGZI(ctx, backend, s.GziKey)
	if err != nil {
		return nil, err
	}

	positions := indexPositions(idx)
	hdrEnd := headerEnd(positions)

	var ranges []BytesPosition
	switch {
	case query.Class == ClassHeader:
		ranges = []BytesPosition{newHeaderPosition(hdrEnd)}
	case query.Unplaced():
		body, err := s.getByteRangesForUnmapped(ctx, idx, gzi, bodyEnd)
		if err != nil {
			return nil, err
		}
		ranges = append([]BytesPosition{newHeaderPosition(hdrEnd)}, body...)
	default:
		ord, ok, err := s.ResolveName(*query.ReferenceName)
		if err != nil {
			return nil, herr.Internal("BAMSearch.Search", err)
		}
		if !ok || ord >= len(idx.ReferenceSequences) {
			return nil, herr.NotFound("BAMSearch.Search", fmt.Errorf("unknown reference sequence %q", *query.ReferenceName))
		}
		rs := idx.ReferenceSequences[ord]
		body := getByteRangesForReferenceSequence(rs, gzi, positions, bodyEnd)
		ranges = append([]BytesPosition{newHeaderPosition(hdrEnd)}, body...)
	}

	merged := UpdateClasses(MergeAll(ranges), hdrEnd)
	return buildResponse(ctx, backend, s.Key, FormatBAM, query.Class, merged)
}

// getByteRangesForUnmapped overrides the shared default: BAM's unmapped
// (unplaced) reads sit after every placed reference sequence's data, so
// their start is the BAI pseudo-bin's "first record in last linear bin"
// position (approximated here as the last reference sequence's
// metadata LastRecordEnd, the closest equivalent obtainable without a
// full linear-index bin scan) through end of file.
func (s *BAMSearch) getByteRangesForUnmapped(ctx context.Context, idx *htsindex.BinningIndex, gzi *htsindex.GZIIndex, eofOffset uint64) ([]BytesPosition, error) {
	var start uint64
	for i := len(idx.ReferenceSequences) - 1; i >= 0; i-- {
		if m := idx.ReferenceSequences[i].Metadata; m != nil {
			start = m.LastRecordEnd.Compressed()
			break
		}
	}
	return []BytesPosition{{Start: start, End: eofOffset}}, nil
}
