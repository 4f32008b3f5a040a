package htsget

import (
	"context"
	"fmt"

	"github.com/htsget-io/htsget-server/bgzf"
	"github.com/htsget-io/htsget-server/herr"
	"github.com/htsget-io/htsget-server/htsindex"
	"github.com/htsget-io/htsget-server/storage"
)

// BCFSearch resolves htsget queries against a BCF file's CSI (.csi)
// index plus an optional GZI side index. CSI, like BAI, carries no
// reference names, so BCFSearch needs a ReferenceNameResolver the same
// way BAM does.
type BCFSearch struct {
	bgzfSearch
	Storage     storage.Backend
	Key         string
	IndexKey    string
	GziKey      string
	ResolveName ReferenceNameResolver
}

func NewBCFSearch(backend storage.Backend, key, indexKey, gziKey string, resolveName ReferenceNameResolver) *BCFSearch {
	return &BCFSearch{
		bgzfSearch:  bgzfSearch{format: FormatBCF},
		Storage:     backend,
		Key:         key,
		IndexKey:    indexKey,
		GziKey:      gziKey,
		ResolveName: resolveName,
	}
}

func (s *BCFSearch) Search(ctx context.Context, backend storage.Backend, query Query) (*Response, error) {
	fileSize, err := backend.Head(ctx, s.Key)
	if err != nil {
		return nil, herr.IO("BCFSearch.Search", err)
	}
	bodyEnd := uint64(fileSize) - uint64(len(bgzf.EOF))

	if query.Class != ClassHeader && query.AllReferenceSequences() && !query.Unplaced() {
		ranges := []BytesPosition{{Start: 0, End: bodyEnd}}
		return buildResponse(ctx, backend, s.Key, FormatBCF, query.Class, ranges)
	}

	idx, err := readBinningIndex(ctx, backend, s.IndexKey, htsindex.ReadCSI)
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
		ranges = []BytesPosition{newHeaderPosition(hdrEnd)}
	default:
		ord, ok, err := s.ResolveName(*query.ReferenceName)
		if err != nil {
			return nil, herr.Internal("BCFSearch.Search", err)
		}
		if !ok || ord >= len(idx.ReferenceSequences) {
			return nil, herr.NotFound("BCFSearch.Search", fmt.Errorf("unknown reference sequence %q", *query.ReferenceName))
		}
		rs := idx.ReferenceSequences[ord]
		body := getByteRangesForReferenceSequence(rs, gzi, positions, bodyEnd)
		ranges = append([]BytesPosition{newHeaderPosition(hdrEnd)}, body...)
	}

	merged := UpdateClasses(MergeAll(ranges), hdrEnd)
	return buildResponse(ctx, backend, s.Key, FormatBCF, query.Class, merged)
}
