package htsget

import (
	"context"
	"io"

	"github.com/htsget-io/htsget-server/herr"
	"github.com/htsget-io/htsget-server/htsindex"
	"github.com/htsget-io/htsget-server/storage"
)

const (
	// fileDefinitionLength is the fixed size, in bytes, of a CRAM file's
	// leading file-definition block (the header container that follows
	// it is the first byte range the resolver ever needs to locate).
	fileDefinitionLength = 26
	// eofContainerLength is the fixed size, in bytes, of the CRAM EOF
	// marker container every valid CRAM stream ends with.
	eofContainerLength = 38
)

// CRAMSearch resolves htsget queries against a CRAM file's CRAI index.
// CRAM has no BGZF layer of its own, so it does not embed bgzfSearch;
// its algorithm instead walks CRAI slice records pairwise, using each
// record's container offset and the next record's (or end-of-file) as
// that container's byte span.
type CRAMSearch struct {
	Storage     storage.Backend
	Key         string
	IndexKey    string
	ResolveName ReferenceNameResolver
}

func NewCRAMSearch(backend storage.Backend, key, indexKey string, resolveName ReferenceNameResolver) *CRAMSearch {
	return &CRAMSearch{Storage: backend, Key: key, IndexKey: indexKey, ResolveName: resolveName}
}

func (s *CRAMSearch) Search(ctx context.Context, backend storage.Backend, query Query) (*Response, error) {
	idx, err := readCRAI(ctx, backend, s.IndexKey)
	if err != nil {
		return nil, err
	}
	fileSize, err := backend.Head(ctx, s.Key)
	if err != nil {
		return nil, herr.IO("CRAMSearch.Search", err)
	}
	eofOffset := uint64(fileSize) - eofContainerLength

	hdrEnd := uint64(fileDefinitionLength)
	if len(idx.Records) > 0 {
		hdrEnd = uint64(idx.Records[0].ContainerStartOffset)
	}

	var ranges []BytesPosition
	switch {
	case query.Class == ClassHeader:
		ranges = []BytesPosition{BytesPosition{Start: 0, End: hdrEnd}.WithClass(ClassHeader)}
	default:
		var predicate func(htsindex.CRAIRecord) bool
		switch {
		case query.Unplaced():
			predicate = func(r htsindex.CRAIRecord) bool { return r.Unmapped() }
		case query.AllReferenceSequences():
			predicate = func(htsindex.CRAIRecord) bool { return true }
		default:
			ord, ok, err := s.ResolveName(*query.ReferenceName)
			if err != nil {
				return nil, herr.Internal("CRAMSearch.Search", err)
			}
			if !ok {
				return nil, herr.NotFound("CRAMSearch.Search", errRefNotFound(*query.ReferenceName))
			}
			start, end := queryBounds(query.Interval)
			predicate = func(r htsindex.CRAIRecord) bool {
				if r.Unmapped() || int(r.ReferenceSequenceID) != ord {
					return false
				}
				return r.AlignmentStart < end && r.End() > start
			}
		}

		body := bytesRangesForRecords(idx.Records, predicate, eofOffset)
		ranges = append([]BytesPosition{BytesPosition{Start: 0, End: hdrEnd}.WithClass(ClassHeader)}, body...)
	}

	merged := UpdateClasses(MergeAll(ranges), hdrEnd)
	return buildResponse(ctx, backend, s.Key, FormatCRAM, query.Class, merged)
}

// bytesRangesForRecords walks records pairwise: record i's container
// spans [records[i].ContainerStartOffset, records[i+1].ContainerStartOffset),
// or through eofOffset for the last record. A record's container is
// included whenever the record itself satisfies predicate.
func bytesRangesForRecords(records []htsindex.CRAIRecord, predicate func(htsindex.CRAIRecord) bool, eofOffset uint64) []BytesPosition {
	var out []BytesPosition
	for i, rec := range records {
		if !predicate(rec) {
			continue
		}
		start := uint64(rec.ContainerStartOffset)
		end := eofOffset
		if i+1 < len(records) {
			end = uint64(records[i+1].ContainerStartOffset)
		}
		out = append(out, BytesPosition{Start: start, End: end})
	}
	return MergeAll(out)
}

func queryBounds(iv Interval) (start, end int64) {
	if iv.Start != nil {
		start = int64(*iv.Start)
	}
	end = int64(^uint32(0))
	if iv.End != nil {
		end = int64(*iv.End)
	}
	return start, end
}

func readCRAI(ctx context.Context, backend storage.Backend, key string) (*htsindex.CRAIIndex, error) {
	r, size, err := backend.Get(ctx, key)
	if err != nil {
		return nil, herr.NotFound("readCRAI", err)
	}
	idx, err := htsindex.ReadCRAI(io.NewSectionReader(r, 0, size))
	if err != nil {
		return nil, herr.Parse("readCRAI", err)
	}
	return idx, nil
}

type refNotFoundError string

func (e refNotFoundError) Error() string { return "unknown reference sequence " + string(e) }

func errRefNotFound(name string) error { return refNotFoundError(name) }
