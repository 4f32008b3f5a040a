package htsget

import (
	"context"
	"sort"

	"github.com/htsget-io/htsget-server/bgzf"
	"github.com/htsget-io/htsget-server/htsindex"
	"github.com/htsget-io/htsget-server/storage"
)

// Searcher resolves one Query into a Response. BAM, VCF and BCF
// implement it by embedding the shared bgzfSearch core and supplying
// their own unmapped-reads and reference-ordinal lookup behavior; CRAM's
// CRAMSearch walks CRAI records directly and embeds no shared core.
type Searcher interface {
	Search(ctx context.Context, backend storage.Backend, query Query) (*Response, error)
}

// bgzfSearch is the shared core for every BGZF-backed format (BAM, VCF,
// BCF). The byte-range computation lives in this file's package-level
// functions (indexPositions, headerEnd, getByteRangesForReferenceSequence);
// bgzfSearch carries the format and the default getByteRangesForUnmapped,
// which BAMSearch shadows with its own.
type bgzfSearch struct {
	format Format
}

// indexPositions harvests every non-zero compressed byte offset
// referenced anywhere in the index: both chunk start/end positions and
// per-reference-sequence metadata start/end positions. The smallest
// such value is, by construction, the offset where the header ends and
// the first reference sequence's data begins — this is the only
// offset every index variant is guaranteed to encode, so it is used
// defensively rather than trusting any single field.
func indexPositions(idx *htsindex.BinningIndex) []uint64 {
	var positions []uint64
	add := func(vp bgzf.VirtualPosition) {
		if c := vp.Compressed(); c != 0 {
			positions = append(positions, c)
		}
	}
	for _, rs := range idx.ReferenceSequences {
		for _, b := range rs.Bins {
			for _, c := range b.Chunks {
				add(c.Start)
				add(c.End)
			}
		}
		if rs.Metadata != nil {
			add(rs.Metadata.FirstRecordStart)
			add(rs.Metadata.LastRecordEnd)
		}
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i] < positions[j] })
	return positions
}

// headerEnd returns the offset at which the header ends: the smallest
// harvested position, or 0 if the index carries no positions at all
// (an empty reference set).
func headerEnd(positions []uint64) uint64 {
	if len(positions) == 0 {
		return 0
	}
	return positions[0]
}

// firstBoundaryAfter returns the smallest known BGZF block-start offset
// strictly greater than after, preferring the GZI side index when
// present (it is exhaustive) and otherwise falling back to offsets
// harvested from the binning index itself (necessarily sparser — only
// offsets that happen to be chunk/metadata boundaries are known). If no
// boundary is known, eofOffset (the offset where the file's trailing
// BGZF EOF block starts) is returned.
func firstBoundaryAfter(after uint64, gzi *htsindex.GZIIndex, fallback []uint64, eofOffset uint64) uint64 {
	if gzi != nil {
		if next, ok := gzi.NextBlockBoundary(after); ok {
			return next
		}
		return eofOffset
	}
	for _, p := range fallback {
		if p > after {
			return p
		}
	}
	return eofOffset
}

// bytesPositionsFromChunks converts a list of BGZF chunks into merged
// byte ranges: each chunk's start is its start virtual position's
// compressed offset; each chunk's end extends to the first known block
// boundary after its end virtual position's compressed offset (unless
// the end virtual position's uncompressed offset is 0, meaning it
// already falls exactly on a block boundary and nothing further needs
// including).
func bytesPositionsFromChunks(chunks []htsindex.Chunk, gzi *htsindex.GZIIndex, fallback []uint64, eofOffset uint64) []BytesPosition {
	var out []BytesPosition
	for _, c := range chunks {
		start := c.Start.Compressed()
		end := c.End.Compressed()
		if c.End.Uncompressed() != 0 {
			end = firstBoundaryAfter(end, gzi, fallback, eofOffset)
		}
		out = append(out, BytesPosition{Start: start, End: end})
	}
	return MergeAll(out)
}

// getByteRangesForUnmapped is the shared default for formats with no
// concept of "unmapped but placed" reads distinct from "unmapped and
// unplaced": VCF and BCF records are never "mapped" in the BAM sense,
// so a query for the unplaced class yields no byte ranges beyond the
// header. BAM overrides this with its BAI-pseudo-bin-driven logic.
func (s *bgzfSearch) getByteRangesForUnmapped(ctx context.Context, idx *htsindex.BinningIndex, gzi *htsindex.GZIIndex, eofOffset uint64) ([]BytesPosition, error) {
	return nil, nil
}

// getByteRangesForReferenceSequence resolves the byte ranges covering
// every chunk of every bin of one reference sequence. The query interval
// is not applied: no bin or chunk is filtered out by genomic position, so
// the ranges cover the whole reference sequence (a superset of any region
// within it).
func getByteRangesForReferenceSequence(rs htsindex.ReferenceSequence, gzi *htsindex.GZIIndex, fallback []uint64, eofOffset uint64) []BytesPosition {
	return bytesPositionsFromChunks(rs.AllChunks(), gzi, fallback, eofOffset)
}

func newHeaderPosition(end uint64) BytesPosition {
	return BytesPosition{Start: 0, End: end}.WithClass(ClassHeader)
}
