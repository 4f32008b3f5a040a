// Package htsindex parses the binary index formats htsget resolves
// against: BAI (BAM), CSI (BAM/BCF), TBI (tabix, used for VCF), CRAI
// (CRAM), and GZI (BGZF block offsets). Every parser is a pure
// func(io.Reader) (*T, error) — no I/O beyond reading the supplied
// stream, mirroring the magic-check-then-structured-read idiom the
// compacted binary indices in the pack use for their own headers.
package htsindex

import "github.com/htsget-io/htsget-server/bgzf"

// Chunk is a contiguous run of a BAM/BCF/VCF record's data expressed as
// a pair of virtual positions, exactly as stored in a bin's chunk list.
type Chunk struct {
	Start bgzf.VirtualPosition
	End   bgzf.VirtualPosition
}

// Bin holds the chunk list for one bin of the binning index, keyed by
// its numeric bin ID (not a reference-sequence ordinal).
type Bin struct {
	ID     uint32
	Chunks []Chunk
}

// Metadata is the optional per-reference-sequence pseudo-bin summary
// BAI/CSI readers carry (bin 37450 for BAI, the equivalent pseudo-bin
// for CSI): first/last record virtual positions plus mapped/unmapped
// counts.
type Metadata struct {
	FirstRecordStart bgzf.VirtualPosition
	LastRecordEnd    bgzf.VirtualPosition
	MappedCount      uint64
	UnmappedCount    uint64
}

// ReferenceSequence is one reference sequence's entry in a binning
// index: its bins, its optional pseudo-bin metadata, and (for BAI/TBI)
// its linear index of minimum virtual positions per 16kbp interval.
type ReferenceSequence struct {
	Bins      []Bin
	Metadata  *Metadata
	Intervals []bgzf.VirtualPosition
}

// BinningIndex is the shared shape of BAI, CSI and TBI: an ordered list
// of per-reference-sequence entries. CSI additionally carries min-shift
// and depth parameters controlling its bin numbering scheme.
type BinningIndex struct {
	ReferenceSequences []ReferenceSequence
	// MinShift and Depth are the binning parameters: read from the file
	// for CSI, set to htslib's fixed bin layout (min-shift 14, depth 5)
	// for BAI and TBI.
	MinShift int32
	Depth    int32
	// NUnplacedUnmapped is the count of unplaced unmapped reads/records
	// the index's trailer reports, when present (BAI/CSI).
	NUnplacedUnmapped uint64
}

// AllChunks returns every chunk across every bin of a reference
// sequence, in the order stored in the index.
func (rs ReferenceSequence) AllChunks() []Chunk {
	var out []Chunk
	for _, b := range rs.Bins {
		out = append(out, b.Chunks...)
	}
	return out
}
