package htsindex

import (
	"fmt"
	"io"

	"github.com/htsget-io/htsget-server/bgzf"
)

var csiMagic = [4]byte{'C', 'S', 'I', 1}

// pseudoBinID returns the bin ID htslib reserves for per-reference
// metadata at the given binning depth: one past the highest real bin ID
// produced by depth+1 levels of 8-way subdivision. For BAI's fixed
// depth of 5 this evaluates to 37450, matching baiPseudoBin.
func pseudoBinID(depth int32) uint32 {
	levels := uint64(depth) + 1
	maxBin := (uint64(1)<<(3*levels) - 1) / 7
	return uint32(maxBin + 1)
}

// ReadCSI parses a coordinate-sorted index (.csi) stream, as used by
// BCF and optionally BAM. Unlike BAI, CSI carries no separate linear
// index; each real bin's loffset is appended to
// ReferenceSequence.Intervals, in bin order.
func ReadCSI(r io.Reader) (*BinningIndex, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("htsindex: read CSI magic: %w", err)
	}
	if magic != csiMagic {
		return nil, fmt.Errorf("htsindex: not a CSI index (bad magic %v)", magic)
	}

	minShift, err := readInt32(r)
	if err != nil {
		return nil, fmt.Errorf("htsindex: read min_shift: %w", err)
	}
	depth, err := readInt32(r)
	if err != nil {
		return nil, fmt.Errorf("htsindex: read depth: %w", err)
	}
	lAux, err := readInt32(r)
	if err != nil {
		return nil, fmt.Errorf("htsindex: read l_aux: %w", err)
	}
	if lAux > 0 {
		if _, err := io.CopyN(io.Discard, r, int64(lAux)); err != nil {
			return nil, fmt.Errorf("htsindex: skip aux block: %w", err)
		}
	}

	nRef, err := readInt32(r)
	if err != nil {
		return nil, fmt.Errorf("htsindex: read n_ref: %w", err)
	}

	metaBin := pseudoBinID(depth)
	idx := &BinningIndex{
		MinShift:           minShift,
		Depth:              depth,
		ReferenceSequences: make([]ReferenceSequence, nRef),
	}

	for i := int32(0); i < nRef; i++ {
		rs, err := readCSIReferenceSequence(r, metaBin)
		if err != nil {
			return nil, fmt.Errorf("htsindex: read CSI reference %d: %w", i, err)
		}
		idx.ReferenceSequences[i] = rs
	}

	if n, err := readUint64(r); err == nil {
		idx.NUnplacedUnmapped = n
	}

	return idx, nil
}

func readCSIReferenceSequence(r io.Reader, metaBin uint32) (ReferenceSequence, error) {
	var rs ReferenceSequence

	nBin, err := readInt32(r)
	if err != nil {
		return rs, fmt.Errorf("read n_bin: %w", err)
	}

	for i := int32(0); i < nBin; i++ {
		binID, err := readUint32(r)
		if err != nil {
			return rs, fmt.Errorf("read bin id: %w", err)
		}
		// CSI stores a per-bin virtual-position "loffset" in place of
		// BAI's separate linear index array.
		loffset, err := readUint64(r)
		if err != nil {
			return rs, fmt.Errorf("read loffset: %w", err)
		}
		nChunk, err := readInt32(r)
		if err != nil {
			return rs, fmt.Errorf("read n_chunk: %w", err)
		}

		if binID == metaBin {
			meta, err := readBAIPseudoBinMetadata(r, nChunk)
			if err != nil {
				return rs, fmt.Errorf("read pseudo-bin metadata: %w", err)
			}
			rs.Metadata = meta
			continue
		}

		chunks := make([]Chunk, nChunk)
		for c := int32(0); c < nChunk; c++ {
			chunks[c], err = readChunk(r)
			if err != nil {
				return rs, fmt.Errorf("read chunk %d: %w", c, err)
			}
		}
		rs.Bins = append(rs.Bins, Bin{ID: binID, Chunks: chunks})
		rs.Intervals = append(rs.Intervals, bgzf.VirtualPosition(loffset))
	}

	return rs, nil
}
