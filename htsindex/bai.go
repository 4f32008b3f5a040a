package htsindex

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/htsget-io/htsget-server/bgzf"
)

// baiMagic is the 4-byte magic every BAI index begins with.
var baiMagic = [4]byte{'B', 'A', 'I', 1}

// baiPseudoBin is the bin ID htslib reserves for per-reference-sequence
// metadata (mapped/unmapped counts, first/last record virtual position).
const baiPseudoBin = 37450

// ReadBAI parses a BAM index (.bai) stream into a BinningIndex. BAI uses
// htslib's fixed binning scheme (min-shift 14, depth 5); MinShift/Depth
// are set accordingly so callers can treat BAI and CSI uniformly.
func ReadBAI(r io.Reader) (*BinningIndex, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("htsindex: read BAI magic: %w", err)
	}
	if magic != baiMagic {
		return nil, fmt.Errorf("htsindex: not a BAI index (bad magic %v)", magic)
	}

	nRef, err := readInt32(r)
	if err != nil {
		return nil, fmt.Errorf("htsindex: read BAI n_ref: %w", err)
	}

	idx := &BinningIndex{
		MinShift:           14,
		Depth:               5,
		ReferenceSequences: make([]ReferenceSequence, nRef),
	}

	for i := int32(0); i < nRef; i++ {
		rs, err := readBAIReferenceSequence(r)
		if err != nil {
			return nil, fmt.Errorf("htsindex: read BAI reference %d: %w", i, err)
		}
		idx.ReferenceSequences[i] = rs
	}

	// Trailing n_no_coor is optional; its absence (EOF) is not an error.
	if n, err := readUint64(r); err == nil {
		idx.NUnplacedUnmapped = n
	}

	return idx, nil
}

func readBAIReferenceSequence(r io.Reader) (ReferenceSequence, error) {
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
		nChunk, err := readInt32(r)
		if err != nil {
			return rs, fmt.Errorf("read n_chunk: %w", err)
		}

		if binID == baiPseudoBin {
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
	}

	nIntv, err := readInt32(r)
	if err != nil {
		return rs, fmt.Errorf("read n_intv: %w", err)
	}
	rs.Intervals = make([]bgzf.VirtualPosition, nIntv)
	for i := int32(0); i < nIntv; i++ {
		v, err := readUint64(r)
		if err != nil {
			return rs, fmt.Errorf("read linear index entry %d: %w", i, err)
		}
		rs.Intervals[i] = bgzf.VirtualPosition(v)
	}

	return rs, nil
}

// readBAIPseudoBinMetadata reads the pseudo-bin's two "chunks", which
// htslib overloads to carry {first-record-start, last-record-end} and
// {mapped-count, unmapped-count} rather than real chunk coordinates.
func readBAIPseudoBinMetadata(r io.Reader, nChunk int32) (*Metadata, error) {
	if nChunk != 2 {
		return nil, fmt.Errorf("pseudo-bin expected 2 chunk-slots, got %d", nChunk)
	}
	first, err := readChunk(r)
	if err != nil {
		return nil, fmt.Errorf("read first/last record positions: %w", err)
	}
	counts, err := readChunk(r)
	if err != nil {
		return nil, fmt.Errorf("read mapped/unmapped counts: %w", err)
	}
	return &Metadata{
		FirstRecordStart: first.Start,
		LastRecordEnd:    first.End,
		MappedCount:      counts.Start.Raw(),
		UnmappedCount:    counts.End.Raw(),
	}, nil
}

func readChunk(r io.Reader) (Chunk, error) {
	beg, err := readUint64(r)
	if err != nil {
		return Chunk{}, err
	}
	end, err := readUint64(r)
	if err != nil {
		return Chunk{}, err
	}
	return Chunk{Start: bgzf.VirtualPosition(beg), End: bgzf.VirtualPosition(end)}, nil
}

func readInt32(r io.Reader) (int32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(buf[:])), nil
}

func readUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func readUint64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func readInt64(r io.Reader) (int64, error) {
	v, err := readUint64(r)
	return int64(v), err
}
