package htsindex

import (
	"bytes"
	"fmt"
	"io"
)

var tbiMagic = [4]byte{'T', 'B', 'I', 1}

// TBIFormat identifies the tab-delimited format tabix was built from.
type TBIFormat int32

const (
	TBIFormatGeneric TBIFormat = 0
	TBIFormatSAM     TBIFormat = 1
	TBIFormatVCF     TBIFormat = 2
)

// TBIIndex is a tabix index (.tbi), used by htsget for plain VCF. It
// shares BAI's fixed binning scheme (min-shift 14, depth 5) and adds the
// reference-sequence name list tabix needs to translate a name to the
// BinningIndex.ReferenceSequences ordinal.
type TBIIndex struct {
	BinningIndex
	Format                 TBIFormat
	SequenceNameColumn     int32
	BeginColumn            int32
	EndColumn              int32
	MetaChar               rune
	SkipLines              int32
	ReferenceSequenceNames []string
}

// IndexOfReferenceSequenceName returns the ordinal of name within the
// index, or -1 if name is not present.
func (t *TBIIndex) IndexOfReferenceSequenceName(name string) int {
	for i, n := range t.ReferenceSequenceNames {
		if n == name {
			return i
		}
	}
	return -1
}

// ReadTBI parses a tabix index stream.
func ReadTBI(r io.Reader) (*TBIIndex, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("htsindex: read TBI magic: %w", err)
	}
	if magic != tbiMagic {
		return nil, fmt.Errorf("htsindex: not a TBI index (bad magic %v)", magic)
	}

	nRef, err := readInt32(r)
	if err != nil {
		return nil, fmt.Errorf("htsindex: read n_ref: %w", err)
	}
	format, err := readInt32(r)
	if err != nil {
		return nil, fmt.Errorf("htsindex: read format: %w", err)
	}
	colSeq, err := readInt32(r)
	if err != nil {
		return nil, fmt.Errorf("htsindex: read col_seq: %w", err)
	}
	colBeg, err := readInt32(r)
	if err != nil {
		return nil, fmt.Errorf("htsindex: read col_beg: %w", err)
	}
	colEnd, err := readInt32(r)
	if err != nil {
		return nil, fmt.Errorf("htsindex: read col_end: %w", err)
	}
	meta, err := readInt32(r)
	if err != nil {
		return nil, fmt.Errorf("htsindex: read meta: %w", err)
	}
	skip, err := readInt32(r)
	if err != nil {
		return nil, fmt.Errorf("htsindex: read skip: %w", err)
	}
	lNm, err := readInt32(r)
	if err != nil {
		return nil, fmt.Errorf("htsindex: read l_nm: %w", err)
	}
	nameBuf := make([]byte, lNm)
	if _, err := io.ReadFull(r, nameBuf); err != nil {
		return nil, fmt.Errorf("htsindex: read reference names: %w", err)
	}
	names := splitNUL(nameBuf)

	idx := &TBIIndex{
		BinningIndex: BinningIndex{
			MinShift:           14,
			Depth:              5,
			ReferenceSequences: make([]ReferenceSequence, nRef),
		},
		Format:                 TBIFormat(format),
		SequenceNameColumn:     colSeq,
		BeginColumn:            colBeg,
		EndColumn:              colEnd,
		MetaChar:               rune(meta),
		SkipLines:              skip,
		ReferenceSequenceNames: names,
	}

	for i := int32(0); i < nRef; i++ {
		rs, err := readBAIReferenceSequence(r)
		if err != nil {
			return nil, fmt.Errorf("htsindex: read TBI reference %d: %w", i, err)
		}
		idx.ReferenceSequences[i] = rs
	}

	if n, err := readUint64(r); err == nil {
		idx.NUnplacedUnmapped = n
	}

	return idx, nil
}

func splitNUL(buf []byte) []string {
	var out []string
	for _, part := range bytes.Split(buf, []byte{0}) {
		if len(part) == 0 {
			continue
		}
		out = append(out, string(part))
	}
	return out
}
