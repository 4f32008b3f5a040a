package htsindex

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// buildBAI assembles a minimal synthetic BAI stream with one reference
// sequence, one real bin with two chunks, a pseudo-bin, a two-entry
// linear index, and a trailing unplaced-unmapped count.
func buildBAI(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("BAI\x01")
	writeI32(&buf, 1) // n_ref

	writeI32(&buf, 2) // n_bin

	// real bin 0, 2 chunks
	writeU32(&buf, 0)
	writeI32(&buf, 2)
	writeU64(&buf, 0)
	writeU64(&buf, 100)
	writeU64(&buf, 200)
	writeU64(&buf, 300)

	// pseudo-bin 37450
	writeU32(&buf, baiPseudoBin)
	writeI32(&buf, 2)
	writeU64(&buf, 5)   // first record start
	writeU64(&buf, 999) // last record end
	writeU64(&buf, 42)  // mapped count
	writeU64(&buf, 7)   // unmapped count

	writeI32(&buf, 2) // n_intv
	writeU64(&buf, 0)
	writeU64(&buf, 256)

	writeU64(&buf, 3) // n_no_coor

	return buf.Bytes()
}

func writeI32(buf *bytes.Buffer, v int32) { _ = binary.Write(buf, binary.LittleEndian, v) }
func writeU32(buf *bytes.Buffer, v uint32) { _ = binary.Write(buf, binary.LittleEndian, v) }
func writeU64(buf *bytes.Buffer, v uint64) { _ = binary.Write(buf, binary.LittleEndian, v) }

func TestReadBAI(t *testing.T) {
	idx, err := ReadBAI(bytes.NewReader(buildBAI(t)))
	if err != nil {
		t.Fatalf("ReadBAI: %v", err)
	}
	if len(idx.ReferenceSequences) != 1 {
		t.Fatalf("expected 1 reference sequence, got %d", len(idx.ReferenceSequences))
	}
	rs := idx.ReferenceSequences[0]
	if len(rs.Bins) != 1 {
		t.Fatalf("expected 1 real bin, got %d", len(rs.Bins))
	}
	if len(rs.Bins[0].Chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(rs.Bins[0].Chunks))
	}
	if rs.Bins[0].Chunks[0].Start.Compressed() != 0 || rs.Bins[0].Chunks[0].End.Compressed() != 0 {
		t.Errorf("unexpected chunk 0 compressed offsets: %+v", rs.Bins[0].Chunks[0])
	}
	if rs.Metadata == nil {
		t.Fatal("expected pseudo-bin metadata")
	}
	if rs.Metadata.MappedCount != 42 || rs.Metadata.UnmappedCount != 7 {
		t.Errorf("unexpected metadata counts: %+v", rs.Metadata)
	}
	if len(rs.Intervals) != 2 {
		t.Fatalf("expected 2 linear index entries, got %d", len(rs.Intervals))
	}
	if idx.NUnplacedUnmapped != 3 {
		t.Errorf("NUnplacedUnmapped = %d, want 3", idx.NUnplacedUnmapped)
	}
}

func TestReadBAIBadMagic(t *testing.T) {
	_, err := ReadBAI(bytes.NewReader([]byte("XXXX")))
	if err == nil {
		t.Fatal("expected error for bad magic")
	}
}
