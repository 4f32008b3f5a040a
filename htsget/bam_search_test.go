package htsget

import (
	"bytes"
	"context"
	"encoding/binary"
	"testing"
)

func w32(buf *bytes.Buffer, v int32)  { _ = binary.Write(buf, binary.LittleEndian, v) }
func wu32(buf *bytes.Buffer, v uint32) { _ = binary.Write(buf, binary.LittleEndian, v) }
func wu64(buf *bytes.Buffer, v uint64) { _ = binary.Write(buf, binary.LittleEndian, v) }

// buildSingleRefBAI builds a minimal BAI with one reference sequence
// containing one bin with one chunk [chunkStart, chunkEnd) (as packed
// virtual positions with zero uncompressed offsets) and a pseudo-bin
// whose LastRecordEnd is used as the unmapped-reads start.
func buildSingleRefBAI(chunkStartCompressed, chunkEndCompressed, lastRecordEndCompressed uint64) []byte {
	var buf bytes.Buffer
	buf.WriteString("BAI\x01")
	w32(&buf, 1) // n_ref

	w32(&buf, 2) // n_bin
	wu32(&buf, 0)
	w32(&buf, 1)
	wu64(&buf, chunkStartCompressed<<16)
	wu64(&buf, chunkEndCompressed<<16)

	wu32(&buf, 37450) // pseudo-bin
	w32(&buf, 2)
	wu64(&buf, chunkStartCompressed<<16)
	wu64(&buf, lastRecordEndCompressed<<16)
	wu64(&buf, 100) // mapped
	wu64(&buf, 10)  // unmapped

	w32(&buf, 0) // n_intv
	return buf.Bytes()
}

func TestBAMSearchAllReferenceSequences(t *testing.T) {
	backend := newMemBackend()
	backend.objects["sample.bam"] = make([]byte, 2596770)
	backend.objects["sample.bam.bai"] = buildSingleRefBAI(256721, 647345, 2060795)

	s := NewBAMSearch(backend, "sample.bam", "sample.bam.bai", "", nil)
	resp, err := s.Search(context.Background(), backend, Query{Format: FormatBAM, Class: ClassBody})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.Format != FormatBAM {
		t.Errorf("Format = %v, want BAM", resp.Format)
	}
	if len(resp.URLs) == 0 {
		t.Fatal("expected at least one URL")
	}
	last := resp.URLs[len(resp.URLs)-1]
	if len(last.Data) == 0 {
		t.Error("expected the final URL to carry the inline BGZF EOF marker")
	}
}

func TestBAMSearchUnplaced(t *testing.T) {
	backend := newMemBackend()
	backend.objects["sample.bam"] = make([]byte, 2596770)
	backend.objects["sample.bam.bai"] = buildSingleRefBAI(256721, 647345, 2060795)

	s := NewBAMSearch(backend, "sample.bam", "sample.bam.bai", "", nil)
	unplaced := ""
	resp, err := s.Search(context.Background(), backend, Query{
		Format: FormatBAM, Class: ClassBody, ReferenceName: &unplaced,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	found := false
	for _, u := range resp.URLs {
		if u.Class != nil && *u.Class == ClassBody {
			found = true
		}
	}
	if !found {
		t.Error("expected at least one body-class URL for the unplaced query")
	}
}

func TestBAMSearchHeaderOnly(t *testing.T) {
	backend := newMemBackend()
	backend.objects["sample.bam"] = make([]byte, 2596770)
	backend.objects["sample.bam.bai"] = buildSingleRefBAI(256721, 647345, 2060795)

	s := NewBAMSearch(backend, "sample.bam", "sample.bam.bai", "", nil)
	resp, err := s.Search(context.Background(), backend, Query{Format: FormatBAM, Class: ClassHeader})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.URLs) != 1 {
		t.Fatalf("expected exactly 1 URL for a header-only query, got %d", len(resp.URLs))
	}
	if resp.URLs[0].Class == nil || *resp.URLs[0].Class != ClassHeader {
		t.Errorf("expected Header class, got %+v", resp.URLs[0].Class)
	}
}
