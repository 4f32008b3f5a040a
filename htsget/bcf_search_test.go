package htsget

import (
	"bytes"
	"context"
	"testing"
)

// buildSingleRefCSI builds a minimal CSI index for one reference
// sequence with a single bin/chunk and a pseudo-bin metadata entry.
func buildSingleRefCSI(chunkStartCompressed, chunkEndCompressed, lastRecordEndCompressed uint64) []byte {
	var buf bytes.Buffer
	buf.WriteString("CSI\x01")
	w32(&buf, 14) // min_shift
	w32(&buf, 5)  // depth
	w32(&buf, 0)  // l_aux
	w32(&buf, 1)  // n_ref

	w32(&buf, 2) // n_bin
	wu32(&buf, 0)
	wu64(&buf, 0) // loffset
	w32(&buf, 1)
	wu64(&buf, chunkStartCompressed<<16)
	wu64(&buf, chunkEndCompressed<<16)

	wu32(&buf, 37450) // pseudo-bin (depth 5 matches BAI's fixed constant)
	wu64(&buf, 0)      // loffset
	w32(&buf, 2)
	wu64(&buf, chunkStartCompressed<<16)
	wu64(&buf, lastRecordEndCompressed<<16)
	wu64(&buf, 50) // mapped
	wu64(&buf, 0)  // unmapped

	return buf.Bytes()
}

func TestBCFSearchReferenceSequence(t *testing.T) {
	backend := newMemBackend()
	backend.objects["sample.bcf"] = make([]byte, 900000)
	backend.objects["sample.bcf.csi"] = buildSingleRefCSI(4000, 800000, 850000)

	s := NewBCFSearch(backend, "sample.bcf", "sample.bcf.csi", "", resolveChr1Only)
	name := "chr1"
	resp, err := s.Search(context.Background(), backend, Query{
		Format: FormatBCF, Class: ClassBody, ReferenceName: &name,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.Format != FormatBCF {
		t.Errorf("Format = %v, want BCF", resp.Format)
	}
	if len(resp.URLs) == 0 {
		t.Fatal("expected at least one URL")
	}
}

func TestBCFSearchUnknownReference(t *testing.T) {
	backend := newMemBackend()
	backend.objects["sample.bcf"] = make([]byte, 900000)
	backend.objects["sample.bcf.csi"] = buildSingleRefCSI(4000, 800000, 850000)

	s := NewBCFSearch(backend, "sample.bcf", "sample.bcf.csi", "", resolveChr1Only)
	name := "chrZZ"
	_, err := s.Search(context.Background(), backend, Query{
		Format: FormatBCF, Class: ClassBody, ReferenceName: &name,
	})
	if err == nil {
		t.Fatal("expected an error for an unknown reference sequence")
	}
}

func TestBCFSearchAllReferenceSequences(t *testing.T) {
	backend := newMemBackend()
	backend.objects["sample.bcf"] = make([]byte, 900000)
	backend.objects["sample.bcf.csi"] = buildSingleRefCSI(4000, 800000, 850000)

	s := NewBCFSearch(backend, "sample.bcf", "sample.bcf.csi", "", resolveChr1Only)
	resp, err := s.Search(context.Background(), backend, Query{Format: FormatBCF, Class: ClassBody})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.URLs) == 0 {
		t.Fatal("expected at least one URL for the all-reference-sequences query")
	}
}
