package htsget

import (
	"bytes"
	"compress/gzip"
	"context"
	"testing"
)

// buildSingleRefTBI builds a minimal tabix index for one reference
// sequence "chr1", with a single bin/chunk, matching buildSingleRefBAI's
// shape but with the VCF-specific header fields and name list tabix adds.
func buildSingleRefTBI(chunkStartCompressed, chunkEndCompressed uint64) []byte {
	var buf bytes.Buffer
	buf.WriteString("TBI\x01")
	w32(&buf, 1) // n_ref
	w32(&buf, 2) // format = VCF
	w32(&buf, 1) // col_seq
	w32(&buf, 2) // col_beg
	w32(&buf, 0) // col_end
	w32(&buf, '#')
	w32(&buf, 0) // skip

	names := "chr1\x00"
	w32(&buf, int32(len(names)))
	buf.WriteString(names)

	// one reference sequence: n_bin, bin{id, n_chunk, chunks...}, n_intv
	w32(&buf, 1) // n_bin
	wu32(&buf, 0)
	w32(&buf, 1)
	wu64(&buf, chunkStartCompressed<<16)
	wu64(&buf, chunkEndCompressed<<16)
	w32(&buf, 0) // n_intv

	return buf.Bytes()
}

func TestVCFSearchReferenceSequence(t *testing.T) {
	backend := newMemBackend()
	backend.objects["sample.vcf.gz"] = make([]byte, 900000)
	backend.objects["sample.vcf.gz.tbi"] = buildSingleRefTBI(4000, 800000)

	s := NewVCFSearch(backend, "sample.vcf.gz", "sample.vcf.gz.tbi", "")
	name := "chr1"
	resp, err := s.Search(context.Background(), backend, Query{
		Format: FormatVCF, Class: ClassBody, ReferenceName: &name,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.Format != FormatVCF {
		t.Errorf("Format = %v, want VCF", resp.Format)
	}
	if len(resp.URLs) == 0 {
		t.Fatal("expected at least one URL")
	}
}

func TestVCFSearchUnknownReference(t *testing.T) {
	backend := newMemBackend()
	backend.objects["sample.vcf.gz"] = make([]byte, 900000)
	backend.objects["sample.vcf.gz.tbi"] = buildSingleRefTBI(4000, 800000)

	s := NewVCFSearch(backend, "sample.vcf.gz", "sample.vcf.gz.tbi", "")
	name := "chrZZ"
	_, err := s.Search(context.Background(), backend, Query{
		Format: FormatVCF, Class: ClassBody, ReferenceName: &name,
	})
	if err == nil {
		t.Fatal("expected an error for an unknown reference sequence")
	}
}

func TestVCFSearchHeaderOnly(t *testing.T) {
	backend := newMemBackend()
	backend.objects["sample.vcf.gz"] = make([]byte, 900000)
	backend.objects["sample.vcf.gz.tbi"] = buildSingleRefTBI(4000, 800000)

	s := NewVCFSearch(backend, "sample.vcf.gz", "sample.vcf.gz.tbi", "")
	resp, err := s.Search(context.Background(), backend, Query{Format: FormatVCF, Class: ClassHeader})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.URLs) != 1 || resp.URLs[0].Class == nil || *resp.URLs[0].Class != ClassHeader {
		t.Errorf("expected a single Header URL, got %+v", resp.URLs)
	}
}

// gzipBytes gzip-compresses b. This package's tests share it: the CRAI
// fixtures in cram_search_test.go are built with it.
func gzipBytes(t *testing.T, b []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(b); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}
