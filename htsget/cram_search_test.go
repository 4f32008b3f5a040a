package htsget

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

// buildCRAI builds a gzip-compressed CRAI stream from CRAI-line tuples
// {refID, alignStart, alignSpan, containerOffset, sliceOffset, sliceSize}.
func buildCRAI(t *testing.T, lines [][6]int64) []byte {
	t.Helper()
	var sb strings.Builder
	for _, l := range lines {
		fmt.Fprintf(&sb, "%d\t%d\t%d\t%d\t%d\t%d\n", l[0], l[1], l[2], l[3], l[4], l[5])
	}
	return gzipBytes(t, []byte(sb.String()))
}

func resolveChr1Only(name string) (int, bool, error) {
	if name == "chr1" {
		return 0, true, nil
	}
	return 0, false, nil
}

func TestCRAMSearchAllReferenceSequences(t *testing.T) {
	backend := newMemBackend()
	backend.objects["sample.cram"] = make([]byte, 1627756)
	backend.objects["sample.cram.crai"] = buildCRAI(t, [][6]int64{
		{0, 1, 100, 6087, 0, 5000},
		{0, 200, 100, 600000, 0, 5000},
		{-1, 0, 0, 1200000, 0, 5000},
	})

	s := NewCRAMSearch(backend, "sample.cram", "sample.cram.crai", resolveChr1Only)
	resp, err := s.Search(context.Background(), backend, Query{Format: FormatCRAM, Class: ClassBody})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.Format != FormatCRAM {
		t.Errorf("Format = %v, want CRAM", resp.Format)
	}
	if len(resp.URLs) == 0 {
		t.Fatal("expected at least one URL")
	}
}

func TestCRAMSearchNamedReference(t *testing.T) {
	backend := newMemBackend()
	backend.objects["sample.cram"] = make([]byte, 1627756)
	backend.objects["sample.cram.crai"] = buildCRAI(t, [][6]int64{
		{0, 1, 100, 6087, 0, 5000},
		{0, 200, 100, 600000, 0, 5000},
		{-1, 0, 0, 1200000, 0, 5000},
	})

	s := NewCRAMSearch(backend, "sample.cram", "sample.cram.crai", resolveChr1Only)
	name := "chr1"
	start, end := uint32(0), uint32(500)
	resp, err := s.Search(context.Background(), backend, Query{
		Format: FormatCRAM, Class: ClassBody, ReferenceName: &name,
		Interval: Interval{Start: &start, End: &end},
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.URLs) == 0 {
		t.Fatal("expected at least one URL covering the overlapping record")
	}
}

func TestCRAMSearchUnknownReference(t *testing.T) {
	backend := newMemBackend()
	backend.objects["sample.cram"] = make([]byte, 1627756)
	backend.objects["sample.cram.crai"] = buildCRAI(t, [][6]int64{
		{0, 1, 100, 6087, 0, 5000},
	})

	s := NewCRAMSearch(backend, "sample.cram", "sample.cram.crai", resolveChr1Only)
	name := "chrZZ"
	_, err := s.Search(context.Background(), backend, Query{
		Format: FormatCRAM, Class: ClassBody, ReferenceName: &name,
	})
	if err == nil {
		t.Fatal("expected an error for an unknown reference sequence")
	}
}

func TestCRAMSearchHeaderOnly(t *testing.T) {
	backend := newMemBackend()
	backend.objects["sample.cram"] = make([]byte, 1627756)
	backend.objects["sample.cram.crai"] = buildCRAI(t, [][6]int64{
		{0, 1, 100, 6087, 0, 5000},
	})

	s := NewCRAMSearch(backend, "sample.cram", "sample.cram.crai", resolveChr1Only)
	resp, err := s.Search(context.Background(), backend, Query{Format: FormatCRAM, Class: ClassHeader})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.URLs) != 1 || resp.URLs[0].Class == nil || *resp.URLs[0].Class != ClassHeader {
		t.Errorf("expected a single Header URL, got %+v", resp.URLs)
	}
}
