package htsindex

import (
	"bytes"
	"compress/gzip"
	"testing"
)

func buildCRAI(t *testing.T, lines []string) []byte {
	t.Helper()
	var raw bytes.Buffer
	for _, l := range lines {
		raw.WriteString(l)
		raw.WriteByte('\n')
	}
	var gz bytes.Buffer
	w := gzip.NewWriter(&gz)
	if _, err := w.Write(raw.Bytes()); err != nil {
		t.Fatalf("write gzip: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close gzip: %v", err)
	}
	return gz.Bytes()
}

func TestReadCRAI(t *testing.T) {
	lines := []string{
		"0\t0\t9999\t26\t0\t6061",
		"0\t9999\t9999\t6087\t0\t5000",
		"-1\t0\t0\t1280106\t0\t347650",
	}
	idx, err := ReadCRAI(bytes.NewReader(buildCRAI(t, lines)))
	if err != nil {
		t.Fatalf("ReadCRAI: %v", err)
	}
	if len(idx.Records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(idx.Records))
	}
	if idx.Records[0].ContainerStartOffset != 26 {
		t.Errorf("record 0 ContainerStartOffset = %d, want 26", idx.Records[0].ContainerStartOffset)
	}
	if !idx.Records[2].Unmapped() {
		t.Error("record 2 expected Unmapped() == true")
	}
	if idx.Records[1].End() != 9999+9999 {
		t.Errorf("record 1 End() = %d, want %d", idx.Records[1].End(), 9999+9999)
	}
}
