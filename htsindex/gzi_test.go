package htsindex

import (
	"bytes"
	"testing"
)

func TestReadGZIAndNextBlockBoundary(t *testing.T) {
	var buf bytes.Buffer
	writeU64(&buf, 3)
	writeU64(&buf, 256721)
	writeU64(&buf, 1000000)
	writeU64(&buf, 647345)
	writeU64(&buf, 1100000)
	writeU64(&buf, 824361)
	writeU64(&buf, 1200000)

	idx, err := ReadGZI(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ReadGZI: %v", err)
	}
	if len(idx.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(idx.Entries))
	}

	next, ok := idx.NextBlockBoundary(256721)
	if !ok || next != 647345 {
		t.Errorf("NextBlockBoundary(256721) = (%d, %v), want (647345, true)", next, ok)
	}
	next, ok = idx.NextBlockBoundary(824361)
	if ok {
		t.Errorf("NextBlockBoundary(824361) = (%d, %v), want not found", next, ok)
	}
	next, ok = idx.NextBlockBoundary(0)
	if !ok || next != 256721 {
		t.Errorf("NextBlockBoundary(0) = (%d, %v), want (256721, true)", next, ok)
	}
}
