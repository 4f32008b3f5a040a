package htsget

import (
	"reflect"
	"testing"
)

func TestMergeAllMergesOverlappingAndTouching(t *testing.T) {
	in := []BytesPosition{
		{Start: 100, End: 200},
		{Start: 200, End: 300}, // touches the first
		{Start: 500, End: 600},
		{Start: 550, End: 650}, // overlaps the third
	}
	got := MergeAll(in)
	want := []BytesPosition{
		{Start: 100, End: 300},
		{Start: 500, End: 650},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MergeAll() = %+v, want %+v", got, want)
	}
}

func TestMergeAllOrdersHeaderBeforeBody(t *testing.T) {
	in := []BytesPosition{
		{Start: 500, End: 600},
		BytesPosition{Start: 0, End: 100}.WithClass(ClassHeader),
	}
	got := MergeAll(in)
	if len(got) != 2 {
		t.Fatalf("expected 2 ranges, got %d", len(got))
	}
	if !got[0].HasClass || got[0].Class != ClassHeader {
		t.Errorf("expected first range to be Header, got %+v", got[0])
	}
}

func TestUpdateClasses(t *testing.T) {
	in := []BytesPosition{
		{Start: 0, End: 4667},
		{Start: 2060795, End: 2596770},
	}
	got := UpdateClasses(in, 4667)
	if got[0].Class != ClassHeader {
		t.Errorf("expected range 0 to be Header, got %v", got[0].Class)
	}
	if got[1].Class != ClassBody {
		t.Errorf("expected range 1 to be Body, got %v", got[1].Class)
	}
}
