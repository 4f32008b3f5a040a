package crypt4gh

import (
	"reflect"
	"testing"
)

func TestBuildEditListSingleRangeNotAtStart(t *testing.T) {
	got := BuildEditList([]Range{{Start: 100, End: 200}}, 1000)
	want := []uint64{100, 100}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BuildEditList() = %v, want %v", got, want)
	}
}

func TestBuildEditListRangeAtStart(t *testing.T) {
	got := BuildEditList([]Range{{Start: 0, End: 50}}, 1000)
	want := []uint64{0, 50}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BuildEditList() = %v, want %v", got, want)
	}
}

func TestBuildEditListMultipleGaps(t *testing.T) {
	got := BuildEditList([]Range{
		{Start: 300, End: 400},
		{Start: 0, End: 100},
		{Start: 500, End: 600},
	}, 1000)
	want := []uint64{0, 100, 200, 100, 100, 100}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BuildEditList() = %v, want %v", got, want)
	}
}

func TestBuildEditListMergesOverlapping(t *testing.T) {
	got := BuildEditList([]Range{
		{Start: 100, End: 250},
		{Start: 200, End: 300},
	}, 1000)
	want := []uint64{100, 200}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BuildEditList() = %v, want %v", got, want)
	}
}

func TestBuildEditListClampsToStreamLength(t *testing.T) {
	got := BuildEditList([]Range{{Start: 900, End: 2000}}, 1000)
	want := []uint64{900, 100}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BuildEditList() = %v, want %v", got, want)
	}
}

// TestBuildEditListSpansMultipleBlocks exercises ranges whose enclosing
// 65536-byte blocks don't overlap, so the blocks untouched between them
// must be skipped entirely rather than counted as discard.
func TestBuildEditListSpansMultipleBlocks(t *testing.T) {
	got := BuildEditList([]Range{
		{Start: 0, End: 7853},
		{Start: 145110, End: 453039},
		{Start: 5485074, End: 5485112},
	}, 5485112)
	want := []uint64{0, 7853, 71721, 307929, 51299, 38}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BuildEditList() = %v, want %v", got, want)
	}
}
