// Package crypt4gh implements the pure byte-accounting piece of
// Crypt4GH-aware htsget responses: turning a set of resolved byte
// ranges into the discard/keep length alternation a Crypt4GH edit-list
// packet encodes. The header-rewriting machinery around it (parsing the
// Crypt4GH header, deriving a session key, emitting the rewritten
// header over the wire) is out of scope — only this pure function is
// implemented, per the supplemented feature's intentionally narrow
// scope.
package crypt4gh

import "sort"

// Range is a half-open, 0-based byte interval within the plaintext
// stream an edit list addresses.
type Range struct {
	Start, End uint64
}

// blockSize is the fixed size, in bytes, of a Crypt4GH encrypted
// segment. Edit-list discard/keep lengths are computed relative to a
// range's enclosing 65536-byte block boundaries, not the plaintext
// range's own start/end, because the cipher only ever decrypts whole
// blocks.
const blockSize = 65536

// BuildEditList converts a list of byte ranges a client wants (assumed
// to lie within [0, streamLength), not necessarily sorted or merged)
// into a Crypt4GH edit-list: an alternating sequence of
// [discard, keep, discard, keep, ...] lengths covering the decrypted
// plaintext produced by fetching only the blockSize-byte blocks that
// overlap a wanted range. Two wanted ranges whose enclosing blocks
// overlap share a single fetch, so the gap between them is plain
// subtraction; two ranges separated by one or more untouched blocks
// each open their own fetch, so the gap is the unwanted tail of the
// first block plus the unwanted head of the second — the untouched
// blocks in between are never fetched and contribute nothing.
func BuildEditList(ranges []Range, streamLength uint64) []uint64 {
	merged := mergeRanges(ranges)

	var out []uint64
	var cursor uint64    // position just past the last kept byte
	var carry uint64     // tail of the previous block left undiscarded so far
	var windowEnd uint64 // end boundary of the block window currently open
	for _, r := range merged {
		if r.Start >= streamLength {
			break
		}
		end := r.End
		if end > streamLength {
			end = streamLength
		}
		if end <= r.Start {
			continue
		}

		startBoundary := floorToBlock(r.Start)
		endBoundary := ceilToBlock(end)
		if endBoundary > streamLength {
			endBoundary = streamLength
		}

		var discard uint64
		if startBoundary < windowEnd {
			// Still within the block window already open for a prior
			// range: that data is already part of the decrypted stream.
			discard = r.Start - cursor
		} else {
			discard = carry + (r.Start - startBoundary)
		}
		keep := end - r.Start
		out = append(out, discard, keep)

		cursor = end
		carry = endBoundary - end
		windowEnd = endBoundary
	}
	return out
}

// floorToBlock rounds n down to the previous multiple of blockSize.
func floorToBlock(n uint64) uint64 {
	return (n / blockSize) * blockSize
}

// ceilToBlock rounds n up to the next multiple of blockSize (n itself,
// if already a multiple).
func ceilToBlock(n uint64) uint64 {
	if n%blockSize == 0 {
		return n
	}
	return (n/blockSize + 1) * blockSize
}

func mergeRanges(ranges []Range) []Range {
	if len(ranges) == 0 {
		return nil
	}
	sorted := make([]Range, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})
	merged := []Range{sorted[0]}
	for _, r := range sorted[1:] {
		last := &merged[len(merged)-1]
		if r.Start <= last.End {
			if r.End > last.End {
				last.End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}
