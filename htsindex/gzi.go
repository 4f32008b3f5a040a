package htsindex

import (
	"fmt"
	"io"
)

// GZIEntry records the compressed and uncompressed offsets of the start
// of one BGZF block, as written by `bgzip -i`.
type GZIEntry struct {
	CompressedOffset   uint64
	UncompressedOffset uint64
}

// GZIIndex is the parsed form of a .gzi side file: the compressed/
// uncompressed offset of every BGZF block boundary after the first,
// in ascending order.
type GZIIndex struct {
	Entries []GZIEntry
}

// ReadGZI parses a .gzi stream: a little-endian uint64 entry count
// followed by that many (compressed, uncompressed) uint64 offset pairs.
func ReadGZI(r io.Reader) (*GZIIndex, error) {
	n, err := readUint64(r)
	if err != nil {
		return nil, fmt.Errorf("htsindex: read GZI entry count: %w", err)
	}
	idx := &GZIIndex{Entries: make([]GZIEntry, n)}
	for i := uint64(0); i < n; i++ {
		c, err := readUint64(r)
		if err != nil {
			return nil, fmt.Errorf("htsindex: read GZI entry %d compressed offset: %w", i, err)
		}
		u, err := readUint64(r)
		if err != nil {
			return nil, fmt.Errorf("htsindex: read GZI entry %d uncompressed offset: %w", i, err)
		}
		idx.Entries[i] = GZIEntry{CompressedOffset: c, UncompressedOffset: u}
	}
	return idx, nil
}

// NextBlockBoundary returns the smallest compressed offset strictly
// greater than after, or (0, false) if no such entry exists.
func (g *GZIIndex) NextBlockBoundary(after uint64) (uint64, bool) {
	best := uint64(0)
	found := false
	for _, e := range g.Entries {
		if e.CompressedOffset > after && (!found || e.CompressedOffset < best) {
			best = e.CompressedOffset
			found = true
		}
	}
	return best, found
}
