// Package bgzf implements the BGZF virtual-position arithmetic shared by
// every htsget index reader: a VirtualPosition packs a 48-bit compressed
// (file) offset and a 16-bit offset into the uncompressed data of the
// BGZF block that starts at that compressed offset.
package bgzf

// VirtualPosition is a compressed-offset/uncompressed-offset pair packed
// into a single uint64, matching the on-disk representation used by
// BAI/CSI/TBI chunk coordinates.
type VirtualPosition uint64

// NewVirtualPosition packs a compressed file offset and an uncompressed
// in-block offset into a VirtualPosition. compressed must fit in 48 bits
// and uncompressed in 16 bits.
func NewVirtualPosition(compressed uint64, uncompressed uint16) VirtualPosition {
	return VirtualPosition(compressed<<16 | uint64(uncompressed))
}

// Compressed returns the file offset, in bytes, of the start of the BGZF
// block this virtual position falls within.
func (v VirtualPosition) Compressed() uint64 {
	return uint64(v) >> 16
}

// Uncompressed returns the offset, in bytes, into the decompressed data
// of the block at Compressed().
func (v VirtualPosition) Uncompressed() uint16 {
	return uint16(uint64(v) & 0xffff)
}

// Raw returns the packed uint64 form, as stored in a chunk record.
func (v VirtualPosition) Raw() uint64 {
	return uint64(v)
}
