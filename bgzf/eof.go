package bgzf

// EOF is the fixed 28-byte BGZF end-of-file marker block. Every valid
// BGZF stream ends with exactly this sequence; its presence (or absence)
// at the tail of a file is not validated by the resolver itself but the
// constant is exposed for callers and tests that want to assert it.
var EOF = []byte{
	0x1f, 0x8b, 0x08, 0x04, 0x00, 0x00, 0x00, 0x00,
	0x00, 0xff, 0x06, 0x00, 0x42, 0x43, 0x02, 0x00,
	0x1b, 0x00, 0x03, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00,
}
