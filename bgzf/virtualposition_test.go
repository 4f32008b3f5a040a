package bgzf

import "testing"

func TestVirtualPositionRoundTrip(t *testing.T) {
	cases := []struct {
		compressed   uint64
		uncompressed uint16
	}{
		{0, 0},
		{1, 0},
		{256721, 0},
		{824361, 1234},
		{0xffffffffffff, 0xffff},
	}
	for _, c := range cases {
		vp := NewVirtualPosition(c.compressed, c.uncompressed)
		if got := vp.Compressed(); got != c.compressed {
			t.Errorf("Compressed() = %d, want %d", got, c.compressed)
		}
		if got := vp.Uncompressed(); got != c.uncompressed {
			t.Errorf("Uncompressed() = %d, want %d", got, c.uncompressed)
		}
	}
}

func TestVirtualPositionRaw(t *testing.T) {
	vp := NewVirtualPosition(5, 3)
	want := uint64(5)<<16 | 3
	if vp.Raw() != want {
		t.Errorf("Raw() = %d, want %d", vp.Raw(), want)
	}
}
