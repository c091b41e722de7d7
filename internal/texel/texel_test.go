package texel

import "testing"

func TestEncode16ARGB1555RoundTrip(t *testing.T) {
	c := RGBA{R: 0xF8, G: 0x30, B: 0x18, A: 255}
	px := Encode16(c, ARGB1555)
	got := Decode16(px, ARGB1555)
	if got.R&0xF8 != c.R&0xF8 || got.G&0xF8 != c.G&0xF8 || got.B&0xF8 != c.B&0xF8 {
		t.Fatalf("round trip top 5 bits mismatch: got %+v want top bits of %+v", got, c)
	}
	if got.A != 255 {
		t.Fatalf("alpha = %d, want 255", got.A)
	}
}

func TestEncode16RGB565RoundTrip(t *testing.T) {
	// r = 0x11>>3 = 2, g = 0x22>>2 = 8, b = 0x33>>3 = 6.
	c := RGBA{R: 0x11, G: 0x22, B: 0x33, A: 255}
	px := Encode16(c, RGB565)
	if px != 2<<11|8<<5|6 {
		t.Fatalf("encode(#112233, RGB565) = %#04x, want %#04x", px, 2<<11|8<<5|6)
	}
	got := Decode16(px, RGB565)
	if got.R&0xF8 != c.R&0xF8 || got.G&0xFC != c.G&0xFC || got.B&0xF8 != c.B&0xF8 {
		t.Fatalf("round trip mismatch: got %+v from %+v", got, c)
	}
}

func TestEncode16ARGB4444RoundTrip(t *testing.T) {
	c := RGBA{R: 0xF0, G: 0xA0, B: 0x50, A: 0xD0}
	px := Encode16(c, ARGB4444)
	got := Decode16(px, ARGB4444)
	if got.R&0xF0 != c.R&0xF0 || got.G&0xF0 != c.G&0xF0 || got.B&0xF0 != c.B&0xF0 || got.A&0xF0 != c.A&0xF0 {
		t.Fatalf("round trip mismatch: got %+v from %+v", got, c)
	}
}

func TestYUV422PairRoundTripLuminance(t *testing.T) {
	c1 := RGBA{R: 200, G: 120, B: 40, A: 255}
	c2 := RGBA{R: 210, G: 130, B: 50, A: 255}
	w1, w2 := EncodeYUV422Pair(c1, c2)
	d1, d2 := DecodeYUV422Pair(w1, w2)

	absDiff := func(a, b uint8) int {
		if a > b {
			return int(a - b)
		}
		return int(b - a)
	}
	// Luminance should reconstruct closely; chroma is shared/averaged so
	// allow a wider tolerance than the per-channel bit-truncation case.
	if absDiff(d1.R, c1.R) > 8 || absDiff(d1.G, c1.G) > 8 || absDiff(d1.B, c1.B) > 8 {
		t.Fatalf("texel 1 reconstruction too far off: got %+v want ~%+v", d1, c1)
	}
	if absDiff(d2.R, c2.R) > 8 || absDiff(d2.G, c2.G) > 8 || absDiff(d2.B, c2.B) > 8 {
		t.Fatalf("texel 2 reconstruction too far off: got %+v want ~%+v", d2, c2)
	}
}

func TestEncode16UnsupportedFormat(t *testing.T) {
	if got := Encode16(RGBA{}, YUV422); got != 0xFFFF {
		t.Fatalf("Encode16(YUV422) = %#04x, want 0xFFFF (use EncodeYUV422Pair)", got)
	}
}

func TestBumpmapUpFacingNormal(t *testing.T) {
	// An up-facing normal (0,0,1) maps to r=g=128ish, b=255.
	c := RGBA{R: 128, G: 128, B: 255, A: 255}
	px := Encode16(c, BUMPMAP)
	back := Decode16(px, BUMPMAP)
	absDiff := func(a, b uint8) int {
		if a > b {
			return int(a - b)
		}
		return int(b - a)
	}
	if absDiff(back.B, 255) > 4 {
		t.Fatalf("expected reconstructed B near 255, got %d", back.B)
	}
}

func TestCombineHashDeterministic(t *testing.T) {
	c := RGBA{R: 1, G: 2, B: 3, A: 4}
	h1 := CombineHash(c, 0)
	h2 := CombineHash(c, 0)
	if h1 != h2 {
		t.Fatalf("CombineHash not deterministic: %d != %d", h1, h2)
	}
}

func TestPackUnpackRoundTrip(t *testing.T) {
	c := RGBA{R: 10, G: 20, B: 30, A: 40}
	if got := Unpack(Pack(c)); got != c {
		t.Fatalf("Unpack(Pack(c)) = %+v, want %+v", got, c)
	}
}
