package format

import (
	"bytes"
	"testing"

	"github.com/dreamtex/dtex/internal/palette"
	"github.com/dreamtex/dtex/internal/pvrtype"
	"github.com/dreamtex/dtex/internal/sizeplan"
	"github.com/dreamtex/dtex/internal/texel"
)

func TestHeaderRoundTrip(t *testing.T) {
	tt := pvrtype.NewType(texel.RGB565, 0)
	size := sizeplan.Calculate(8, 8, tt)
	h := Header{Width: 8, Height: 8, TextureType: tt, Size: size}

	var buf bytes.Buffer
	if err := WriteHeader(&buf, h); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	if buf.Len() != HeaderSize {
		t.Fatalf("written %d bytes, want %d", buf.Len(), HeaderSize)
	}

	got, err := ReadHeader(&buf)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if got != h {
		t.Fatalf("ReadHeader = %+v, want %+v", got, h)
	}
}

func TestHeaderRejectsBadMagic(t *testing.T) {
	buf := bytes.NewBuffer(make([]byte, HeaderSize))
	if _, err := ReadHeader(buf); err != ErrBadMagic {
		t.Fatalf("ReadHeader on zeroed buffer: err = %v, want ErrBadMagic", err)
	}
}

func TestHeaderRejectsNonSquareMipmap(t *testing.T) {
	tt := pvrtype.NewType(texel.RGB565, pvrtype.FlagMipmapped)
	h := Header{Width: 16, Height: 8, TextureType: tt}
	var buf bytes.Buffer
	if err := WriteHeader(&buf, h); err != ErrNonSquareMipmap {
		t.Fatalf("WriteHeader on non-square mipmap: err = %v, want ErrNonSquareMipmap", err)
	}
}

func TestHeaderStridedWidthRoundedToPowerOfTwo(t *testing.T) {
	tt := pvrtype.NewType(texel.RGB565, pvrtype.FlagStrided|pvrtype.FlagNonTwiddled).WithStrideField(64)
	size := sizeplan.Calculate(64, 16, tt)
	h := Header{Width: 64, Height: 16, TextureType: tt, Size: size}
	var buf bytes.Buffer
	if err := WriteHeader(&buf, h); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	got, err := ReadHeader(&buf)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if got.Width != 64 {
		t.Fatalf("Width = %d, want 64 (already a power of two)", got.Width)
	}
}

func TestPadToFillsRemainder(t *testing.T) {
	var buf bytes.Buffer
	n, err := PadTo(&buf, 100, 128)
	if err != nil {
		t.Fatalf("PadTo: %v", err)
	}
	if n != 28 {
		t.Fatalf("padded = %d, want 28", n)
	}
	if buf.Len() != 28 {
		t.Fatalf("buf.Len() = %d, want 28", buf.Len())
	}
	for _, b := range buf.Bytes() {
		if b != 0 {
			t.Fatalf("padding byte = %#x, want 0", b)
		}
	}
}

func TestPadToNoOpWhenAlreadyAtTarget(t *testing.T) {
	var buf bytes.Buffer
	n, err := PadTo(&buf, 128, 128)
	if err != nil {
		t.Fatalf("PadTo: %v", err)
	}
	if n != 0 || buf.Len() != 0 {
		t.Fatalf("PadTo at target wrote %d bytes, want 0", buf.Len())
	}
}

func TestPaletteFileRoundTrip(t *testing.T) {
	p := palette.New()
	p.Insert(0xFF112233)
	p.Insert(0xFFAABBCC)

	var buf bytes.Buffer
	if err := WritePaletteFile(&buf, p); err != nil {
		t.Fatalf("WritePaletteFile: %v", err)
	}
	if string(buf.Bytes()[0:4]) != PaletteMagic {
		t.Fatalf("magic = %q, want %q", buf.Bytes()[0:4], PaletteMagic)
	}

	got, err := ReadPaletteFile(&buf)
	if err != nil {
		t.Fatalf("ReadPaletteFile: %v", err)
	}
	if got.Count() != 2 || got.ColorAt(0) != 0xFF112233 || got.ColorAt(1) != 0xFFAABBCC {
		t.Fatalf("round-tripped palette mismatch: %+v", got.Colors())
	}
}

func TestPaletteFileAcceptsTextureMagic(t *testing.T) {
	p := palette.New()
	p.Insert(0xFF010203)

	var buf bytes.Buffer
	if err := WritePaletteFile(&buf, p); err != nil {
		t.Fatalf("WritePaletteFile: %v", err)
	}
	raw := buf.Bytes()
	copy(raw[0:4], TextureMagic) // simulate the documented writer bug

	got, err := ReadPaletteFile(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("ReadPaletteFile with DTEX magic: %v", err)
	}
	if got.Count() != 1 || got.ColorAt(0) != 0xFF010203 {
		t.Fatalf("palette mismatch: %+v", got.Colors())
	}
}
