package dedup

import (
	"testing"

	"github.com/dreamtex/dtex/internal/raster"
	"github.com/dreamtex/dtex/internal/texel"
)

func solidContainer(t *testing.T, size int, c texel.RGBA) *raster.Container {
	t.Helper()
	img := raster.New(size, size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetPixel(x, y, c)
		}
	}
	cont := raster.NewContainer()
	cont.LoadFromImages(map[int]*raster.Image{size: img})
	return cont
}

func TestPackQuadWordOrder(t *testing.T) {
	tl := texel.RGBA{R: 0x10, G: 0x10, B: 0x10, A: 0xFF}
	tr := texel.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xFF}
	bl := texel.RGBA{R: 0x30, G: 0x30, B: 0x30, A: 0xFF}
	br := texel.RGBA{R: 0x40, G: 0x40, B: 0x40, A: 0xFF}

	quad := PackQuad(tl, tr, bl, br, texel.RGB565)
	words := CodebookWords(quad)

	wantTL := texel.Encode16(tl, texel.RGB565)
	wantTR := texel.Encode16(tr, texel.RGB565)
	wantBL := texel.Encode16(bl, texel.RGB565)
	wantBR := texel.Encode16(br, texel.RGB565)

	if words[0] != wantTL || words[1] != wantBL || words[2] != wantTR || words[3] != wantBR {
		t.Fatalf("CodebookWords = %v, want [%d %d %d %d] (tl,bl,tr,br)", words, wantTL, wantBL, wantTR, wantBR)
	}
}

func TestEncodeSingleColorBlockYieldsOneCode(t *testing.T) {
	cont := solidContainer(t, 8, texel.RGBA{R: 0x11, G: 0x22, B: 0x33, A: 0xFF})
	res := Encode(cont, texel.RGB565)
	if !res.Success {
		t.Fatalf("Encode did not succeed on a solid-color image")
	}
	if res.UniqueCount != 1 {
		t.Fatalf("UniqueCount = %d, want 1", res.UniqueCount)
	}
	half := res.Indexed[8]
	if half == nil {
		t.Fatalf("missing indexed image for size 8")
	}
	if half.Width() != 4 || half.Height() != 4 {
		t.Fatalf("indexed image dims = %dx%d, want 4x4", half.Width(), half.Height())
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if got := half.IndexedPixelAt(x, y); got != 0 {
				t.Fatalf("IndexedPixelAt(%d,%d) = %d, want 0", x, y, got)
			}
		}
	}
}

func TestEncodeOverflowReportsFailureButKeepsCounting(t *testing.T) {
	// Spread the block index across bits RGB565 actually keeps (top 5 of
	// R, top 6 of G) so all 1024 blocks stay distinct after quantization.
	img := raster.New(64, 64)
	for y := 0; y < 64; y += 2 {
		for x := 0; x < 64; x += 2 {
			i := (y/2)*32 + x/2
			r := uint8(i&31) << 3
			g := uint8((i>>5)&63) << 2
			c := texel.RGBA{R: r, G: g, A: 0xFF}
			img.SetPixel(x, y, c)
			img.SetPixel(x+1, y, c)
			img.SetPixel(x, y+1, c)
			img.SetPixel(x+1, y+1, c)
		}
	}
	cont := raster.NewContainer()
	cont.LoadFromImages(map[int]*raster.Image{64: img})

	res := Encode(cont, texel.RGB565)
	if res.Success {
		t.Fatalf("Encode succeeded, want failure (1024 unique blocks > 256)")
	}
	if res.UniqueCount <= MaxCodes {
		t.Fatalf("UniqueCount = %d, want > %d", res.UniqueCount, MaxCodes)
	}
}
