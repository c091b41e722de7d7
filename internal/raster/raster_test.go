package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/dreamtex/dtex/internal/texel"
)

func TestDecodePNGToDirectPixels(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.Set(0, 0, color.NRGBA{0x11, 0x22, 0x33, 0xFF})
	src.Set(1, 0, color.NRGBA{0x44, 0x55, 0x66, 0x80})
	src.Set(0, 1, color.NRGBA{0x00, 0x00, 0x00, 0x00})
	src.Set(1, 1, color.NRGBA{0xFF, 0xFF, 0xFF, 0xFF})

	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}

	im, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if im.Width() != 2 || im.Height() != 2 {
		t.Fatalf("dims = %dx%d, want 2x2", im.Width(), im.Height())
	}
	got := im.Pixel(0, 0)
	want := texel.RGBA{R: 0x11, G: 0x22, B: 0x33, A: 0xFF}
	if got != want {
		t.Fatalf("Pixel(0,0) = %+v, want %+v", got, want)
	}
}

func TestScaledNearestExactFormula(t *testing.T) {
	im := New(4, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			im.SetPixel(x, y, texel.RGBA{R: uint8(y*4 + x)})
		}
	}
	out := im.Scaled(2, 2, true)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			srcX := x * 4 / 2
			srcY := y * 4 / 2
			want := im.Pixel(srcX, srcY)
			if got := out.Pixel(x, y); got != want {
				t.Fatalf("Pixel(%d,%d) = %+v, want %+v", x, y, got, want)
			}
		}
	}
}

func TestScaledBilinearCornersMatchSource(t *testing.T) {
	im := New(2, 2)
	im.SetPixel(0, 0, texel.RGBA{R: 10})
	im.SetPixel(1, 0, texel.RGBA{R: 20})
	im.SetPixel(0, 1, texel.RGBA{R: 30})
	im.SetPixel(1, 1, texel.RGBA{R: 40})

	out := im.Scaled(4, 4, false)
	if got := out.Pixel(0, 0); got.R != 10 {
		t.Fatalf("top-left corner R = %d, want 10", got.R)
	}
	if got := out.Pixel(3, 0); got.R != 20 {
		t.Fatalf("top-right corner R = %d, want 20", got.R)
	}
	if got := out.Pixel(0, 3); got.R != 30 {
		t.Fatalf("bottom-left corner R = %d, want 30", got.R)
	}
	if got := out.Pixel(3, 3); got.R != 40 {
		t.Fatalf("bottom-right corner R = %d, want 40", got.R)
	}
}

func TestScaledBilinearSinglePixelIsMean(t *testing.T) {
	im := New(2, 2)
	im.SetPixel(0, 0, texel.RGBA{R: 0})
	im.SetPixel(1, 0, texel.RGBA{R: 40})
	im.SetPixel(0, 1, texel.RGBA{R: 80})
	im.SetPixel(1, 1, texel.RGBA{R: 120})

	out := im.Scaled(1, 1, false)
	if got := out.Pixel(0, 0).R; got != 60 {
		t.Fatalf("1x1 bilinear R = %d, want 60 (mean of the 2x2 source)", got)
	}
}

func TestApplyColorKeyMakesMatchTransparent(t *testing.T) {
	im := New(2, 1)
	im.SetPixel(0, 0, texel.RGBA{R: 0xFF, G: 0x00, B: 0xFF, A: 0xFF})
	im.SetPixel(1, 0, texel.RGBA{R: 0x11, G: 0x22, B: 0x33, A: 0xFF})

	ApplyColorKey(im, texel.RGBA{R: 0xFF, G: 0x00, B: 0xFF})

	if got := im.Pixel(0, 0); got != (texel.RGBA{}) {
		t.Fatalf("keyed pixel = %+v, want zero value", got)
	}
	if got := im.Pixel(1, 0); got.A != 0xFF {
		t.Fatalf("non-keyed pixel alpha = %d, want 0xFF untouched", got.A)
	}
}

func TestIndexedModeIgnoresDirectSetPixel(t *testing.T) {
	im := New(2, 2)
	im.AllocateIndexed(4)
	im.SetPixel(0, 0, texel.RGBA{R: 0xFF})
	if got := im.Pixel(0, 0); got != (texel.RGBA{}) {
		t.Fatalf("SetPixel on indexed image mutated pixels: %+v", got)
	}
	im.SetIndexedPixel(0, 0, 3)
	if got := im.IndexedPixelAt(0, 0); got != 3 {
		t.Fatalf("IndexedPixelAt = %d, want 3", got)
	}
}
