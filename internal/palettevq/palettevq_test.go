package palettevq

import (
	"bytes"
	"testing"

	"github.com/dreamtex/dtex/internal/palette"
	"github.com/dreamtex/dtex/internal/raster"
	"github.com/dreamtex/dtex/internal/texel"
)

func solidIndexedChain(t *testing.T) (map[int]*raster.Image, []int, *palette.Palette) {
	t.Helper()
	pal := palette.New()
	pal.Insert(0xFF112233)

	images := make(map[int]*raster.Image)
	sizes := []int{1, 2, 4, 8}
	for _, size := range sizes {
		img := raster.New(size, size)
		img.AllocateIndexed(1)
		images[size] = img
	}
	return images, sizes, pal
}

func TestConvertToIndexedLooksUpPaletteDirectly(t *testing.T) {
	img := raster.New(2, 2)
	img.SetPixel(0, 0, texel.RGBA{R: 0x11, G: 0x22, B: 0x33, A: 0xFF})
	img.SetPixel(1, 0, texel.RGBA{R: 0xAA, G: 0xBB, B: 0xCC, A: 0xFF})
	img.SetPixel(0, 1, texel.RGBA{R: 0x11, G: 0x22, B: 0x33, A: 0xFF})
	img.SetPixel(1, 1, texel.RGBA{R: 0xAA, G: 0xBB, B: 0xCC, A: 0xFF})

	c := raster.NewContainer()
	c.LoadFromImages(map[int]*raster.Image{2: img})

	pal := palette.New()
	pal.Insert(0xFF112233)
	pal.Insert(0xFFAABBCC)

	indexed := ConvertToIndexed(c, pal)
	dst := indexed[2]
	if dst.IndexedPixelAt(0, 0) != 0 || dst.IndexedPixelAt(1, 0) != 1 {
		t.Fatalf("unexpected indices: (0,0)=%d (1,0)=%d", dst.IndexedPixelAt(0, 0), dst.IndexedPixelAt(1, 0))
	}
}

func TestReduceColorsBoundsCodeCount(t *testing.T) {
	img := raster.New(4, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetPixel(x, y, texel.RGBA{R: uint8(x * 60), G: uint8(y * 60), B: 128, A: 255})
		}
	}
	c := raster.NewContainer()
	c.LoadFromImages(map[int]*raster.Image{4: img})

	pal, indexed := ReduceColors(c, 4)
	if pal.Count() > 4 {
		t.Fatalf("palette count = %d, want <= 4", pal.Count())
	}
	dst := indexed[4]
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if int(dst.IndexedPixelAt(x, y)) >= pal.Count() {
				t.Fatalf("index out of range at (%d,%d)", x, y)
			}
		}
	}
}

func TestWriteUncompressed4BPPSingleLevelByteCount(t *testing.T) {
	img := raster.New(4, 4)
	img.AllocateIndexed(16)
	images := map[int]*raster.Image{4: img}

	var buf bytes.Buffer
	if err := WriteUncompressed4BPP(&buf, images, []int{4}); err != nil {
		t.Fatalf("WriteUncompressed4BPP: %v", err)
	}
	if buf.Len() != 8 {
		t.Fatalf("wrote %d bytes, want 8 (16 pixels at 2 per byte)", buf.Len())
	}
}

func TestWriteUncompressed8BPPSingleLevelByteCount(t *testing.T) {
	img := raster.New(4, 4)
	img.AllocateIndexed(256)
	images := map[int]*raster.Image{4: img}

	var buf bytes.Buffer
	if err := WriteUncompressed8BPP(&buf, images, []int{4}); err != nil {
		t.Fatalf("WriteUncompressed8BPP: %v", err)
	}
	if buf.Len() != 16 {
		t.Fatalf("wrote %d bytes, want 16", buf.Len())
	}
}

func TestWriteCompressed8BPPDataProducesCodebookPlusIndices(t *testing.T) {
	images, sizes, pal := solidIndexedChain(t)
	// Only the 4x4 and 8x8 levels are vectorized; levels below
	// pvrtype.MinMipmapPal are skipped. That is 2 + 8 index bytes after the
	// codebook and the 1-byte mipmap placeholder.
	var buf bytes.Buffer
	if err := WriteCompressed8BPPData(&buf, images, sizes, pal); err != nil {
		t.Fatalf("WriteCompressed8BPPData: %v", err)
	}
	if buf.Len() < 2048 {
		t.Fatalf("output shorter than the fixed 2048-byte codebook: %d", buf.Len())
	}
	if want := 2048 + 1 + 2 + 8; buf.Len() != want {
		t.Fatalf("wrote %d bytes, want %d (codebook + placeholder + indices)", buf.Len(), want)
	}
}
