// Package palettevq implements the paletted-texture color and block
// compressors: reducing a source palette down to a target color count via
// 4-d ARGB vector quantization, and — for compressed PAL4BPP/PAL8BPP
// textures — clustering 2x4 pixel blocks (with PAL4BPP's mipmapped
// super-tile nibble coupling) into a 256-entry block codebook.
package palettevq

import (
	"io"

	"github.com/dreamtex/dtex/internal/palette"
	"github.com/dreamtex/dtex/internal/raster"
	"github.com/dreamtex/dtex/internal/texel"
	"github.com/dreamtex/dtex/internal/twiddle"
	"github.com/dreamtex/dtex/internal/vq"
)

// ReduceColors runs 4-d ARGB vector quantization across every pixel in
// every loaded level to bring the color count down to maxColors, and
// returns both the reduced palette and one freshly indexed image per
// level (indices refer to the returned palette, not to the source colors).
func ReduceColors(c *raster.Container, maxColors int) (*palette.Palette, map[int]*raster.Image) {
	var vectors []vq.Vec
	type pixelRef struct {
		size, x, y int
	}
	var order []pixelRef

	for _, size := range c.KeysAscending() {
		img := c.BySize(size)
		for y := 0; y < img.Height(); y++ {
			for x := 0; x < img.Width(); x++ {
				p := img.Pixel(x, y)
				v := vq.NewVec(4)
				v.Set(0, float32(p.A)/255)
				v.Set(1, float32(p.R)/255)
				v.Set(2, float32(p.G)/255)
				v.Set(3, float32(p.B)/255)
				vectors = append(vectors, v)
				order = append(order, pixelRef{size, x, y})
			}
		}
	}

	quant := vq.New(4)
	quant.Compress(vectors, maxColors)

	pal := palette.New()
	codeToPal := make([]uint8, quant.CodeCount())
	for i := 0; i < quant.CodeCount(); i++ {
		v := quant.CodeVector(i)
		c := texel.RGBA{
			A: clampByte(v.Get(0)),
			R: clampByte(v.Get(1)),
			G: clampByte(v.Get(2)),
			B: clampByte(v.Get(3)),
		}
		argb := texel.Pack(c)
		pal.Insert(argb)
		codeToPal[i] = uint8(pal.IndexOf(argb))
	}

	indexed := make(map[int]*raster.Image)
	for i, ref := range order {
		img, ok := indexed[ref.size]
		if !ok {
			src := c.BySize(ref.size)
			img = raster.New(src.Width(), src.Height())
			img.AllocateIndexed(pal.Count())
			indexed[ref.size] = img
		}
		idx := quant.FindClosest(vectors[i])
		img.SetIndexedPixel(ref.x, ref.y, codeToPal[idx])
	}
	return pal, indexed
}

// ConvertToIndexed builds one indexed image per level by looking up each
// pixel directly in pal, used on the lossless path where the source
// already has at most maxColors distinct colors.
func ConvertToIndexed(c *raster.Container, pal *palette.Palette) map[int]*raster.Image {
	out := make(map[int]*raster.Image)
	for _, size := range c.KeysAscending() {
		src := c.BySize(size)
		dst := raster.New(src.Width(), src.Height())
		dst.AllocateIndexed(pal.Count())
		for y := 0; y < src.Height(); y++ {
			for x := 0; x < src.Width(); x++ {
				idx := pal.IndexOf(texel.Pack(src.Pixel(x, y)))
				dst.SetIndexedPixel(x, y, uint8(idx))
			}
		}
		out[size] = dst
	}
	return out
}

func clampByte(f float32) uint8 {
	v := int32(f*255 + 0.5)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// WriteUncompressed4BPP packs two twiddled index streams per byte, low
// nibble first. The 1x1 mipmap level (if present) is stored alone as one
// full byte rather than sharing a nibble.
func WriteUncompressed4BPP(w io.Writer, images map[int]*raster.Image, sizesAscending []int) error {
	if len(sizesAscending) > 1 {
		if err := writeZeroes(w, 1); err != nil {
			return err
		}
	}
	for _, size := range sizesAscending {
		img := images[size]
		if img.Width() == 1 {
			if _, err := w.Write([]byte{img.IndexedPixelAt(0, 0)}); err != nil {
				return err
			}
			continue
		}

		tw := twiddle.New(img.Width(), img.Height())
		pixels := img.Width() * img.Height()
		for j := 0; j < pixels; j += 2 {
			var pair [2]uint8
			for k := 0; k < 2; k++ {
				idx := tw.Index(j + k)
				x := idx % img.Width()
				y := idx / img.Width()
				pair[k] = img.IndexedPixelAt(x, y)
			}
			packed := ((pair[1] & 0xF) << 4) | (pair[0] & 0xF)
			if _, err := w.Write([]byte{packed}); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteUncompressed8BPP writes one twiddled index byte per pixel.
func WriteUncompressed8BPP(w io.Writer, images map[int]*raster.Image, sizesAscending []int) error {
	if len(sizesAscending) > 1 {
		if err := writeZeroes(w, 3); err != nil {
			return err
		}
	}
	for _, size := range sizesAscending {
		img := images[size]
		tw := twiddle.New(img.Width(), img.Height())
		pixels := img.Width() * img.Height()
		for j := 0; j < pixels; j++ {
			idx := tw.Index(j)
			x := idx % img.Width()
			y := idx / img.Width()
			if _, err := w.Write([]byte{img.IndexedPixelAt(x, y)}); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeZeroes(w io.Writer, n int) error {
	_, err := w.Write(make([]byte, n))
	return err
}
