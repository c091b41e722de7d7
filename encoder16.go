package dtex

import (
	"encoding/binary"
	"io"

	"github.com/dreamtex/dtex/internal/dedup"
	"github.com/dreamtex/dtex/internal/pvrtype"
	"github.com/dreamtex/dtex/internal/raster"
	"github.com/dreamtex/dtex/internal/texel"
	"github.com/dreamtex/dtex/internal/twiddle"
	"github.com/dreamtex/dtex/internal/vq"
)

// mipmapOffset16BPP is the zero-padding written before a mipmapped,
// uncompressed 16bpp texture's first (1x1) level.
const mipmapOffset16BPP = 6

// yuvPair threads the pairing state convertAndWriteTexel's static locals
// used to hold across calls: YUV422 has no single-texel encoding, so every
// other format writes a texel immediately while YUV422 buffers one (strided)
// or three (twiddled) texels before it has a full pair to emit.
//
// Twiddled grouping pairs texel 0 with texel 2 and texel 1 with the current
// one: a twiddled scan visits a 2x2 tile in (0,0),(1,0),(0,1),(1,1) order,
// so those pairs are the ones sharing a chroma sample; non-twiddled
// (stride) scanning pairs the two texels it sees back to back, i.e.
// horizontally.
type yuvPair struct {
	saved [3]texel.RGBA
	index int
}

func (p *yuvPair) writeTexel(w io.Writer, c texel.RGBA, format texel.Format, twiddled bool) error {
	if format != texel.YUV422 {
		return writeU16(w, texel.Encode16(c, format))
	}

	switch {
	case !twiddled && p.index == 1:
		y0, y1 := texel.EncodeYUV422Pair(p.saved[0], c)
		if err := writeU16(w, y0); err != nil {
			return err
		}
		if err := writeU16(w, y1); err != nil {
			return err
		}
		p.index = 0
		return nil
	case twiddled && p.index == 3:
		y0, y2 := texel.EncodeYUV422Pair(p.saved[0], p.saved[2])
		y1, y3 := texel.EncodeYUV422Pair(p.saved[1], c)
		for _, v := range [4]uint16{y0, y1, y2, y3} {
			if err := writeU16(w, v); err != nil {
				return err
			}
		}
		p.index = 0
		return nil
	default:
		p.saved[p.index] = c
		p.index++
		return nil
	}
}

func writeU16(w io.Writer, v uint16) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func writeZeroes(w io.Writer, n int) error {
	_, err := w.Write(make([]byte, n))
	return err
}

// writeStrideData writes img in plain raster order, unquantized, un-twiddled.
func writeStrideData(w io.Writer, img *raster.Image, format texel.Format) error {
	var pair yuvPair
	for y := 0; y < img.Height(); y++ {
		for x := 0; x < img.Width(); x++ {
			if err := pair.writeTexel(w, img.Pixel(x, y), format, false); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeUncompressed16 writes every level of c in twiddled order, smallest
// first, with a zero-padded mipmap offset ahead of the first level when more
// than one is present. A 1x1 YUV422 level has no pair to form, so it falls
// back to a single RGB565 word.
func writeUncompressed16(w io.Writer, c *raster.Container, format texel.Format) error {
	if c.HasMipmaps() {
		if err := writeZeroes(w, mipmapOffset16BPP); err != nil {
			return err
		}
	}

	for _, size := range c.KeysAscending() {
		img := c.BySize(size)

		if img.Width() == 1 && img.Height() == 1 && format == texel.YUV422 {
			var pair yuvPair
			if err := pair.writeTexel(w, img.Pixel(0, 0), texel.RGB565, true); err != nil {
				return err
			}
			continue
		}

		tw := twiddle.New(img.Width(), img.Height())
		pixels := img.Width() * img.Height()
		var pair yuvPair
		for j := 0; j < pixels; j++ {
			idx := tw.Index(j)
			x := idx % img.Width()
			y := idx / img.Width()
			if err := pair.writeTexel(w, img.Pixel(x, y), format, true); err != nil {
				return err
			}
		}
	}
	return nil
}

// vectorize16 collects every 2x2 block of every level at least
// pvrtype.MinMipmapVQ on a side, in ascending level order and raster block
// order (not twiddled — the twiddle permutation only applies to the final
// index-byte stream, not to vector construction).
func vectorize16(c *raster.Container, argb bool) (vectors []vq.Vec, sizes []int) {
	for _, size := range c.KeysAscending() {
		img := c.BySize(size)
		if img.Width() < pvrtype.MinMipmapVQ || img.Height() < pvrtype.MinMipmapVQ {
			continue
		}
		sizes = append(sizes, size)
		for y := 0; y < img.Height(); y += 2 {
			for x := 0; x < img.Width(); x += 2 {
				tl := img.Pixel(x, y)
				tr := img.Pixel(x+1, y)
				bl := img.Pixel(x, y+1)
				br := img.Pixel(x+1, y+1)
				if argb {
					vectors = append(vectors, vq.VectorizeARGB(tl, tr, bl, br))
				} else {
					vectors = append(vectors, vq.VectorizeRGB(tl, tr, bl, br))
				}
			}
		}
	}
	return vectors, sizes
}

// writeCompressed16 tries the lossless dedup pass first; only when the
// source holds more than dedup.MaxCodes distinct quads does it fall back to
// vector-quantizing 2x2 blocks. ARGB1555/ARGB4444 vectorize with alpha,
// everything else drops it.
func writeCompressed16(w io.Writer, c *raster.Container, format texel.Format) error {
	result := dedup.Encode(c, format)

	var codebook []uint64
	var indexed map[int]*raster.Image

	if result.Success {
		codebook = result.Codebook
		indexed = result.Indexed
	} else {
		argb := format == texel.ARGB1555 || format == texel.ARGB4444
		dim := vq.DimRGB
		if argb {
			dim = vq.DimARGB
		}

		vectors, sizes := vectorize16(c, argb)
		quant := vq.New(dim)
		quant.Compress(vectors, dedup.MaxCodes)

		codebook = make([]uint64, quant.CodeCount())
		for i := 0; i < quant.CodeCount(); i++ {
			code := quant.CodeVector(i)
			var tl, tr, bl, br texel.RGBA
			if argb {
				tl, tr, bl, br = vq.DevectorizeARGB(code)
			} else {
				tl, tr, bl, br = vq.DevectorizeRGB(code)
			}
			codebook[i] = dedup.PackQuad(tl, tr, bl, br, format)
		}

		indexed = make(map[int]*raster.Image, len(sizes))
		vi := 0
		for _, size := range sizes {
			src := c.BySize(size)
			half := raster.New(src.Width()/2, src.Height()/2)
			half.AllocateIndexed(dedup.MaxCodes)
			for y := 0; y < half.Height(); y++ {
				for x := 0; x < half.Width(); x++ {
					half.SetIndexedPixel(x, y, uint8(quant.FindClosest(vectors[vi])))
					vi++
				}
			}
			indexed[size] = half
		}
	}

	var codes [dedup.MaxCodes * 4]uint16
	for i, quad := range codebook {
		words := dedup.CodebookWords(quad)
		copy(codes[i*4:i*4+4], words[:])
	}
	for _, v := range codes {
		if err := writeU16(w, v); err != nil {
			return err
		}
	}

	if c.Count() > 1 {
		if err := writeZeroes(w, 1); err != nil {
			return err
		}
	}

	for _, size := range c.KeysAscending() {
		img, ok := indexed[size]
		if !ok {
			continue
		}
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

// encode16BPP dispatches a direct (non-paletted) texture to its strided,
// compressed, or plain uncompressed writer.
func encode16BPP(w io.Writer, c *raster.Container, t pvrtype.TextureType) error {
	format := t.PixelFormat()
	switch {
	case t.IsStrided():
		return writeStrideData(w, c.ByIndex(0, true), format)
	case t.IsCompressed():
		return writeCompressed16(w, c, format)
	default:
		return writeUncompressed16(w, c, format)
	}
}
