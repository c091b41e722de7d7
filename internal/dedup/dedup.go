// Package dedup implements the lossless 2x2-block deduplication pass: if an
// image (or mipmap chain) contains at most 256 distinct 2x2 texel blocks,
// the whole chain can be stored as a 256-entry codebook plus a half-size
// index image per level, with no quality loss and no vector quantization.
package dedup

import (
	"github.com/dreamtex/dtex/internal/pvrtype"
	"github.com/dreamtex/dtex/internal/raster"
	"github.com/dreamtex/dtex/internal/texel"
)

// MaxCodes is the largest codebook the lossless path can emit; more
// distinct quads than this forces the vector-quantization fallback.
const MaxCodes = 256

// PackQuad packs a 2x2 block of texels into a 64-bit key, encoding each
// texel (or, for YUV422, each horizontal pair) with format. The word order
// within the key is top-left, top-right, bottom-left, bottom-right, high
// to low bits, so codebook byte layout is identical whichever path (dedup
// or VQ) produced it.
func PackQuad(tl, tr, bl, br texel.RGBA, format texel.Format) uint64 {
	var a, b, c, d uint64
	if format == texel.YUV422 {
		y0, y1 := texel.EncodeYUV422Pair(tl, tr)
		y2, y3 := texel.EncodeYUV422Pair(bl, br)
		a, b, c, d = uint64(y0), uint64(y1), uint64(y2), uint64(y3)
	} else {
		a = uint64(texel.Encode16(tl, format))
		b = uint64(texel.Encode16(tr, format))
		c = uint64(texel.Encode16(bl, format))
		d = uint64(texel.Encode16(br, format))
	}
	return a<<48 | b<<32 | c<<16 | d
}

// CodebookWords unpacks a quad key back into its four on-disk 16-bit words,
// in the order a codebook entry is physically laid out: top-left,
// bottom-left, top-right, bottom-right — not raster order.
func CodebookWords(quad uint64) [4]uint16 {
	a := uint16(quad >> 48)
	b := uint16(quad >> 32)
	c := uint16(quad >> 16)
	d := uint16(quad)
	return [4]uint16{a, c, b, d}
}

// Result holds the outcome of an attempted lossless dedup pass.
type Result struct {
	Success     bool
	UniqueCount int
	Codebook    []uint64              // in insertion order, Success only
	Indexed     map[int]*raster.Image // half-size index images keyed by source level size, Success only
}

// Encode attempts the lossless pass over every level of c at least
// pvrtype.MinMipmapVQ on a side. It keeps counting unique quads even past
// MaxCodes purely so the caller can report how far over the limit the
// image was; Success is only true when the final count is <= MaxCodes.
func Encode(c *raster.Container, format texel.Format) Result {
	seen := make(map[uint64]int)
	indexed := make(map[int]*raster.Image)

	for _, size := range c.KeysAscending() {
		img := c.BySize(size)
		if img.Width() < pvrtype.MinMipmapVQ || img.Height() < pvrtype.MinMipmapVQ {
			continue
		}

		half := raster.New(img.Width()/2, img.Height()/2)
		half.AllocateIndexed(MaxCodes)

		for y := 0; y < img.Height(); y += 2 {
			for x := 0; x < img.Width(); x += 2 {
				tl := img.Pixel(x, y)
				tr := img.Pixel(x+1, y)
				bl := img.Pixel(x, y+1)
				br := img.Pixel(x+1, y+1)
				quad := PackQuad(tl, tr, bl, br, format)

				id, ok := seen[quad]
				if !ok {
					id = len(seen)
					seen[quad] = id
				}
				if len(seen) <= MaxCodes {
					half.SetIndexedPixel(x/2, y/2, uint8(id))
				}
			}
		}

		if len(seen) <= MaxCodes {
			indexed[size] = half
		}
	}

	if len(seen) > MaxCodes {
		return Result{Success: false, UniqueCount: len(seen)}
	}

	codebook := make([]uint64, len(seen))
	for quad, id := range seen {
		codebook[id] = quad
	}
	return Result{Success: true, UniqueCount: len(seen), Codebook: codebook, Indexed: indexed}
}
