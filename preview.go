package dtex

import (
	"errors"
	"fmt"
	"io"

	"github.com/dreamtex/dtex/internal/format"
	"github.com/dreamtex/dtex/internal/palette"
	"github.com/dreamtex/dtex/internal/pvrtype"
	"github.com/dreamtex/dtex/internal/raster"
	"github.com/dreamtex/dtex/internal/texel"
	"github.com/dreamtex/dtex/internal/twiddle"
)

// ErrPreviewNoLevels is returned when a texture stream decodes to zero
// viewable levels (should not happen for a well-formed stream).
var ErrPreviewNoLevels = errors.New("dtex: decoded texture has no levels to preview")

// ErrPreviewPaletteRequired is returned when previewing a paletted texture
// without supplying its companion .pal file.
var ErrPreviewPaletteRequired = errors.New("dtex: paletted texture requires a palette reader")

// colorCodes is a fixed 256-entry color table used to make distinct
// codebook entries visually distinguishable in a code-usage image; the
// particular colors carry no meaning beyond distinctness. Alpha is opaque
// for every entry so the whole image stays visible.
var colorCodes = [256]uint32{
	0xffffffff, 0xffe3aaaa, 0xffffc7c7, 0xffaac7c7, 0xffaac7aa, 0xffaaaae3, 0xffaaaaff, 0xffaae3ff,
	0xffffaae3, 0xffe3ffaa, 0xffffffaa, 0xffffaaff, 0xffaaffc7, 0xffe3c7ff, 0xffc7aaaa, 0xffe3e3e3,
	0xffaa7171, 0xffc78e8e, 0xff718e8e, 0xff718e71, 0xff7171aa, 0xff7171c7, 0xff71aac7, 0xffc771aa,
	0xffaac771, 0xffc7c771, 0xffc771c7, 0xff71c78e, 0xffaa8ec7, 0xff8e7171, 0xffaaaaaa, 0xffc7c7c7,
	0xff710000, 0xff8e1c1c, 0xff381c1c, 0xff381c00, 0xff380038, 0xff380055, 0xff383855, 0xff8e0038,
	0xff715500, 0xff8e5500, 0xff8e0055, 0xff38551c, 0xff711c55, 0xff550000, 0xff713838, 0xff8e5555,
	0xffaa38aa, 0xffc755c7, 0xff7155c7, 0xff7155aa, 0xff7138e3, 0xff7138ff, 0xff7171ff, 0xffc738e3,
	0xffaa8eaa, 0xffc78eaa, 0xffc738ff, 0xff718ec7, 0xffaa55ff, 0xff8e38aa, 0xffaa71e3, 0xffc78eff,
	0xff38aa38, 0xff55c755, 0xff00c755, 0xff00c738, 0xff00aa71, 0xff00aa8e, 0xff00e38e, 0xff55aa71,
	0xff38ff38, 0xff55ff38, 0xff55aa8e, 0xff00ff55, 0xff38c78e, 0xff1caa38, 0xff38e371, 0xff55ff8e,
	0xffe300aa, 0xffff1cc7, 0xffaa1cc7, 0xffaa1caa, 0xffaa00e3, 0xffaa00ff, 0xffaa38ff, 0xffff00e3,
	0xffe355aa, 0xffff55aa, 0xffff00ff, 0xffaa55c7, 0xffe31cff, 0xffc700aa, 0xffe338e3, 0xffff55ff,
	0xffe3aa00, 0xffffc71c, 0xffaac71c, 0xffaac700, 0xffaaaa38, 0xffaaaa55, 0xffaae355, 0xffffaa38,
	0xffe3ff00, 0xffffff00, 0xffffaa55, 0xffaaff1c, 0xffe3c755, 0xffc7aa00, 0xffe3e338, 0xffffff55,
	0xffaaaa00, 0xffc7c71c, 0xff71c71c, 0xff71c700, 0xff71aa38, 0xff71aa55, 0xff71e355, 0xffc7aa38,
	0xffaaff00, 0xffc7ff00, 0xffc7aa55, 0xff71ff1c, 0xffaac755, 0xff8eaa00, 0xffaae338, 0xffc7ff55,
	0xffe30071, 0xffff1c8e, 0xffaa1c8e, 0xffaa1c71, 0xffaa00aa, 0xffaa00c7, 0xffaa38c7, 0xffff00aa,
	0xffe35571, 0xffff5571, 0xffff00c7, 0xffaa558e, 0xffe31cc7, 0xffc70071, 0xffe338aa, 0xffff55c7,
	0xff3871aa, 0xff558ec7, 0xff008ec7, 0xff008eaa, 0xff0071e3, 0xff0071ff, 0xff00aaff, 0xff5571e3,
	0xff38c7aa, 0xff55c7aa, 0xff5571ff, 0xff00c7c7, 0xff388eff, 0xff1c71aa, 0xff38aae3, 0xff55c7ff,
	0xff3800aa, 0xff551cc7, 0xff001cc7, 0xff001caa, 0xff0000e3, 0xff0000ff, 0xff0038ff, 0xff5500e3,
	0xff3855aa, 0xff5555aa, 0xff5500ff, 0xff0055c7, 0xff381cff, 0xff1c00aa, 0xff3838e3, 0xff5555ff,
	0xff380071, 0xff551c8e, 0xff001c8e, 0xff001c71, 0xff0000aa, 0xff0000c7, 0xff0038c7, 0xff5500aa,
	0xff385571, 0xff555571, 0xff5500c7, 0xff00558e, 0xff381cc7, 0xff1c0071, 0xff3838aa, 0xff5555c7,
	0xff383800, 0xff55551c, 0xff00551c, 0xff005500, 0xff003838, 0xff003855, 0xff007155, 0xff553838,
	0xff388e00, 0xff558e00, 0xff553855, 0xff008e1c, 0xff385555, 0xff1c3800, 0xff387138, 0xff558e55,
	0xff383838, 0xff555555, 0xff005555, 0xff005538, 0xff003871, 0xff00388e, 0xff00718e, 0xff553871,
	0xff388e38, 0xff558e38, 0xff55388e, 0xff008e55, 0xff38558e, 0xff1c3838, 0xff387171, 0xff558e8e,
	0xffe33838, 0xffff5555, 0xffaa5555, 0xffaa5538, 0xffaa3871, 0xffaa388e, 0xffaa718e, 0xffff3871,
	0xffe38e38, 0xffff8e38, 0xffff388e, 0xffaa8e55, 0xffe3558e, 0xffc73838, 0xffe37171, 0xffff8e8e,
	0xffaa0000, 0xffc71c1c, 0xff711c1c, 0xff711c00, 0xff710038, 0xff710055, 0xff713855, 0xffc70038,
	0xffaa5500, 0xffc75500, 0xffc70055, 0xff71551c, 0xffaa1c55, 0xff8e0000, 0xffaa3838, 0xffc75555,
}

// drawBlock fills a w x h rectangle at (x, y) with the color representing
// codeIndex, for the code-usage visualization.
func drawBlock(img *raster.Image, x, y, w, h, codeIndex int) {
	c := texel.Unpack(colorCodes[codeIndex%256])
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			img.SetPixel(xx, yy, c)
		}
	}
}

// Preview decodes a .tex stream (and, for paletted formats, its companion
// .pal file read from palReader) back into a viewable image — the exact
// inverse of every encode path, including the mipmap canvas layout: a
// single level decodes directly, while a multi-level chain is composited
// onto one canvas 1.5x the largest level's width, the largest level at the
// origin and the rest stacked below/right of it. For a compressed texture
// it also returns a code-usage image of the same shape, colored by which
// codebook entry covers each block; codeUsage is nil for non-compressed
// textures.
func Preview(r io.Reader, palReader io.Reader) (img, codeUsage *raster.Image, err error) {
	h, err := format.ReadHeader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("dtex: reading header: %w", err)
	}
	data := make([]byte, h.Size)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, nil, fmt.Errorf("dtex: reading payload: %w", err)
	}

	t := h.TextureType
	width := h.Width
	if t.IsStrided() {
		width = t.StrideField() * 32
	}
	height := h.Height
	pixelFormat := t.PixelFormat()

	var pal *palette.Palette
	if t.IsPaletted() {
		if palReader == nil {
			return nil, nil, ErrPreviewPaletteRequired
		}
		pal, err = format.ReadPaletteFile(palReader)
		if err != nil {
			return nil, nil, fmt.Errorf("dtex: reading palette: %w", err)
		}
	}

	var levels, usageLevels []*raster.Image
	switch {
	case t.IsStrided():
		levels = []*raster.Image{decodeStrided(data, width, height, pixelFormat)}
	case t.Is16BPP() && !t.IsCompressed():
		levels = decodeUncompressed16(data, width, height, pixelFormat, t.IsMipmapped())
	case t.IsPaletted() && !t.IsCompressed():
		levels = decodeUncompressedPaletted(data, width, height, t, pal)
	case t.Is16BPP() && t.IsCompressed():
		levels, usageLevels = decodeCompressed16(data, width, height, pixelFormat, t.IsMipmapped())
	default:
		levels, usageLevels = decodeCompressedPaletted(data, width, height, t, pal)
	}

	if len(levels) == 0 {
		return nil, nil, ErrPreviewNoLevels
	}

	img = compositeLevels(levels, width, height)
	if len(usageLevels) > 0 {
		codeUsage = compositeLevels(usageLevels, width, height)
	}
	return img, codeUsage, nil
}

func decodeStrided(data []byte, width, height int, f texel.Format) *raster.Image {
	img := raster.New(width, height)
	if f == texel.YUV422 {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x += 2 {
				p0 := readU16(data, (y*width+x+0)*2)
				p1 := readU16(data, (y*width+x+1)*2)
				c0, c1 := texel.DecodeYUV422Pair(p0, p1)
				img.SetPixel(x, y, c0)
				img.SetPixel(x+1, y, c1)
			}
		}
		return img
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			px := readU16(data, (y*width+x)*2)
			img.SetPixel(x, y, texel.Decode16(px, f))
		}
	}
	return img
}

// decodeUncompressed16 reverses writeUncompressed16: levels ascending from
// 1x1 (or the full size, if not mipmapped), each read in twiddled order.
func decodeUncompressed16(data []byte, width, height int, f texel.Format, mipmapped bool) []*raster.Image {
	curW, curH, offset := width, height, 0
	if mipmapped {
		curW, curH, offset = 1, 1, mipmapOffset16BPP
	}

	var levels []*raster.Image
	for curW <= width && curH <= height {
		img := raster.New(curW, curH)

		// A 1x1 YUV422 level has no pair to decode and was written as a
		// single RGB565 word instead (see writeUncompressed16).
		levelFormat := f
		if curW == 1 && curH == 1 && f == texel.YUV422 {
			levelFormat = texel.RGB565
		}

		tw := twiddle.New(curW, curH)
		pixels := curW * curH
		if levelFormat == texel.YUV422 {
			// The twiddled YUV writer buffers each 2x2 tile's four texels
			// and emits their words in visiting order, chroma-paired as
			// (0,2) and (1,3); invert that grouping here.
			for i := 0; i < pixels; i += 4 {
				w0 := readU16(data, offset+(i+0)*2)
				w1 := readU16(data, offset+(i+1)*2)
				w2 := readU16(data, offset+(i+2)*2)
				w3 := readU16(data, offset+(i+3)*2)
				c0, c2 := texel.DecodeYUV422Pair(w0, w2)
				c1, c3 := texel.DecodeYUV422Pair(w1, w3)
				for k, c := range [4]texel.RGBA{c0, c1, c2, c3} {
					idx := tw.Index(i + k)
					img.SetPixel(idx%curW, idx/curW, c)
				}
			}
		} else {
			for i := 0; i < pixels; i++ {
				px := readU16(data, offset+i*2)
				c := texel.Decode16(px, levelFormat)
				idx := tw.Index(i)
				img.SetPixel(idx%curW, idx/curW, c)
			}
		}
		levels = append(levels, img)
		offset += pixels * 2
		curW *= 2
		curH *= 2
	}
	return levels
}

func decodeUncompressedPaletted(data []byte, width, height int, t pvrtype.TextureType, pal *palette.Palette) []*raster.Image {
	if t.IsFormat(texel.PAL4BPP) {
		return decodeUncompressed4BPP(data, width, height, t.IsMipmapped(), pal)
	}
	return decodeUncompressed8BPP(data, width, height, t.IsMipmapped(), pal)
}

func decodeUncompressed4BPP(data []byte, width, height int, mipmapped bool, pal *palette.Palette) []*raster.Image {
	curW, curH, offset := width, height, 0
	if mipmapped {
		curW, curH, offset = 1, 1, 1
	}

	var levels []*raster.Image
	for curW <= width && curH <= height {
		img := raster.New(curW, curH)
		if curW == 1 && curH == 1 {
			idx := int(data[offset]) & 0xF
			img.SetPixel(0, 0, texel.Unpack(pal.ColorAt(idx)))
			offset++
		} else {
			tw := twiddle.New(curW, curH)
			pairs := (curW * curH) / 2
			for i := 0; i < pairs; i++ {
				b := data[offset+i]
				idx0 := int(b) & 0xF
				idx1 := int(b>>4) & 0xF
				tw0, tw1 := tw.Index(i*2+0), tw.Index(i*2+1)
				img.SetPixel(tw0%curW, tw0/curW, texel.Unpack(pal.ColorAt(idx0)))
				img.SetPixel(tw1%curW, tw1/curW, texel.Unpack(pal.ColorAt(idx1)))
			}
			offset += pairs
		}
		levels = append(levels, img)
		curW *= 2
		curH *= 2
	}
	return levels
}

func decodeUncompressed8BPP(data []byte, width, height int, mipmapped bool, pal *palette.Palette) []*raster.Image {
	curW, curH, offset := width, height, 0
	if mipmapped {
		curW, curH, offset = 1, 1, 3
	}

	var levels []*raster.Image
	for curW <= width && curH <= height {
		img := raster.New(curW, curH)
		tw := twiddle.New(curW, curH)
		pixels := curW * curH
		for i := 0; i < pixels; i++ {
			idx := int(data[offset+i])
			twi := tw.Index(i)
			img.SetPixel(twi%curW, twi/curW, texel.Unpack(pal.ColorAt(idx)))
		}
		levels = append(levels, img)
		offset += pixels
		curW *= 2
		curH *= 2
	}
	return levels
}

// decodeCompressed16 reverses writeCompressed16: a 2048-byte codebook (256
// x 4 16-bit words, tl/bl/tr/br order), a 1-byte placeholder if mipmapped,
// then one codebook-index byte per 2x2 block in twiddled order.
func decodeCompressed16(data []byte, width, height int, f texel.Format, mipmapped bool) (levels, usage []*raster.Image) {
	curW, curH, offset := width, height, 2048
	if mipmapped {
		curW, curH, offset = 2, 2, offset+1
	}

	for curW <= width && curH <= height {
		img := raster.New(curW, curH)
		cui := raster.New(curW, curH)
		tw := twiddle.New(curW/2, curH/2)
		pixels := (curW / 2) * (curH / 2)

		for i := 0; i < pixels; i++ {
			cbIdx := int(data[offset+i])
			w0 := readU16(data, cbIdx*8+0)
			w1 := readU16(data, cbIdx*8+2)
			w2 := readU16(data, cbIdx*8+4)
			w3 := readU16(data, cbIdx*8+6)

			twi := tw.Index(i)
			x, y := (twi%(curW/2))*2, (twi/(curW/2))*2

			var p0, p1, p2, p3 texel.RGBA
			if f == texel.YUV422 {
				// Disk word order within an entry is tl, bl, tr, br, and
				// the quad packer paired chroma horizontally, so the YUV
				// pairs are (w0, w2) and (w1, w3).
				p0, p2 = texel.DecodeYUV422Pair(w0, w2)
				p1, p3 = texel.DecodeYUV422Pair(w1, w3)
			} else {
				p0, p1, p2, p3 = texel.Decode16(w0, f), texel.Decode16(w1, f), texel.Decode16(w2, f), texel.Decode16(w3, f)
			}
			img.SetPixel(x+0, y+0, p0)
			img.SetPixel(x+0, y+1, p1)
			img.SetPixel(x+1, y+0, p2)
			img.SetPixel(x+1, y+1, p3)
			drawBlock(cui, x, y, 2, 2, cbIdx)
		}

		levels = append(levels, img)
		usage = append(usage, cui)
		offset += (curW * curH) / 4
		curW *= 2
		curH *= 2
	}
	return levels, usage
}

// decodeCompressedPaletted dispatches to the 8bpp layout (two codebook-index
// bytes per 4x4 tile, matching the writer exactly) or the 4bpp layout (one
// index byte per 4x4 tile, chained across tile boundaries — see
// decodeCompressed4BPP for why this differs from the naive "same as 8bpp"
// reading).
func decodeCompressedPaletted(data []byte, width, height int, t pvrtype.TextureType, pal *palette.Palette) (levels, usage []*raster.Image) {
	if t.IsFormat(texel.PAL4BPP) {
		return decodeCompressed4BPP(data, width, height, t.IsMipmapped(), pal)
	}
	return decodeCompressed8BPP(data, width, height, t.IsMipmapped(), pal)
}

func decodeCompressed8BPP(data []byte, width, height int, mipmapped bool, pal *palette.Palette) (levels, usage []*raster.Image) {
	curW, curH, offset := width, height, 2048
	if mipmapped {
		curW, curH, offset = 4, 4, offset+1
	}

	for curW <= width && curH <= height {
		img := raster.New(curW, curH)
		cui := raster.New(curW, curH)
		tw := twiddle.New(curW/4, curH/4)
		pixels := (curW / 4) * (curH / 4)

		for i := 0; i < pixels; i++ {
			cb0 := int(data[offset+i*2+0])
			cb1 := int(data[offset+i*2+1])
			twi := tw.Index(i)
			x, y := (twi%(curW/4))*4, (twi/(curW/4))*4

			for j := 0; j < 8; j++ {
				idx := int(data[cb0*8+j])
				img.SetPixel(x+j%2, y+j/2, texel.Unpack(pal.ColorAt(idx)))
			}
			for j := 0; j < 8; j++ {
				idx := int(data[cb1*8+j])
				img.SetPixel(x+2+j%2, y+j/2, texel.Unpack(pal.ColorAt(idx)))
			}
			drawBlock(cui, x, y, 2, 4, cb0)
			drawBlock(cui, x+2, y, 2, 4, cb1)
		}

		levels = append(levels, img)
		usage = append(usage, cui)
		offset += (curW * curH) / 8
		curW *= 2
		curH *= 2
	}
	return levels, usage
}

// tile4BPP is one 4x4-tile slot in the mipmapped chain: which level it
// belongs to and its twiddled-origin coordinates within that level.
type tile4BPP struct {
	level int
	x, y  int
}

// decodeCompressed4BPP inverts palettevq.WriteCompressed4BPPData. The
// PAL4BPP writer emits exactly one index byte per 64-d codebook vector, and
// a mipmapped chain pairs adjacent tiles across 4x4 boundaries: vector k's
// right half holds tile k's own left 2x4 sub-block, and vector k+1's left
// half holds tile k's right 2x4 sub-block (the first vector primes its own
// left half with a copy of its right half; the last vector of the last tile
// is flushed with a duplicate right half). So for a chain of N tiles there
// are N+1 index bytes, and tile k's two sub-blocks are read from vector k
// and vector k+1 respectively — not from a single byte. A single
// (non-mipmapped) image has no chain: one vector, one index byte, per tile.
func decodeCompressed4BPP(data []byte, width, height int, mipmapped bool, pal *palette.Palette) (levels, usage []*raster.Image) {
	nibbleLUT := twiddle.New(4, 4)

	decodeGrid := func(code int) (grid [4][4]int) {
		for j := 0; j < 16; j++ {
			slot := nibbleLUT.Index(j)
			dx, dy := slot%4, slot/4
			b := data[code*8+j/2]
			var idx int
			if j%2 == 1 {
				idx = int(b>>4) & 0xF
			} else {
				idx = int(b) & 0xF
			}
			grid[dx][dy] = idx
		}
		return grid
	}

	if !mipmapped {
		curW, curH, offset := width, height, 2048
		img := raster.New(curW, curH)
		cui := raster.New(curW, curH)
		tw := twiddle.New(curW/4, curH/4)
		pixels := (curW / 4) * (curH / 4)
		for i := 0; i < pixels; i++ {
			code := int(data[offset+i])
			grid := decodeGrid(code)
			twi := tw.Index(i)
			x, y := (twi%(curW/4))*4, (twi/(curW/4))*4
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 4; dx++ {
					img.SetPixel(x+dx, y+dy, texel.Unpack(pal.ColorAt(grid[dx][dy])))
				}
			}
			drawBlock(cui, x, y, 4, 4, code)
		}
		return []*raster.Image{img}, []*raster.Image{cui}
	}

	// Build the full ordered tile list across every included level (>= 4x4
	// on a side), then read its N+1 chained index bytes in one pass.
	var tiles []tile4BPP
	var imgs, cuis []*raster.Image
	curW, curH := 4, 4
	levelOf := make(map[int]int)
	for curW <= width && curH <= height {
		levelOf[curW] = len(imgs)
		imgs = append(imgs, raster.New(curW, curH))
		cuis = append(cuis, raster.New(curW, curH))

		tw := twiddle.New(curW/4, curH/4)
		blocks := (curW / 4) * (curH / 4)
		for j := 0; j < blocks; j++ {
			twi := tw.Index(j)
			x, y := (twi%(curW/4))*4, (twi/(curW/4))*4
			tiles = append(tiles, tile4BPP{level: levelOf[curW], x: x, y: y})
		}
		curW *= 2
		curH *= 2
	}

	// No 1-byte mipmap gap for PAL4BPP, unlike PAL8BPP: the index stream
	// starts immediately after the 2048-byte codebook.
	base := 2048
	grids := make([][4][4]int, len(tiles)+1)
	for i := range grids {
		grids[i] = decodeGrid(int(data[base+i]))
	}

	for k, tl := range tiles {
		img, cui := imgs[tl.level], cuis[tl.level]
		left := grids[k]
		right := grids[k+1]
		for dy := 0; dy < 4; dy++ {
			for dx := 0; dx < 2; dx++ {
				img.SetPixel(tl.x+dx, tl.y+dy, texel.Unpack(pal.ColorAt(left[dx+2][dy])))
				img.SetPixel(tl.x+2+dx, tl.y+dy, texel.Unpack(pal.ColorAt(right[dx][dy])))
			}
		}
		drawBlock(cui, tl.x, tl.y, 4, 4, int(data[base+k]))
	}

	return imgs, cuis
}

func readU16(data []byte, offset int) uint16 {
	return uint16(data[offset]) | uint16(data[offset+1])<<8
}

// compositeLevels stacks ascending-size levels onto a single canvas 1.5x the
// largest level's width: the largest level (last in levels) at the origin,
// the rest placed to its right for the first remaining level and then
// stacked downward. A single level is returned directly without
// compositing.
func compositeLevels(levels []*raster.Image, width, height int) *raster.Image {
	if len(levels) == 1 {
		return levels[0]
	}

	canvasW := width + width/2
	canvas := raster.New(canvasW, height)

	ox, oy := 0, 0
	for i := len(levels) - 1; i >= 0; i-- {
		im := levels[i]
		blit(canvas, im, ox, oy)
		if ox == 0 {
			ox = im.Width()
			oy = 0
		} else {
			oy += im.Height()
		}
	}
	return canvas
}

func blit(dst, src *raster.Image, ox, oy int) {
	for y := 0; y < src.Height(); y++ {
		for x := 0; x < src.Width(); x++ {
			dst.SetPixel(ox+x, oy+y, src.Pixel(x, y))
		}
	}
}
