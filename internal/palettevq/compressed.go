package palettevq

import (
	"io"

	"github.com/dreamtex/dtex/internal/palette"
	"github.com/dreamtex/dtex/internal/pvrtype"
	"github.com/dreamtex/dtex/internal/raster"
	"github.com/dreamtex/dtex/internal/texel"
	"github.com/dreamtex/dtex/internal/twiddle"
	"github.com/dreamtex/dtex/internal/vq"
)

// Block-store placement of a single 2x4 sub-block's 8 ARGB texels: the
// whole of a 32-d vector, or the left or right column pair of a 64-d vector
// laid out as one 4x4 grid of texels.
const (
	storeFull  = 0 // a standalone 32-d vector holds the whole block
	storeLeft  = 1 // left half of a 64-d vector
	storeRight = 2 // right half of a 64-d vector
)

var indexLUT = [3][8]int{
	{0, 4, 8, 12, 16, 20, 24, 28},
	{0, 4, 16, 20, 32, 36, 48, 52},
	{8, 12, 24, 28, 40, 44, 56, 60},
}

// grab2x4Block reads the 2x4 pixel block at (x,y) from an indexed image
// through pal and writes its 8 ARGB texels into vec at the offsets
// storeMethod selects, folding their combined hash into vec's cached hash.
func grab2x4Block(img *raster.Image, pal *palette.Palette, x, y int, vec *vq.Vec, storeMethod int) {
	hash := vec.Hash()
	index := 0
	for yy := y; yy < y+4; yy++ {
		for xx := x; xx < x+2; xx++ {
			argb := pal.ColorAt(int(img.IndexedPixelAt(xx, yy)))
			c := texel.Unpack(argb)
			offset := indexLUT[storeMethod][index]
			vec.Set(offset+0, float32(c.A)/255)
			vec.Set(offset+1, float32(c.R)/255)
			vec.Set(offset+2, float32(c.G)/255)
			vec.Set(offset+3, float32(c.B)/255)
			hash = texel.CombineHash(c, hash)
			index++
		}
	}
	vec.SetHash(hash)
}

func vectorizePalette(pal *palette.Palette) []vq.Vec {
	out := make([]vq.Vec, pal.Count())
	for i := 0; i < pal.Count(); i++ {
		c := texel.Unpack(pal.ColorAt(i))
		v := vq.NewVec(4)
		v.Set(0, float32(c.A)/255)
		v.Set(1, float32(c.R)/255)
		v.Set(2, float32(c.G)/255)
		v.Set(3, float32(c.B)/255)
		out[i] = v
	}
	return out
}

func findClosestInPalette(vectors []vq.Vec, target vq.Vec) uint8 {
	closest := 0
	closestDist := vq.DistanceSquared(vectors[0], target)
	for i := 1; i < len(vectors); i++ {
		d := vq.DistanceSquared(vectors[i], target)
		if d < closestDist {
			closest = i
			closestDist = d
		}
	}
	return uint8(closest)
}

// WriteCompressed8BPPData clusters every 2x4 block (ignoring levels
// smaller than pvrtype.MinMipmapPal on a side) into a 256-entry codebook
// of 32-d ARGB vectors, builds a 2048-byte on-disk codebook by snapping
// each code's 8 colors to the nearest palette entry, and writes one
// codebook-index byte per block in twiddled order.
func WriteCompressed8BPPData(w io.Writer, images map[int]*raster.Image, sizesAscending []int, pal *palette.Palette) error {
	var vectors []vq.Vec

	for _, size := range sizesAscending {
		img := images[size]
		if img.Width() < pvrtype.MinMipmapPal || img.Height() < pvrtype.MinMipmapPal {
			continue
		}
		imgw, imgh := img.Width(), img.Height()
		blocks := (imgw * imgh) / 16
		tw := twiddle.New(imgw/4, imgh/4)

		for j := 0; j < blocks; j++ {
			twidx := tw.Index(j)
			x := (twidx % (imgw / 4)) * 4
			y := (twidx / (imgw / 4)) * 4

			v1 := vq.NewVec(32)
			grab2x4Block(img, pal, x+0, y, &v1, storeFull)
			vectors = append(vectors, v1)

			// The right block's hash is seeded from the left's, so a
			// right-hand block only shares an RLE bucket with right-hand
			// blocks that follow an identical left-hand block.
			v2 := vq.NewVec(32)
			v2.SetHash(v1.Hash())
			grab2x4Block(img, pal, x+2, y, &v2, storeFull)
			vectors = append(vectors, v2)
		}
	}

	quant := vq.New(32)
	quant.Compress(vectors, 256)

	vecPalette := vectorizePalette(pal)

	var codebook [2048]byte
	nibbleLUT := twiddle.New(2, 4)
	for i := 0; i < quant.CodeCount(); i++ {
		code := quant.CodeVector(i)
		for j := 0; j < 8; j++ {
			off := nibbleLUT.Index(j) * 4
			color := vq.NewVec(4)
			color.Set(0, code.Get(off+0))
			color.Set(1, code.Get(off+1))
			color.Set(2, code.Get(off+2))
			color.Set(3, code.Get(off+3))
			codebook[i*8+j] = findClosestInPalette(vecPalette, color)
		}
	}
	if _, err := w.Write(codebook[:]); err != nil {
		return err
	}

	if len(sizesAscending) > 1 {
		if err := writeZeroes(w, 1); err != nil {
			return err
		}
	}

	for _, v := range vectors {
		idx := quant.FindClosest(v)
		if _, err := w.Write([]byte{byte(idx)}); err != nil {
			return err
		}
	}
	return nil
}

// WriteCompressed4BPPData is WriteCompressed8BPPData's nibble-packed
// counterpart: each 64-d vector covers two adjacent 2x4 sub-blocks, so a
// single-image texture vectorizes its 4x4 blocks pairwise, while a
// mipmapped texture chains sub-blocks across 4x4-block boundaries (each
// vector's left half is the previous block's second half) since indices
// are nibble-packed continuously across the whole mipmap chain.
func WriteCompressed4BPPData(w io.Writer, images map[int]*raster.Image, sizesAscending []int, pal *palette.Palette) error {
	var vectors []vq.Vec

	if len(sizesAscending) > 1 {
		vec := vq.NewVec(64)
		first := true

		for i, size := range sizesAscending {
			img := images[size]
			if img.Width() < pvrtype.MinMipmapPal || img.Height() < pvrtype.MinMipmapPal {
				continue
			}
			imgw, imgh := img.Width(), img.Height()
			blocks := (imgw * imgh) / 16
			tw := twiddle.New(imgw/4, imgh/4)

			for j := 0; j < blocks; j++ {
				twidx := tw.Index(j)
				x := (twidx % (imgw / 4)) * 4
				y := (twidx / (imgw / 4)) * 4

				if first {
					grab2x4Block(img, pal, x, y, &vec, storeLeft)
					first = false
				}

				grab2x4Block(img, pal, x, y, &vec, storeRight)
				vectors = append(vectors, vec)
				vec = vq.NewVec(64)

				grab2x4Block(img, pal, x+2, y, &vec, storeLeft)

				if i == len(sizesAscending)-1 && j == blocks-1 {
					grab2x4Block(img, pal, x+2, y, &vec, storeRight)
					vectors = append(vectors, vec)
				}
			}
		}
	} else {
		img := images[sizesAscending[0]]
		imgw, imgh := img.Width(), img.Height()
		blocks := (imgw * imgh) / 16
		tw := twiddle.New(imgw/4, imgh/4)

		for j := 0; j < blocks; j++ {
			twidx := tw.Index(j)
			x := (twidx % (imgw / 4)) * 4
			y := (twidx / (imgw / 4)) * 4

			vec := vq.NewVec(64)
			grab2x4Block(img, pal, x+0, y, &vec, storeLeft)
			grab2x4Block(img, pal, x+2, y, &vec, storeRight)
			vectors = append(vectors, vec)
		}
	}

	quant := vq.New(64)
	quant.Compress(vectors, 256)

	vecPalette := vectorizePalette(pal)

	var codebook [2048]byte
	nibbleLUT := twiddle.New(4, 4)
	for i := 0; i < quant.CodeCount(); i++ {
		code := quant.CodeVector(i)
		for j := 0; j < 16; j++ {
			off := nibbleLUT.Index(j) * 4
			color := vq.NewVec(4)
			color.Set(0, code.Get(off+0))
			color.Set(1, code.Get(off+1))
			color.Set(2, code.Get(off+2))
			color.Set(3, code.Get(off+3))
			closest := findClosestInPalette(vecPalette, color)

			byteIdx := j / 2
			nibble := j % 2
			if nibble == 1 {
				codebook[i*8+byteIdx] |= (closest & 0xF) << 4
			} else {
				codebook[i*8+byteIdx] |= closest & 0xF
			}
		}
	}
	if _, err := w.Write(codebook[:]); err != nil {
		return err
	}

	// Unlike the 8bpp path, no separate 1x1-level zero byte is written
	// here, and the 1x1 level is not stored at all: levels smaller than
	// pvrtype.MinMipmapPal contribute no vectors, and the index stream
	// starts right after the codebook.
	for _, v := range vectors {
		idx := quant.FindClosest(v)
		if _, err := w.Write([]byte{byte(idx)}); err != nil {
			return err
		}
	}
	return nil
}
