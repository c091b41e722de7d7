package dtex

import (
	"io"

	"github.com/dreamtex/dtex/internal/palette"
	"github.com/dreamtex/dtex/internal/palettevq"
	"github.com/dreamtex/dtex/internal/pvrtype"
	"github.com/dreamtex/dtex/internal/raster"
	"github.com/dreamtex/dtex/internal/texel"
)

// encodePaletted runs the two-stage paletted compressor: first reduce (or,
// if the source already fits, directly remap) the source palette to
// maxColors entries — 16 for PAL4BPP, 256 for PAL8BPP — then dispatch to the
// uncompressed or block-compressed writer for the declared bit depth.
// Returns the finished palette so the caller can write the companion .pal
// file.
func encodePaletted(w io.Writer, c *raster.Container, t pvrtype.TextureType) (*palette.Palette, error) {
	maxColors := 256
	if t.IsFormat(texel.PAL4BPP) {
		maxColors = 16
	}

	pal := collectPalette(c)
	var indexed map[int]*raster.Image

	if pal.Count() > maxColors {
		pal, indexed = palettevq.ReduceColors(c, maxColors)
	} else {
		indexed = palettevq.ConvertToIndexed(c, pal)
	}

	sizes := c.KeysAscending()

	var err error
	switch {
	case t.IsCompressed() && t.IsFormat(texel.PAL4BPP):
		err = palettevq.WriteCompressed4BPPData(w, indexed, sizes, pal)
	case t.IsCompressed():
		err = palettevq.WriteCompressed8BPPData(w, indexed, sizes, pal)
	case t.IsFormat(texel.PAL4BPP):
		err = palettevq.WriteUncompressed4BPP(w, indexed, sizes)
	default:
		err = palettevq.WriteUncompressed8BPP(w, indexed, sizes)
	}
	if err != nil {
		return nil, err
	}
	return pal, nil
}

// collectPalette gathers every distinct pixel color across every level, in
// first-seen order.
func collectPalette(c *raster.Container) *palette.Palette {
	pal := palette.New()
	for _, size := range c.KeysAscending() {
		img := c.BySize(size)
		for y := 0; y < img.Height(); y++ {
			for x := 0; x < img.Width(); x++ {
				pal.InsertRGBA(img.Pixel(x, y))
			}
		}
	}
	return pal
}
