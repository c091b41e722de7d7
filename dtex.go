package dtex

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dreamtex/dtex/internal/format"
	"github.com/dreamtex/dtex/internal/palette"
	"github.com/dreamtex/dtex/internal/pvrtype"
	"github.com/dreamtex/dtex/internal/raster"
	"github.com/dreamtex/dtex/internal/sizeplan"
	"github.com/dreamtex/dtex/internal/texel"
)

// MipmapFilter selects the resampling kernel used to synthesize missing
// mipmap levels.
type MipmapFilter = raster.MipmapFilter

const (
	FilterNearest  = raster.MipmapNearest
	FilterBilinear = raster.MipmapBilinear
)

// EncoderOptions configures a single texture conversion. Format's zero value
// is ARGB1555; every other field defaults to "off".
type EncoderOptions struct {
	// Format selects the on-disk pixel representation.
	Format texel.Format

	// Mipmap requests a full mipmap chain, synthesizing any missing
	// power-of-two level below the largest supplied input. Mutually
	// exclusive with Stride.
	Mipmap bool

	// Compress requests block-compressed output. For 16bpp formats this is
	// lossless 2x2 dedup when the source fits in 256 unique blocks, vector
	// quantization otherwise; paletted formats always use block vector
	// quantization.
	Compress bool

	// Stride requests a single, non-power-of-two-width, non-twiddled
	// texture. Mutually exclusive with Mipmap.
	Stride bool

	// Filter picks the mipmap resampling kernel. A nil Filter defaults to
	// FilterNearest for paletted formats and FilterBilinear otherwise.
	Filter *MipmapFilter

	// ColorKey, when set, is subtracted from every loaded image before any
	// validation or mipmap synthesis: pixels matching it by RGB (alpha
	// ignored) become fully transparent.
	ColorKey *texel.RGBA
}

// Encode reads filenames (PNG/JPEG/GIF), converts them to a PVR-family
// texture per opts, and writes the framed stream — header, payload, zero
// padding — to w. For paletted formats it returns the finished palette so
// the caller can also write it via format.WritePaletteFile; for 16bpp
// formats the returned palette is nil.
func Encode(w io.Writer, filenames []string, opts EncoderOptions) (*palette.Palette, error) {
	if opts.Stride && opts.Mipmap {
		return nil, ErrStrideAndMipmapExclusive
	}
	if opts.Format < texel.ARGB1555 || opts.Format > texel.PAL8BPP {
		return nil, ErrUnsupportedFormat
	}

	var flags pvrtype.TextureType
	if opts.Mipmap {
		flags |= pvrtype.FlagMipmapped
	}
	if opts.Compress {
		flags |= pvrtype.FlagCompressed
	}
	if opts.Stride {
		flags |= pvrtype.FlagStrided | pvrtype.FlagNonTwiddled
	}
	t := pvrtype.NewType(opts.Format, flags)

	filter := FilterBilinear
	if t.IsPaletted() {
		filter = FilterNearest
	}
	if opts.Filter != nil {
		filter = *opts.Filter
	}

	c := raster.NewContainer()
	if err := c.Load(filenames, t, filter, opts.ColorKey); err != nil {
		return nil, fmt.Errorf("dtex: loading input: %w", err)
	}

	if t.IsStrided() {
		t = t.WithStrideField(c.Width())
	}

	size := sizeplan.Calculate(c.Width(), c.Height(), t)

	var payload bytes.Buffer
	var pal *palette.Palette
	var err error
	if t.IsPaletted() {
		pal, err = encodePaletted(&payload, c, t)
	} else {
		err = encode16BPP(&payload, c, t)
	}
	if err != nil {
		return nil, fmt.Errorf("dtex: encoding payload: %w", err)
	}

	header := format.Header{Width: c.Width(), Height: c.Height(), TextureType: t, Size: size}
	if err := format.WriteHeader(w, header); err != nil {
		return nil, fmt.Errorf("dtex: writing header: %w", err)
	}
	if _, err := w.Write(payload.Bytes()); err != nil {
		return nil, fmt.Errorf("dtex: writing payload: %w", err)
	}
	if _, err := format.PadTo(w, payload.Len(), size); err != nil {
		return nil, fmt.Errorf("dtex: padding: %w", err)
	}

	return pal, nil
}
