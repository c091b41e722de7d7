// Package pvrtype defines the textureType bitfield shared by the size
// planner, binary framer, and image container: which 16-bit pixel format a
// texture uses and which of strided/mipmapped/compressed/non-twiddled flags
// are set.
package pvrtype

import "github.com/dreamtex/dtex/internal/texel"

// TextureType is the 32-bit field stored in a texture header: pixel format
// in bits 27-29, flag bits elsewhere, and (for strided textures only) the
// stride width divided by 32 in the low 5 bits.
type TextureType uint32

const (
	pixelFormatShift = 27
	pixelFormatMask  = 7

	FlagNonTwiddled TextureType = 1 << 26
	FlagStrided     TextureType = 1 << 25
	FlagCompressed  TextureType = 1 << 30
	FlagMipmapped   TextureType = 1 << 31

	strideFieldMask = 0x1F
)

const (
	SizeMin      = 8
	SizeMax      = 1024
	StrideWMin   = 32
	StrideWMax   = 992
	MinMipmapVQ  = 2 // smallest 16bpp image eligible for lossless dedup/VQ
	MinMipmapPal = 4 // smallest paletted image eligible for PALVQ
)

// NewType builds a TextureType from a pixel format and flag set. Flags
// should be a bitwise-OR of FlagNonTwiddled/FlagStrided/FlagCompressed/
// FlagMipmapped.
func NewType(format texel.Format, flags TextureType) TextureType {
	return TextureType(format)<<pixelFormatShift | flags
}

// PixelFormat extracts the 3-bit pixel format field.
func (t TextureType) PixelFormat() texel.Format {
	return texel.Format((t >> pixelFormatShift) & pixelFormatMask)
}

func (t TextureType) IsFormat(f texel.Format) bool { return t.PixelFormat() == f }
func (t TextureType) IsStrided() bool              { return t&FlagStrided != 0 }
func (t TextureType) IsNonTwiddled() bool          { return t&FlagNonTwiddled != 0 }
func (t TextureType) IsCompressed() bool           { return t&FlagCompressed != 0 }
func (t TextureType) IsMipmapped() bool            { return t&FlagMipmapped != 0 }

// IsPaletted reports whether the texture stores palette indices rather than
// direct 16-bit texels.
func (t TextureType) IsPaletted() bool {
	return t.IsFormat(texel.PAL4BPP) || t.IsFormat(texel.PAL8BPP)
}

// Is16BPP reports whether the texture stores a direct 16-bit texel per
// pixel (the complement of IsPaletted).
func (t TextureType) Is16BPP() bool { return !t.IsPaletted() }

// StrideField returns the low-5-bits stride width divisor stored in a
// strided texture's type word (width/32).
func (t TextureType) StrideField() int { return int(t & strideFieldMask) }

// WithStrideField returns t with its low 5 bits set to width/32, as done
// once the source image's true width is known (the header's declared width
// is rounded up to a power of two, so the true width must be recovered from
// this field on decode).
func (t TextureType) WithStrideField(width int) TextureType {
	return (t &^ strideFieldMask) | TextureType(width/32)&strideFieldMask
}

// NextPowerOfTwo returns the smallest power of two >= x (or 1 if x <= 0).
func NextPowerOfTwo(x int) int {
	if x <= 0 {
		return 1
	}
	p := 1
	for p < x {
		p *= 2
	}
	return p
}

func isPowerOfTwo(x int) bool { return x > 0 && x&(x-1) == 0 }

// IsValidSize implements the three size regimes: strided (width a multiple
// of 32, power-of-two height), mipmapped (power-of-two sides, minimum
// 1x1), and plain (power-of-two sides, minimum 8x8). It does not check that
// a mipmapped texture is square.
func IsValidSize(width, height int, t TextureType) bool {
	if t.IsStrided() {
		if width < StrideWMin || width > StrideWMax || width%32 != 0 {
			return false
		}
		return height >= SizeMin && height <= SizeMax && isPowerOfTwo(height)
	}

	minSize := SizeMin
	if t.IsMipmapped() {
		minSize = 1
	}
	if width < minSize || width > SizeMax || !isPowerOfTwo(width) {
		return false
	}
	if height < minSize || height > SizeMax || !isPowerOfTwo(height) {
		return false
	}
	return true
}
