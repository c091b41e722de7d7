// Package sizeplan computes the exact on-disk byte size of a PVR texture
// payload given its declared dimensions and textureType flags, so the
// binary framer can both populate the header's size field and know exactly
// how much zero padding to append.
package sizeplan

import (
	"github.com/dreamtex/dtex/internal/pvrtype"
	"github.com/dreamtex/dtex/internal/texel"
)

// pixelCount recursively sums w*h across every mipmap level down to (but
// not including) a level smaller than minW x minH. For a non-mipmapped
// texture, callers pass minW=w, minH=h so the recursion contributes only
// the single level.
func pixelCount(w, h, minW, minH int) int {
	if w < minW || h < minH {
		return 0
	}
	return w*h + pixelCount(w/2, h/2, minW, minH)
}

func alignUp32(n int) int {
	if n%32 == 0 {
		return n
	}
	return (n/32 + 1) * 32
}

// Calculate returns the payload size in bytes, 32-byte aligned, for a
// width x height texture with the given type flags/format.
func Calculate(width, height int, t pvrtype.TextureType) int {
	mipmapped := t.IsMipmapped()
	compressed := t.IsCompressed()

	bytes := 0

	switch {
	case mipmapped && compressed:
		bytes += 2048 // codebook
		bytes += 1    // 1x1 placeholder byte
		switch {
		case t.Is16BPP():
			bytes += pixelCount(width, height, 2, 2) / 4
		case t.IsFormat(texel.PAL4BPP):
			bytes += pixelCount(width, height, 4, 4) / 16
		default: // PAL8BPP
			bytes += pixelCount(width, height, 4, 4) / 8
		}

	case mipmapped && !compressed:
		pixels := pixelCount(width, height, 1, 1)
		switch {
		case t.Is16BPP():
			bytes += 6 // MIPMAP_OFFSET_16BPP
			bytes += pixels * 2
		case t.IsFormat(texel.PAL4BPP):
			bytes += 1 // MIPMAP_OFFSET_4BPP
			bytes += 1 // 1x1 level stored alone, one whole byte
			bytes += (pixels - 1) / 2
		default: // PAL8BPP
			bytes += 3 // MIPMAP_OFFSET_8BPP
			bytes += pixels
		}

	case !mipmapped && compressed:
		pixels := pixelCount(width, height, width, height)
		bytes += 2048
		switch {
		case t.Is16BPP():
			bytes += pixels / 4
		case t.IsFormat(texel.PAL4BPP):
			bytes += pixels / 16
		default: // PAL8BPP
			bytes += pixels / 8
		}

	default: // plain, uncompressed
		pixels := pixelCount(width, height, width, height)
		switch {
		case t.Is16BPP():
			bytes += pixels * 2
		case t.IsFormat(texel.PAL4BPP):
			bytes += pixels / 2
		default: // PAL8BPP
			bytes += pixels
		}
	}

	return alignUp32(bytes)
}
