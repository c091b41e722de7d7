// Package texel implements the fixed-function 16-bit pixel packings used by
// the PVR-family texture formats: ARGB1555, RGB565, ARGB4444, YUV422 (packed
// as a shared pair), and the "spherical" bump-map encoding.
package texel

import "math"

// Format identifies one of the seven pixel formats a PVR texture can declare.
// The numeric values match the 3-bit field stored in bits 27-29 of a texture
// header's textureType word.
type Format int

const (
	ARGB1555 Format = 0
	RGB565   Format = 1
	ARGB4444 Format = 2
	YUV422   Format = 3
	BUMPMAP  Format = 4
	PAL4BPP  Format = 5
	PAL8BPP  Format = 6
)

// RGBA is a 4-channel 8-bit-per-channel color, alpha in the high byte when
// packed into a 32-bit word (A, R, G, B from high to low).
type RGBA struct {
	R, G, B, A uint8
}

// Pack condenses c into a 32-bit ARGB word, alpha in the high byte.
func Pack(c RGBA) uint32 {
	return uint32(c.A)<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// Unpack is the inverse of Pack.
func Unpack(argb uint32) RGBA {
	return RGBA{
		A: uint8(argb >> 24),
		R: uint8(argb >> 16),
		G: uint8(argb >> 8),
		B: uint8(argb),
	}
}

func clamp255(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// Encode16 packs a single RGBA texel into its 16-bit on-disk representation
// for the given format. YUV422 has no single-pixel representation (it
// shares chroma between a pair of texels) and must be encoded with
// EncodeYUV422Pair instead; calling Encode16 with YUV422 returns 0xFFFF.
//
// Unsupported formats (PAL4BPP, PAL8BPP, or any value outside the known
// range) also return 0xFFFF — paletted textures never reach this path,
// since their texels are palette indices, not 16-bit words.
func Encode16(c RGBA, f Format) uint16 {
	switch f {
	case ARGB1555:
		var a uint16
		if c.A >= 128 {
			a = 1
		}
		r := uint16(c.R>>3) & 0x1F
		g := uint16(c.G>>3) & 0x1F
		b := uint16(c.B>>3) & 0x1F
		return a<<15 | r<<10 | g<<5 | b
	case RGB565:
		r := uint16(c.R>>3) & 0x1F
		g := uint16(c.G>>2) & 0x3F
		b := uint16(c.B>>3) & 0x1F
		return r<<11 | g<<5 | b
	case ARGB4444:
		a := uint16(c.A>>4) & 0xF
		r := uint16(c.R>>4) & 0xF
		g := uint16(c.G>>4) & 0xF
		b := uint16(c.B>>4) & 0xF
		return a<<12 | r<<8 | g<<4 | b
	case BUMPMAP:
		return toSpherical(c)
	default:
		return 0xFFFF
	}
}

// Decode16 is the inverse of Encode16. For YUV422 it returns opaque white,
// since a single packed word never carries a complete YUV422 texel — use
// DecodeYUV422Pair instead.
func Decode16(px uint16, f Format) RGBA {
	switch f {
	case ARGB1555:
		a := uint8(0)
		if (px>>15)&1 != 0 {
			a = 255
		}
		return RGBA{
			A: a,
			R: uint8((px>>10)&0x1F) << 3,
			G: uint8((px>>5)&0x1F) << 3,
			B: uint8((px>>0)&0x1F) << 3,
		}
	case RGB565:
		return RGBA{
			A: 255,
			R: uint8((px>>11)&0x1F) << 3,
			G: uint8((px>>5)&0x3F) << 2,
			B: uint8((px>>0)&0x1F) << 3,
		}
	case ARGB4444:
		return RGBA{
			A: uint8((px>>12)&0xF) << 4,
			R: uint8((px>>8)&0xF) << 4,
			G: uint8((px>>4)&0xF) << 4,
			B: uint8((px>>0)&0xF) << 4,
		}
	case BUMPMAP:
		return toCartesian(px)
	default:
		return RGBA{R: 255, G: 255, B: 255, A: 255}
	}
}

// EncodeYUV422Pair encodes two texels sharing one chroma sample into the
// pair of 16-bit words PVR stores for YUV422. The strided and block-codebook
// writers pass horizontally adjacent texels; the twiddled uncompressed
// writer passes vertically adjacent ones.
// Returns (Y0<<8)|U, (Y1<<8)|V.
func EncodeYUV422Pair(c1, c2 RGBA) (uint16, uint16) {
	avgR := (int(c1.R) + int(c2.R)) / 2
	avgG := (int(c1.G) + int(c2.G)) / 2
	avgB := (int(c1.B) + int(c2.B)) / 2

	y0 := clamp255(int(0.299*float64(c1.R) + 0.587*float64(c1.G) + 0.114*float64(c1.B)))
	y1 := clamp255(int(0.299*float64(c2.R) + 0.587*float64(c2.G) + 0.114*float64(c2.B)))

	u := clamp255(int(-0.169*float64(avgR) - 0.331*float64(avgG) + 0.499*float64(avgB) + 128))
	v := clamp255(int(0.499*float64(avgR) - 0.418*float64(avgG) - 0.0813*float64(avgB) + 128))

	w1 := uint16(y0)<<8 | uint16(u)
	w2 := uint16(y1)<<8 | uint16(v)
	return w1, w2
}

// DecodeYUV422Pair is the inverse of EncodeYUV422Pair.
func DecodeYUV422Pair(yuv1, yuv2 uint16) (RGBA, RGBA) {
	y0 := int(yuv1 >> 8)
	y1 := int(yuv2 >> 8)
	u := int(yuv1&0xFF) - 128
	v := int(yuv2&0xFF) - 128

	c1 := RGBA{
		R: clamp255(int(float64(y0) + 1.375*float64(v))),
		G: clamp255(int(float64(y0) - 0.34375*float64(u) - 0.6875*float64(v))),
		B: clamp255(int(float64(y0) + 1.71875*float64(u))),
		A: 255,
	}
	c2 := RGBA{
		R: clamp255(int(float64(y1) + 1.375*float64(v))),
		G: clamp255(int(float64(y1) - 0.34375*float64(u) - 0.6875*float64(v))),
		B: clamp255(int(float64(y1) + 1.71875*float64(u))),
		A: 255,
	}
	return c1, c2
}

const (
	halfPi   = math.Pi / 2
	doublePi = math.Pi * 2
)

// toSpherical treats (r,g,b) as an upward-pointing normal vector and packs
// its polar/azimuth angles into elevation (high byte) and azimuth (low byte).
func toSpherical(c RGBA) uint16 {
	vx := float64(c.R)/255.0*2.0 - 1.0
	vy := float64(c.G)/255.0*2.0 - 1.0
	vz := float64(c.B) / 255.0

	radius := math.Sqrt(vx*vx + vy*vy + vz*vz)
	if radius < 1e-6 {
		radius = 1e-6
	}

	polar := math.Acos(vz / radius)
	azimuth := math.Atan2(vy, vx)

	polar = (halfPi - polar) / halfPi * 255.0
	s := int(math.Max(0, math.Min(255, polar)))

	if azimuth < 0 {
		azimuth += doublePi
	}
	azimuth = azimuth / doublePi * 255.0
	r := int(math.Max(0, math.Min(255, azimuth)))

	return uint16(s)<<8 | uint16(r)
}

// toCartesian is the inverse of toSpherical.
func toCartesian(sr uint16) RGBA {
	s := (1.0 - float64(sr>>8)/255.0) * halfPi
	r := float64(sr&0xFF) / 255.0 * doublePi
	if r > math.Pi {
		r -= doublePi
	}
	return RGBA{
		R: uint8((math.Sin(s)*math.Cos(r) + 1.0) * 0.5 * 255),
		G: uint8((math.Sin(s)*math.Sin(r) + 1.0) * 0.5 * 255),
		B: uint8((math.Cos(s) + 1.0) * 0.5 * 255),
		A: 255,
	}
}

// CombineHash folds c into seed using a Boost-style integer mixer. It must
// be applied in a fixed per-block pixel order so that two blocks built from
// identical bytes always produce identical hashes; the vector quantizer's
// run-length deduplication relies on that.
func CombineHash(c RGBA, seed uint32) uint32 {
	val := uint32(c.A)<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
	seed ^= val + 0x9e3779b9 + seed<<6 + seed>>2
	return seed
}
