package vq

import "github.com/dreamtex/dtex/internal/texel"

// DimRGB is the dimension of a non-alpha 2x2 block vector: (r,g,b) per
// texel, top-left/top-right/bottom-left/bottom-right.
const DimRGB = 12

// DimARGB is the dimension of an alpha-bearing 2x2 block vector: (a,r,g,b)
// per texel, same ordering.
const DimARGB = 16

// VectorizeRGB packs a 2x2 block into a 12-d vector of normalized [0,1]
// r,g,b triples, plus a cached hash of the four source pixels.
func VectorizeRGB(tl, tr, bl, br texel.RGBA) Vec {
	vec := NewVec(DimRGB)
	var hash uint32
	offset := 0
	for _, c := range [4]texel.RGBA{tl, tr, bl, br} {
		vec.Set(offset+0, float32(c.R)/255)
		vec.Set(offset+1, float32(c.G)/255)
		vec.Set(offset+2, float32(c.B)/255)
		hash = texel.CombineHash(c, hash)
		offset += 3
	}
	vec.SetHash(hash)
	return vec
}

// VectorizeARGB packs a 2x2 block into a 16-d vector of normalized [0,1]
// a,r,g,b quadruples, plus a cached hash of the four source pixels.
func VectorizeARGB(tl, tr, bl, br texel.RGBA) Vec {
	vec := NewVec(DimARGB)
	var hash uint32
	offset := 0
	for _, c := range [4]texel.RGBA{tl, tr, bl, br} {
		vec.Set(offset+0, float32(c.A)/255)
		vec.Set(offset+1, float32(c.R)/255)
		vec.Set(offset+2, float32(c.G)/255)
		vec.Set(offset+3, float32(c.B)/255)
		hash = texel.CombineHash(c, hash)
		offset += 4
	}
	vec.SetHash(hash)
	return vec
}

func clampByte(f float32) uint8 {
	v := int32(f * 255)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// DevectorizeRGB reverses VectorizeRGB, producing fully-opaque pixels.
func DevectorizeRGB(vec Vec) (tl, tr, bl, br texel.RGBA) {
	read := func(offset int) texel.RGBA {
		return texel.RGBA{
			R: clampByte(vec.Get(offset + 0)),
			G: clampByte(vec.Get(offset + 1)),
			B: clampByte(vec.Get(offset + 2)),
			A: 255,
		}
	}
	return read(0), read(3), read(6), read(9)
}

// DevectorizeARGB reverses VectorizeARGB.
func DevectorizeARGB(vec Vec) (tl, tr, bl, br texel.RGBA) {
	read := func(offset int) texel.RGBA {
		return texel.RGBA{
			A: clampByte(vec.Get(offset + 0)),
			R: clampByte(vec.Get(offset + 1)),
			G: clampByte(vec.Get(offset + 2)),
			B: clampByte(vec.Get(offset + 3)),
		}
	}
	return read(0), read(4), read(8), read(12)
}
