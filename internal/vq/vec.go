// Package vq implements the split-and-relocate (LBG/Lloyd-style) vector
// quantizer used as the fallback when lossless 2x2 dedup produces too many
// distinct blocks, plus the RGB/ARGB vectorization of 2x2 texel blocks it
// trains on.
package vq

import "math"

// tolerance is the per-component equality threshold used by Vec.Equal.
const tolerance = 0.001

// Vec is a runtime-dimensioned float vector plus a cached hash used only to
// seed RLE bucketing of the constant input vectors built from source
// pixels; it is never recomputed from the float contents (see Hash).
type Vec struct {
	v    []float32
	hash uint32
}

// NewVec returns a zeroed vector of dimension n.
func NewVec(n int) Vec {
	return Vec{v: make([]float32, n)}
}

// Dim returns the vector's dimension.
func (a Vec) Dim() int { return len(a.v) }

// Get returns component i.
func (a Vec) Get(i int) float32 { return a.v[i] }

// Set assigns component i.
func (a *Vec) Set(i int, val float32) { a.v[i] = val }

// Hash returns the cached seed hash (set once at vectorization time from
// the source pixels, never derived from the float components).
func (a Vec) Hash() uint32 { return a.hash }

// SetHash assigns the cached seed hash.
func (a *Vec) SetHash(h uint32) { a.hash = h }

// Clone returns a deep copy; Vec's slice-backed storage means plain
// assignment shares the backing array, which every place that later
// mutates one copy independently of the other must avoid.
func (a Vec) Clone() Vec {
	v2 := make([]float32, len(a.v))
	copy(v2, a.v)
	return Vec{v: v2, hash: a.hash}
}

// Zero resets every component to 0 without touching the cached hash.
func (a *Vec) Zero() {
	for i := range a.v {
		a.v[i] = 0
	}
}

// Equal reports component-wise equality within tolerance, ignoring the
// cached hash (matching operator==, which never compares hashVal).
func (a Vec) Equal(b Vec) bool {
	for i := range a.v {
		d := a.v[i] - b.v[i]
		if d < 0 {
			d = -d
		}
		if d > tolerance {
			return false
		}
	}
	return true
}

// Sub returns a new vector a - b.
func (a Vec) Sub(b Vec) Vec {
	out := a.Clone()
	for i := range out.v {
		out.v[i] -= b.v[i]
	}
	return out
}

// AddInPlace adds b into a, component-wise.
func (a *Vec) AddInPlace(b Vec) {
	for i := range a.v {
		a.v[i] += b.v[i]
	}
}

// SubInPlace subtracts b from a, component-wise.
func (a *Vec) SubInPlace(b Vec) {
	for i := range a.v {
		a.v[i] -= b.v[i]
	}
}

// AddMultiplied adds b*x into a, component-wise.
func (a *Vec) AddMultiplied(b Vec, x float32) {
	for i := range a.v {
		a.v[i] += b.v[i] * x
	}
}

// Scale divides every component by x (i.e. multiplies by 1/x).
func (a *Vec) Scale(x float32) {
	inv := 1 / x
	for i := range a.v {
		a.v[i] *= inv
	}
}

// LengthSquared returns the squared Euclidean length.
func (a Vec) LengthSquared() float32 {
	var sum float32
	for _, c := range a.v {
		sum += c * c
	}
	return sum
}

// Length returns the Euclidean length.
func (a Vec) Length() float32 {
	return float32(math.Sqrt(float64(a.LengthSquared())))
}

// SetLength rescales a to have the given length, preserving direction.
func (a *Vec) SetLength(length float32) {
	l := a.Length()
	if l == 0 {
		return
	}
	x := (1 / l) * length
	for i := range a.v {
		a.v[i] *= x
	}
}

// DistanceSquared returns the squared Euclidean distance between a and b.
func DistanceSquared(a, b Vec) float32 {
	return a.Sub(b).LengthSquared()
}

// fnvHash folds every float32 component's bit pattern into an FNV-1a hash,
// then XORs in the vector's cached seed hash. This is the RLE bucket key:
// two vectors with identical float content but different cached hashes
// (their source pixels differed, or, for a vector whose hash was seeded
// from a neighbouring block, that neighbour differed) land in different
// buckets and are never merged, even though Equal would say they match.
// Identical source pixels with the same seed always produce an identical
// cached hash, so equal blocks still collapse in practice.
func fnvHash(a Vec) uint32 {
	h := uint32(2166136261)
	for _, f := range a.v {
		h ^= math.Float32bits(f)
		h *= 16777619
	}
	return h ^ a.hash
}
