package vq

import (
	"math"
	"testing"

	"github.com/dreamtex/dtex/internal/texel"
)

func TestVecEqualWithinTolerance(t *testing.T) {
	a := NewVec(3)
	a.Set(0, 0.5)
	b := a.Clone()
	b.Set(0, 0.5005)
	if !a.Equal(b) {
		t.Fatalf("Equal should tolerate a 0.0005 difference")
	}
	b.Set(0, 0.6)
	if a.Equal(b) {
		t.Fatalf("Equal should reject a 0.1 difference")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	a := NewVec(2)
	a.Set(0, 1)
	b := a.Clone()
	b.Set(0, 99)
	if a.Get(0) != 1 {
		t.Fatalf("mutating clone affected original: %v", a.Get(0))
	}
}

func TestDistanceSquared(t *testing.T) {
	a := NewVec(2)
	a.Set(0, 0)
	a.Set(1, 0)
	b := NewVec(2)
	b.Set(0, 3)
	b.Set(1, 4)
	if got := DistanceSquared(a, b); got != 25 {
		t.Fatalf("DistanceSquared = %v, want 25", got)
	}
}

func TestSetLength(t *testing.T) {
	v := NewVec(2)
	v.Set(0, 3)
	v.Set(1, 4)
	v.SetLength(10)
	if math.Abs(float64(v.Length())-10) > 1e-4 {
		t.Fatalf("Length after SetLength(10) = %v, want 10", v.Length())
	}
}

func TestVectorizeRGBRoundTrip(t *testing.T) {
	tl := texel.RGBA{R: 10, G: 20, B: 30, A: 255}
	tr := texel.RGBA{R: 40, G: 50, B: 60, A: 255}
	bl := texel.RGBA{R: 70, G: 80, B: 90, A: 255}
	br := texel.RGBA{R: 100, G: 110, B: 120, A: 255}

	vec := VectorizeRGB(tl, tr, bl, br)
	gotTL, gotTR, gotBL, gotBR := DevectorizeRGB(vec)
	for _, pair := range [][2]texel.RGBA{{tl, gotTL}, {tr, gotTR}, {bl, gotBL}, {br, gotBR}} {
		want, got := pair[0], pair[1]
		if abs(int(want.R)-int(got.R)) > 1 || abs(int(want.G)-int(got.G)) > 1 || abs(int(want.B)-int(got.B)) > 1 {
			t.Fatalf("round trip mismatch: want %+v got %+v", want, got)
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func TestQuantizerCompressConvergesToSingleDominantCode(t *testing.T) {
	q := New(DimRGB)
	var vectors []Vec
	solid := VectorizeRGB(
		texel.RGBA{R: 100, G: 100, B: 100, A: 255},
		texel.RGBA{R: 100, G: 100, B: 100, A: 255},
		texel.RGBA{R: 100, G: 100, B: 100, A: 255},
		texel.RGBA{R: 100, G: 100, B: 100, A: 255},
	)
	for i := 0; i < 50; i++ {
		vectors = append(vectors, solid)
	}
	q.Compress(vectors, 4)
	if q.CodeCount() == 0 {
		t.Fatalf("Compress produced zero codes")
	}
	idx := q.FindClosest(solid)
	got := q.CodeVector(idx)
	if !got.Equal(solid) {
		t.Fatalf("closest code to a constant input set = %v, want match to input", got)
	}
}

func TestRLECollapsesDuplicateVectors(t *testing.T) {
	v := VectorizeRGB(
		texel.RGBA{R: 1, G: 2, B: 3, A: 255},
		texel.RGBA{R: 4, G: 5, B: 6, A: 255},
		texel.RGBA{R: 7, G: 8, B: 9, A: 255},
		texel.RGBA{R: 10, G: 11, B: 12, A: 255},
	)
	rle := BuildRLE([]Vec{v, v, v})
	if rle.Len() != 1 {
		t.Fatalf("RLE.Len() = %d, want 1", rle.Len())
	}
	var total int
	rle.Each(func(_ Vec, count int) { total += count })
	if total != 3 {
		t.Fatalf("total run count = %d, want 3", total)
	}
}
