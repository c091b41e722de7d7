package vq

// Code is one codebook entry: its current centroid, plus the running
// statistics place() accumulates each pass (which vectors were assigned to
// it, and the single furthest one, used to pick a split direction).
type Code struct {
	CodeVec        Vec
	vecSum         Vec
	vecCount       int
	maxDistance    float32
	maxDistanceVec Vec
}

// Quantizer trains a codebook of up to numCodes entries over a fixed
// vector dimension using the split-and-relocate (LBG) algorithm: start
// from one code covering every vector, repeatedly split every code
// holding more than one vector and re-relocate (Lloyd step) until doubling would
// exceed the target, then top up one split at a time by repairing the
// code with the largest internal error.
type Quantizer struct {
	dim   int
	Codes []Code
}

// New returns an empty Quantizer for vectors of the given dimension.
func New(dim int) *Quantizer {
	return &Quantizer{dim: dim}
}

// CodeCount returns the number of trained codes.
func (q *Quantizer) CodeCount() int { return len(q.Codes) }

// CodeVector returns the centroid of code i.
func (q *Quantizer) CodeVector(i int) Vec { return q.Codes[i].CodeVec }

// FindClosest returns the index of the code nearest vec by squared
// Euclidean distance, short-circuiting once a near-exact match is found.
func (q *Quantizer) FindClosest(vec Vec) int {
	if len(q.Codes) <= 1 {
		return 0
	}
	closestIdx := 0
	closestDist := DistanceSquared(q.Codes[0].CodeVec, vec)
	for i := 1; i < len(q.Codes); i++ {
		d := DistanceSquared(q.Codes[i].CodeVec, vec)
		if d < closestDist {
			closestDist = d
			closestIdx = i
			if closestDist < 0.0001 {
				return closestIdx
			}
		}
	}
	return closestIdx
}

func (q *Quantizer) findBestSplitCandidate() int {
	idx := -1
	var furthest float32
	for i := range q.Codes {
		if q.Codes[i].vecCount > 1 && q.Codes[i].maxDistance > furthest {
			furthest = q.Codes[i].maxDistance
			idx = i
		}
	}
	return idx
}

func (q *Quantizer) removeUnusedCodes() {
	out := q.Codes[:0]
	for _, c := range q.Codes {
		if c.vecCount > 0 {
			out = append(out, c)
		}
	}
	q.Codes = out
}

// place is the Lloyd relocation step: reassign every distinct input vector
// (weighted by its RLE run count) to its nearest code, then recompute each
// code's centroid as the mean of its assigned vectors.
func (q *Quantizer) place(rle *RLE) {
	for i := range q.Codes {
		q.Codes[i].vecCount = 0
		q.Codes[i].vecSum = NewVec(q.dim)
		q.Codes[i].maxDistance = 0
		q.Codes[i].maxDistanceVec = NewVec(q.dim)
	}

	rle.Each(func(vec Vec, count int) {
		idx := q.FindClosest(vec)
		code := &q.Codes[idx]

		code.vecSum.AddMultiplied(vec, float32(count))
		code.vecCount += count

		dist := DistanceSquared(code.CodeVec, vec)
		if dist > code.maxDistance {
			code.maxDistance = dist
			code.maxDistanceVec = vec.Clone()
		}
	})

	for i := range q.Codes {
		if q.Codes[i].vecCount > 0 {
			q.Codes[i].vecSum.Scale(float32(q.Codes[i].vecCount))
			q.Codes[i].CodeVec = q.Codes[i].vecSum.Clone()
		}
	}
}

// split doubles every code whose cell holds more than one vector, by
// perturbing it in the direction of its furthest member.
func (q *Quantizer) split() {
	size := len(q.Codes)
	for i := 0; i < size; i++ {
		if q.Codes[i].vecCount > 1 {
			q.splitCode(i)
		}
	}
}

func (q *Quantizer) splitCode(index int) {
	code := &q.Codes[index]
	diff := code.maxDistanceVec.Sub(code.CodeVec)
	diff.SetLength(0.01)

	newVec := code.CodeVec.Clone()
	newVec.AddInPlace(diff)
	code.CodeVec.SubInPlace(diff)

	q.Codes = append(q.Codes, Code{CodeVec: newVec})
}

// Compress trains the quantizer against vectors until it holds numCodes
// codes (or no further split/repair makes progress).
func (q *Quantizer) Compress(vectors []Vec, numCodes int) {
	rle := BuildRLE(vectors)

	q.Codes = []Code{{CodeVec: NewVec(q.dim)}}
	q.place(rle)

	for len(q.Codes)*2 <= numCodes {
		before := len(q.Codes)
		q.split()
		q.place(rle)
		q.place(rle)
		q.place(rle)
		q.removeUnusedCodes()
		if len(q.Codes) == before {
			break
		}
	}

	for len(q.Codes) < numCodes {
		before := len(q.Codes)
		n := numCodes - before
		for i := 0; i < n; i++ {
			idx := q.findBestSplitCandidate()
			if idx == -1 {
				break
			}
			q.splitCode(idx)
			q.Codes[idx].maxDistance = 0
		}
		if len(q.Codes) == before {
			break
		}
		q.place(rle)
		q.place(rle)
		q.place(rle)
		q.removeUnusedCodes()
	}
}
