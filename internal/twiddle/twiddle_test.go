package twiddle

import "testing"

func TestBijectionSquare(t *testing.T) {
	for _, size := range []int{1, 2, 4, 8, 16, 32} {
		tw := New(size, size)
		seen := make([]bool, size*size)
		for i := 0; i < size*size; i++ {
			idx := tw.Index(i)
			if idx < 0 || idx >= size*size {
				t.Fatalf("size %d: index %d out of range: %d", size, i, idx)
			}
			if seen[idx] {
				t.Fatalf("size %d: index %d produced twice (at i=%d)", size, idx, i)
			}
			seen[idx] = true
		}
	}
}

func TestBijectionRectangle(t *testing.T) {
	for _, dims := range [][2]int{{8, 4}, {4, 8}, {16, 2}, {2, 16}, {32, 8}} {
		w, h := dims[0], dims[1]
		tw := New(w, h)
		seen := make([]bool, w*h)
		for i := 0; i < w*h; i++ {
			idx := tw.Index(i)
			if idx < 0 || idx >= w*h {
				t.Fatalf("%dx%d: index %d out of range: %d", w, h, i, idx)
			}
			if seen[idx] {
				t.Fatalf("%dx%d: index %d produced twice (at i=%d)", w, h, idx, i)
			}
			seen[idx] = true
		}
	}
}

func TestSquareIsPlainMorton(t *testing.T) {
	// For a 2x2 square, the Morton curve visits (0,0),(1,0),(0,1),(1,1).
	tw := New(2, 2)
	want := []int{0, 1, 2, 3}
	for i, w := range want {
		if got := tw.Index(i); got != w {
			t.Fatalf("Index(%d) = %d, want %d", i, got, w)
		}
	}
}

func TestRectangleMinorAxisTwiddled(t *testing.T) {
	// 4x2: minor axis (height=2) twiddles in pairs, major axis (width)
	// increments linearly across each pair.
	tw := New(4, 2)
	seen := make([]bool, 8)
	for i := 0; i < 8; i++ {
		idx := tw.Index(i)
		if seen[idx] {
			t.Fatalf("duplicate offset %d", idx)
		}
		seen[idx] = true
	}
	// Two 2x2 Morton tiles, the second one step along X: (0,0),(1,0),(0,1),
	// (1,1), then (2,0),(3,0),(2,1),(3,1).
	want := []int{0, 1, 4, 5, 2, 3, 6, 7}
	for i, w := range want {
		if got := tw.Index(i); got != w {
			t.Fatalf("Index(%d) = %d, want %d", i, got, w)
		}
	}
}
