// Package palette implements the insertion-ordered ARGB color table shared
// by every paletted texture: colors are assigned indices in first-seen
// order, and the same table doubles as the .pal companion file's payload.
package palette

import "github.com/dreamtex/dtex/internal/texel"

// Palette maps distinct ARGB32 colors to small integer indices in the
// order they were first inserted.
type Palette struct {
	colors []uint32
	index  map[uint32]int
}

// New returns an empty Palette.
func New() *Palette {
	return &Palette{index: make(map[uint32]int)}
}

// Insert adds argb to the table if not already present, assigning it the
// next index. Re-inserting an existing color is a no-op.
func (p *Palette) Insert(argb uint32) {
	if _, ok := p.index[argb]; ok {
		return
	}
	p.index[argb] = len(p.colors)
	p.colors = append(p.colors, argb)
}

// InsertRGBA is a convenience wrapper around Insert for packed texel.RGBA
// values.
func (p *Palette) InsertRGBA(c texel.RGBA) {
	p.Insert(texel.Pack(c))
}

// IndexOf returns the index assigned to argb, or 0 if the color was never
// inserted. Callers build the palette from the same pixels they then index,
// so a miss only happens on malformed input and is not worth an error path.
func (p *Palette) IndexOf(argb uint32) int {
	if idx, ok := p.index[argb]; ok {
		return idx
	}
	return 0
}

// ColorAt returns the color at index, or opaque black if index is out of
// range.
func (p *Palette) ColorAt(index int) uint32 {
	if index < 0 || index >= len(p.colors) {
		return 0xFF000000
	}
	return p.colors[index]
}

// Count returns the number of distinct colors currently held.
func (p *Palette) Count() int { return len(p.colors) }

// Clear empties the table.
func (p *Palette) Clear() {
	p.colors = p.colors[:0]
	p.index = make(map[uint32]int)
}

// Colors returns the palette's colors in index order. The returned slice
// must not be mutated by the caller.
func (p *Palette) Colors() []uint32 { return p.colors }
