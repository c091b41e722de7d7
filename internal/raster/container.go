package raster

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dreamtex/dtex/internal/pvrtype"
	"github.com/dreamtex/dtex/internal/texel"
)

var (
	ErrMultipleFilesNoMipmap = errors.New("raster: multiple input files require the mipmap flag")
	ErrInvalidSize           = errors.New("raster: image has invalid texture size")
	ErrNonSquareMipmap       = errors.New("raster: mipmapped textures require square images")
	ErrTooSmall              = errors.New("raster: at least one input image must meet the minimum texture size")
)

// MipmapFilter selects the resampling kernel used to synthesize each missing
// mipmap level from the level twice its size.
type MipmapFilter int

const (
	MipmapNearest MipmapFilter = iota
	MipmapBilinear
)

// Container holds every supplied (and, for mipmapped textures, every
// synthesized) level of a texture, keyed by level size.
type Container struct {
	width, height int
	images        map[int]*Image
	keys          []int
}

// NewContainer returns an empty Container.
func NewContainer() *Container {
	return &Container{images: make(map[int]*Image)}
}

// LoadFromImages populates the container directly from already-decoded
// levels, bypassing file I/O and size/square validation. The dedup and
// palettevq tests use it to build a mipmap chain in memory.
func (c *Container) LoadFromImages(levels map[int]*Image) {
	c.images = make(map[int]*Image, len(levels))
	c.width, c.height = 0, 0
	for size, img := range levels {
		c.images[size] = img
		if img.Width() > c.width {
			c.width = img.Width()
		}
		if img.Height() > c.height {
			c.height = img.Height()
		}
	}
	c.keys = c.keys[:0]
	for size := range c.images {
		c.keys = append(c.keys, size)
	}
	sort.Ints(c.keys)
}

// Load reads each file in filenames, applies colorKey (if non-nil) to each
// decoded image before any validation, validates size against t, fills in
// any missing power-of-two mipmap levels (when t is mipmapped) by
// halving the next larger level with filter, and indexes the result by
// level size. A non-mipmapped texture must receive exactly one file.
func (c *Container) Load(filenames []string, t pvrtype.TextureType, filter MipmapFilter, colorKey *texel.RGBA) error {
	mipmapped := t.IsMipmapped()
	if len(filenames) > 1 && !mipmapped {
		return ErrMultipleFilesNoMipmap
	}

	for _, filename := range filenames {
		img, err := Load(filename)
		if err != nil {
			return fmt.Errorf("raster: loading %s: %w", filename, err)
		}
		if colorKey != nil {
			ApplyColorKey(img, *colorKey)
		}
		if !pvrtype.IsValidSize(img.Width(), img.Height(), t) {
			return fmt.Errorf("%w: %s is %dx%d", ErrInvalidSize, filename, img.Width(), img.Height())
		}
		if mipmapped && img.Width() != img.Height() {
			return fmt.Errorf("%w: %s", ErrNonSquareMipmap, filename)
		}

		if img.Width() > c.width {
			c.width = img.Width()
		}
		if img.Height() > c.height {
			c.height = img.Height()
		}
		c.images[img.Width()] = img
	}

	if mipmapped {
		for size := pvrtype.SizeMax / 2; size >= 1; size /= 2 {
			if _, haveDouble := c.images[size*2]; haveDouble {
				if _, haveThis := c.images[size]; !haveThis {
					c.images[size] = c.images[size*2].Scaled(size, size, filter == MipmapNearest)
				}
			}
		}
	}

	if c.width < pvrtype.SizeMin || c.height < pvrtype.SizeMin {
		return ErrTooSmall
	}

	c.keys = c.keys[:0]
	for size := range c.images {
		c.keys = append(c.keys, size)
	}
	sort.Ints(c.keys)
	return nil
}

// HasMipmaps reports whether more than one level is loaded.
func (c *Container) HasMipmaps() bool { return len(c.images) > 1 }

// HasSize reports whether a level of exactly size x size is present.
func (c *Container) HasSize(size int) bool {
	_, ok := c.images[size]
	return ok
}

// ByIndex returns the index-th level in ascending (smallest-first) or
// descending size order.
func (c *Container) ByIndex(index int, ascending bool) *Image {
	if index >= len(c.keys) {
		return nil
	}
	real := index
	if !ascending {
		real = len(c.keys) - index - 1
	}
	return c.images[c.keys[real]]
}

// BySize returns the level of exactly size x size, or nil if absent.
func (c *Container) BySize(size int) *Image { return c.images[size] }

// KeysAscending returns every loaded level's size, smallest first.
func (c *Container) KeysAscending() []int {
	out := make([]int, len(c.keys))
	copy(out, c.keys)
	return out
}

// Count returns the number of loaded levels.
func (c *Container) Count() int { return len(c.images) }

func (c *Container) Width() int  { return c.width }
func (c *Container) Height() int { return c.height }
