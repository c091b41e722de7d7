// Package raster holds the decoded pixel data for one texture level: either
// direct RGBA pixels or, once quantized, palette indices. It also loads and
// saves the PNG/JPEG/GIF files a conversion reads and writes, and performs
// the nearest/bilinear mipmap resampling.
package raster

import (
	"errors"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"strings"

	"github.com/dreamtex/dtex/internal/texel"
)

var ErrUnsupportedExt = errors.New("raster: unsupported file extension")

// Image is a single width x height level, either in direct RGBA mode or
// (after quantization) in indexed mode holding palette indices instead.
type Image struct {
	w, h    int
	indexed bool
	pixels  []texel.RGBA
	idx     []uint8
}

// New allocates a blank, fully-transparent direct-mode image.
func New(width, height int) *Image {
	return &Image{w: width, h: height, pixels: make([]texel.RGBA, width*height)}
}

func (im *Image) Width() int  { return im.w }
func (im *Image) Height() int { return im.h }

// IsIndexed reports whether the image stores palette indices rather than
// direct pixels.
func (im *Image) IsIndexed() bool { return im.indexed }

// Pixel returns the direct-mode pixel at (x, y). Result is undefined (zero
// value) for an indexed image.
func (im *Image) Pixel(x, y int) texel.RGBA {
	return im.pixels[y*im.w+x]
}

// SetPixel writes a direct-mode pixel. It is a no-op on an indexed image.
func (im *Image) SetPixel(x, y int, c texel.RGBA) {
	if im.indexed {
		return
	}
	im.pixels[y*im.w+x] = c
}

// AllocateIndexed switches the image to indexed mode, zeroing every pixel's
// palette index. colors is not used: indices are not checked against it,
// and the backing storage is sized from width*height.
func (im *Image) AllocateIndexed(colors int) {
	im.indexed = true
	im.idx = make([]uint8, im.w*im.h)
}

func (im *Image) SetIndexedPixel(x, y int, index uint8) {
	if !im.indexed {
		return
	}
	im.idx[y*im.w+x] = index
}

func (im *Image) IndexedPixelAt(x, y int) uint8 {
	if !im.indexed {
		return 0
	}
	return im.idx[y*im.w+x]
}

// Load decodes a PNG, JPEG, or GIF file into a direct-mode image.
func Load(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads a PNG/JPEG/GIF stream into a direct-mode image, converting
// whatever source color model the decoder produces to straight RGBA.
func Decode(r io.Reader) (*Image, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	b := src.Bounds()
	out := New(b.Dx(), b.Dy())
	for y := 0; y < out.h; y++ {
		for x := 0; x < out.w; x++ {
			// Straight (non-premultiplied) alpha; At().RGBA() would
			// premultiply partially-transparent pixels.
			c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			out.pixels[y*out.w+x] = texel.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
		}
	}
	return out, nil
}

// Save writes im as a PNG or JPEG file chosen by path's extension (PNG when
// there is no extension); any other extension returns ErrUnsupportedExt.
func Save(path string, im *Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch ext := strings.ToLower(extOf(path)); ext {
	case ".jpg", ".jpeg":
		return jpeg.Encode(f, im.toGoImage(), &jpeg.Options{Quality: 95})
	case ".png", "":
		return png.Encode(f, im.toGoImage())
	default:
		return ErrUnsupportedExt
	}
}

func extOf(path string) string {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return ""
	}
	return path[i:]
}

func (im *Image) toGoImage() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, im.w, im.h))
	for y := 0; y < im.h; y++ {
		for x := 0; x < im.w; x++ {
			c := im.Pixel(x, y)
			i := out.PixOffset(x, y)
			out.Pix[i+0] = c.R
			out.Pix[i+1] = c.G
			out.Pix[i+2] = c.B
			out.Pix[i+3] = c.A
		}
	}
	return out
}

// ApplyColorKey rewrites every pixel whose R, G and B equal key's (alpha
// is ignored) to fully transparent, in place. Used to convert assets authored without an alpha
// channel (e.g. magenta-keyed sprite sheets) before encoding into a format
// that carries alpha.
func ApplyColorKey(im *Image, key texel.RGBA) {
	for i, c := range im.pixels {
		if c.R == key.R && c.G == key.G && c.B == key.B {
			im.pixels[i] = texel.RGBA{}
		}
	}
}

// Scaled returns a new width' x height' image resampled from im. nearest
// selects integer nearest-neighbor sampling; otherwise a corner-clamped
// bilinear filter is used. Both kernels are fixed formulas, not a
// general-purpose resize.
func (im *Image) Scaled(newW, newH int, nearest bool) *Image {
	out := New(newW, newH)
	if nearest {
		for y := 0; y < newH; y++ {
			srcY := y * im.h / newH
			for x := 0; x < newW; x++ {
				srcX := x * im.w / newW
				out.pixels[y*newW+x] = im.Pixel(srcX, srcY)
			}
		}
		return out
	}

	for y := 0; y < newH; y++ {
		gy := gridCoord(y, im.h, newH)
		y0 := int(gy)
		y1 := minInt(y0+1, im.h-1)
		dy := gy - float64(y0)
		for x := 0; x < newW; x++ {
			gx := gridCoord(x, im.w, newW)
			x0 := int(gx)
			x1 := minInt(x0+1, im.w-1)
			dx := gx - float64(x0)

			c00 := im.Pixel(x0, y0)
			c10 := im.Pixel(x1, y0)
			c01 := im.Pixel(x0, y1)
			c11 := im.Pixel(x1, y1)

			top := lerpRGBA(c00, c10, dx)
			bottom := lerpRGBA(c01, c11, dx)
			out.pixels[y*newW+x] = lerpRGBA(top, bottom, dy)
		}
	}
	return out
}

// gridCoord maps destination coordinate d (0 <= d < dstLen) back to a
// source-space float using the corner-aligned mapping
// d * (srcLen-1) / (dstLen-1). A single-pixel destination has no corners
// to align, so it samples the source center; reducing 2x2 to 1x1 therefore
// yields the mean of all four texels.
func gridCoord(d, srcLen, dstLen int) float64 {
	if dstLen <= 1 {
		return float64(srcLen-1) / 2
	}
	return float64(d) * float64(srcLen-1) / float64(dstLen-1)
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a)*(1-t) + float64(b)*t)
}

func lerpRGBA(a, b texel.RGBA, t float64) texel.RGBA {
	return texel.RGBA{
		R: lerp(a.R, b.R, t),
		G: lerp(a.G, b.G, t),
		B: lerp(a.B, b.B, t),
		A: lerp(a.A, b.A, t),
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
