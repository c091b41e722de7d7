// Package format reads and writes the two on-disk artifacts a texture
// conversion produces: the fixed-size texture header (plus its zero-padded
// payload) and the companion palette file.
package format

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/dreamtex/dtex/internal/palette"
	"github.com/dreamtex/dtex/internal/pvrtype"
)

const (
	TextureMagic = "DTEX"
	PaletteMagic = "DPAL"

	// HeaderSize is the on-disk size of a texture header: 4-byte magic
	// plus 2+2+4+4 bytes of width/height/textureType/size fields.
	HeaderSize = 16
)

var (
	ErrBadMagic        = errors.New("format: bad magic")
	ErrInvalidSize     = errors.New("format: width/height not valid for this texture type")
	ErrNonSquareMipmap = errors.New("format: mipmapped textures must be square")
	ErrTruncated       = errors.New("format: truncated stream")
)

// Header is the fixed-size record at the start of every .tex file.
type Header struct {
	Width       int
	Height      int
	TextureType pvrtype.TextureType
	Size        int // payload size in bytes, computed by internal/sizeplan
}

// WriteHeader validates h and writes its fixed-size encoding to w.
func WriteHeader(w io.Writer, h Header) error {
	if h.TextureType.IsMipmapped() && h.Width != h.Height {
		return ErrNonSquareMipmap
	}
	if !pvrtype.IsValidSize(h.Width, h.Height, h.TextureType) {
		return ErrInvalidSize
	}

	width := h.Width
	if h.TextureType.IsStrided() {
		width = pvrtype.NextPowerOfTwo(width)
	}

	var buf [HeaderSize]byte
	copy(buf[0:4], TextureMagic)
	binary.LittleEndian.PutUint16(buf[4:6], uint16(width))
	binary.LittleEndian.PutUint16(buf[6:8], uint16(h.Height))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(h.TextureType))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(h.Size))

	_, err := w.Write(buf[:])
	return err
}

// ReadHeader reads and validates a texture header from r.
func ReadHeader(r io.Reader) (Header, error) {
	var buf [HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Header{}, ErrTruncated
	}
	if string(buf[0:4]) != TextureMagic {
		return Header{}, ErrBadMagic
	}
	h := Header{
		Width:       int(binary.LittleEndian.Uint16(buf[4:6])),
		Height:      int(binary.LittleEndian.Uint16(buf[6:8])),
		TextureType: pvrtype.TextureType(binary.LittleEndian.Uint32(buf[8:12])),
		Size:        int(binary.LittleEndian.Uint32(buf[12:16])),
	}
	return h, nil
}

// PadTo writes zero bytes to w until written (the count of payload bytes
// already emitted) reaches target. The pad count is returned so a CLI can
// warn when it exceeds 32, which indicates the size planner and the writer
// disagree about the payload layout.
func PadTo(w io.Writer, written, target int) (padded int, err error) {
	if written >= target {
		return 0, nil
	}
	pad := target - written
	if _, err := w.Write(make([]byte, pad)); err != nil {
		return 0, err
	}
	return pad, nil
}

// WritePaletteFile writes p to w as a .pal file: magic DPAL, int32 count,
// then count little-endian uint32 ARGB entries.
func WritePaletteFile(w io.Writer, p *palette.Palette) error {
	var head [8]byte
	copy(head[0:4], PaletteMagic)
	binary.LittleEndian.PutUint32(head[4:8], uint32(p.Count()))
	if _, err := w.Write(head[:]); err != nil {
		return err
	}
	for _, c := range p.Colors() {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], c)
		if _, err := w.Write(b[:]); err != nil {
			return err
		}
	}
	return nil
}

// ReadPaletteFile reads a .pal file from r into a fresh Palette. Some
// existing tools mistakenly wrote the texture magic (DTEX) into palette
// files, so that magic is accepted here alongside DPAL.
func ReadPaletteFile(r io.Reader) (*palette.Palette, error) {
	var head [8]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return nil, ErrTruncated
	}
	magic := string(head[0:4])
	if magic != PaletteMagic && magic != TextureMagic {
		return nil, ErrBadMagic
	}
	count := int(binary.LittleEndian.Uint32(head[4:8]))

	p := palette.New()
	for i := 0; i < count; i++ {
		var b [4]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return nil, ErrTruncated
		}
		p.Insert(binary.LittleEndian.Uint32(b[:]))
	}
	return p, nil
}
