package main

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dreamtex/dtex"
	"github.com/dreamtex/dtex/internal/format"
	"github.com/dreamtex/dtex/internal/palette"
	"github.com/dreamtex/dtex/internal/raster"
)

// job is one texture conversion: the shape both a single CLI invocation and
// one TOML manifest entry reduce to.
type job struct {
	Input    []string `toml:"input"`
	Output   string   `toml:"output"`
	Format   string   `toml:"format"`
	Mipmap   bool     `toml:"mipmap"`
	Compress bool     `toml:"compress"`
	Stride   bool     `toml:"stride"`
	Filter   string   `toml:"filter"` // "", "nearest", or "bilinear"
	ColorKey string   `toml:"colorkey"`
	Preview  string   `toml:"preview"`
}

func runJob(j job, verbose bool) error {
	pixelFormat, err := parseFormat(j.Format)
	if err != nil {
		return err
	}
	colorKey, err := parseColorKey(j.ColorKey)
	if err != nil {
		return err
	}

	opts := dtex.EncoderOptions{
		Format:   pixelFormat,
		Mipmap:   j.Mipmap,
		Compress: j.Compress,
		Stride:   j.Stride,
		ColorKey: colorKey,
	}
	switch j.Filter {
	case "nearest":
		f := dtex.FilterNearest
		opts.Filter = &f
	case "bilinear":
		f := dtex.FilterBilinear
		opts.Filter = &f
	}

	output := j.Output
	if output == "" {
		output = deriveOutputPath(j.Input[0], ".tex")
	}

	logInfo(verbose, "encoding %s -> %s (%s)", strings.Join(j.Input, ", "), output, j.Format)

	out, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("dtexconv: creating %s: %w", output, err)
	}

	pal, err := dtex.Encode(out, j.Input, opts)
	if err != nil {
		out.Close()
		os.Remove(output)
		return fmt.Errorf("dtexconv: encoding %s: %w", output, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(output)
		return fmt.Errorf("dtexconv: writing %s: %w", output, err)
	}

	palPath := ""
	if pal != nil {
		palPath = deriveOutputPath(output, ".pal")
		if err := writePaletteFile(palPath, pal); err != nil {
			return err
		}
		logInfo(verbose, "wrote palette %s (%d colors)", palPath, pal.Count())
	}

	if fi, statErr := os.Stat(output); statErr == nil {
		logInfo(verbose, "wrote %s (%d bytes)", output, fi.Size())
	}

	if j.Preview != "" {
		if err := renderPreview(output, palPath, j.Preview, ""); err != nil {
			return fmt.Errorf("dtexconv: rendering preview: %w", err)
		}
		logInfo(verbose, "wrote preview %s", j.Preview)
	}

	return nil
}

func runDecode(texPath, palPath, output, usagePath string) error {
	if output == "" {
		output = deriveOutputPath(texPath, ".png")
	}
	return renderPreview(texPath, palPath, output, usagePath)
}

// renderPreview decodes texPath (and, if palPath is non-empty, its companion
// palette) and writes the composited preview PNG to pngPath, plus a
// code-usage PNG to usagePath when requested and the texture is compressed.
func renderPreview(texPath, palPath, pngPath, usagePath string) error {
	texFile, err := os.Open(texPath)
	if err != nil {
		return fmt.Errorf("dtexconv: opening %s: %w", texPath, err)
	}
	defer texFile.Close()

	var palReader io.Reader
	if palPath != "" {
		f, err := os.Open(palPath)
		if err != nil {
			return fmt.Errorf("dtexconv: opening %s: %w", palPath, err)
		}
		defer f.Close()
		palReader = f
	}

	img, usage, err := dtex.Preview(texFile, palReader)
	if err != nil {
		return fmt.Errorf("dtexconv: decoding %s: %w", texPath, err)
	}

	if err := writePNG(pngPath, img); err != nil {
		return err
	}
	switch {
	case usagePath != "" && usage != nil:
		if err := writePNG(usagePath, usage); err != nil {
			return err
		}
	case usagePath != "":
		logWarning("%s is not compressed; no code-usage image written", texPath)
	}
	return nil
}

func writePNG(path string, img *raster.Image) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dtexconv: creating %s: %w", path, err)
	}
	defer out.Close()

	goImg := image.NewNRGBA(image.Rect(0, 0, img.Width(), img.Height()))
	for y := 0; y < img.Height(); y++ {
		for x := 0; x < img.Width(); x++ {
			c := img.Pixel(x, y)
			off := goImg.PixOffset(x, y)
			goImg.Pix[off+0] = c.R
			goImg.Pix[off+1] = c.G
			goImg.Pix[off+2] = c.B
			goImg.Pix[off+3] = c.A
		}
	}
	return png.Encode(out, goImg)
}

func writePaletteFile(path string, pal *palette.Palette) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dtexconv: creating %s: %w", path, err)
	}
	defer out.Close()
	return format.WritePaletteFile(out, pal)
}

func deriveOutputPath(input, newExt string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return base + newExt
}
