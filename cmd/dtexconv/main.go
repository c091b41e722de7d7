// Command dtexconv converts PNG/JPEG/GIF images into PVR-family .tex
// textures (and their companion .pal palette files), and can render a
// .tex stream back to a viewable PNG for inspection.
//
// Usage:
//
//	dtexconv --format=rgb565 --mipmap sprite.png
//	dtexconv --format=pal8bpp --compress --colorkey=magenta sprite.png -o sprite.tex
//	dtexconv --jobs=batch.toml
//	dtexconv --decode sprite.tex --pal sprite.pal -o preview.png
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/mazznoer/csscolorparser"

	"github.com/dreamtex/dtex/internal/texel"
)

var formatNames = map[string]texel.Format{
	"argb1555": texel.ARGB1555,
	"rgb565":   texel.RGB565,
	"argb4444": texel.ARGB4444,
	"yuv422":   texel.YUV422,
	"bumpmap":  texel.BUMPMAP,
	"pal4bpp":  texel.PAL4BPP,
	"pal8bpp":  texel.PAL8BPP,
}

// CLI is the full flag/argument set for a single conversion. --jobs runs a
// batch of these instead, one per manifest entry.
type CLI struct {
	Input []string `arg:"" optional:"" name:"input" help:"source image(s) for one texture, largest mipmap level first."`

	Output   string `short:"o" help:"output .tex path (default: <input>.tex)."`
	Format   string `short:"f" help:"pixel format: argb1555, rgb565, argb4444, yuv422, bumpmap, pal4bpp, or pal8bpp."`
	Mipmap   bool   `help:"synthesize a full mipmap chain down to 1x1."`
	Compress bool   `help:"vector-quantize (or losslessly dedup) the payload."`
	Stride   bool   `help:"write a single non-power-of-two-width strided texture; excludes --mipmap."`
	Nearest  bool   `help:"force nearest-neighbor mipmap filtering."`
	Bilinear bool   `help:"force bilinear mipmap filtering."`
	ColorKey string `help:"CSS color to key out as transparent before encoding, e.g. magenta or #ff00ff."`

	Decode  string `help:"decode this .tex stream back to a PNG instead of encoding."`
	Pal     string `help:"companion .pal file, required to decode a paletted texture."`
	Usage   string `help:"alongside --decode, also write a code-usage PNG here (compressed textures only)."`

	Jobs string `help:"run every job in this TOML manifest instead of the positional input."`

	Verbose bool `short:"v" help:"print informational progress messages."`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("dtexconv"),
		kong.Description("Convert images to and from PVR-family .tex textures."),
	)
	kctx.FatalIfErrorf(cli.Run())
}

func (c *CLI) Run() error {
	switch {
	case c.Jobs != "":
		return runManifest(c.Jobs, c.Verbose)
	case c.Decode != "":
		return runDecode(c.Decode, c.Pal, c.Output, c.Usage)
	default:
		job, err := c.toJob()
		if err != nil {
			return err
		}
		return runJob(job, c.Verbose)
	}
}

// toJob turns the top-level flags into a job, the same shape --jobs consumes,
// so single-invocation and manifest conversions share one code path.
func (c *CLI) toJob() (job, error) {
	if len(c.Input) == 0 {
		return job{}, fmt.Errorf("dtexconv: no input files (or pass --jobs/--decode)")
	}
	if c.Format == "" {
		return job{}, fmt.Errorf("dtexconv: --format is required")
	}
	filter := ""
	switch {
	case c.Nearest:
		filter = "nearest"
	case c.Bilinear:
		filter = "bilinear"
	}
	return job{
		Input:    c.Input,
		Output:   c.Output,
		Format:   c.Format,
		Mipmap:   c.Mipmap,
		Compress: c.Compress,
		Stride:   c.Stride,
		Filter:   filter,
		ColorKey: c.ColorKey,
	}, nil
}

func parseFormat(name string) (texel.Format, error) {
	f, ok := formatNames[name]
	if !ok {
		return 0, fmt.Errorf("dtexconv: unknown format %q", name)
	}
	return f, nil
}

func parseColorKey(css string) (*texel.RGBA, error) {
	if css == "" {
		return nil, nil
	}
	col, err := csscolorparser.Parse(css)
	if err != nil {
		return nil, fmt.Errorf("dtexconv: parsing --colorkey %q: %w", css, err)
	}
	r, g, b, a := col.RGBA255()
	return &texel.RGBA{R: r, G: g, B: b, A: a}, nil
}

func logInfo(verbose bool, format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, "\x1b[36m[INFO]\x1b[0m "+format+"\n", args...)
	}
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\x1b[33m[WARNING]\x1b[0m "+format+"\n", args...)
}
