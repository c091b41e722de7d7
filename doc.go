// Package dtex converts conventional RGBA raster images into a fixed-function
// GPU texture format used by a legacy tile-based graphics accelerator (the
// "PVR" family), and regenerates a human-viewable preview from the resulting
// binary.
//
// The package supports:
//   - The full pixel-format table: ARGB1555, RGB565, ARGB4444, YUV422,
//     BUMPMAP (spherical normal encoding), and paletted PAL4BPP/PAL8BPP.
//   - Strided, mipmapped, and compressed (vector-quantized) textures.
//   - A lossless 2x2-block deduplication fast path that avoids quantization
//     entirely when an image has few enough distinct blocks.
//   - A preview decoder that reconstructs a viewable image (and, for
//     compressed textures, a code-usage colormap) from an encoded .tex file.
//
// Basic usage for encoding:
//
//	pal, err := dtex.Encode(w, []string{"sprite.png"}, dtex.EncoderOptions{
//		Format:   texel.RGB565,
//		Mipmap:   true,
//		Compress: true,
//	})
//
// Basic usage for decoding a preview:
//
//	img, codeUsage, err := dtex.Preview(r, palReader)
package dtex
