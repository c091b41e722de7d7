package dtex

import "errors"

// Errors returned by the top-level dispatch in this package. Per-package
// errors raised by validation and I/O (invalid size, bad magic, truncated
// stream, non-square mipmap, ...) are defined alongside the code that
// raises them — see internal/raster and internal/format —
// and are wrapped with %w at the boundaries below so errors.Is still
// reaches them.
var (
	// ErrStrideAndMipmapExclusive is returned when both Stride and Mipmap
	// are set on EncoderOptions.
	ErrStrideAndMipmapExclusive = errors.New("dtex: stride and mipmap are mutually exclusive")

	// ErrUnsupportedFormat is returned for a texel.Format value outside the
	// seven defined pixel formats.
	ErrUnsupportedFormat = errors.New("dtex: unsupported pixel format")
)
