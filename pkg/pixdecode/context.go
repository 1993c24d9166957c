package pixdecode

// PixelRepresentation distinguishes unsigned from two's-complement signed
// samples.
type PixelRepresentation int

const (
	Unsigned PixelRepresentation = 0
	Signed   PixelRepresentation = 1
)

// PlanarConfiguration distinguishes chunky (interleaved) from planar sample
// layout across multiple samples-per-pixel.
type PlanarConfiguration int

const (
	Chunky PlanarConfiguration = 0
	Planar PlanarConfiguration = 1
)

// Context carries the geometry metadata and payload for a single decode
// call. It is owned by the host and must not be shared across concurrent
// decode calls.
type Context struct {
	Columns                 int
	Rows                    int
	BitsAllocated            int
	BitsStored               int
	SamplesPerPixel          int
	PixelRepresentation      PixelRepresentation
	PlanarConfiguration      PlanarConfiguration
	PhotometricInterpretation int

	EncodedBuffer Buffer
	DecodedBuffer Buffer

	// Diagnostics receives info/warning notifications for this decode. When
	// nil, the package-level default (backed by log/slog) is used.
	Diagnostics Diagnostics
}

// BytesPerSample returns ceil(BitsAllocated/8).
func (c *Context) BytesPerSample() int {
	return (c.BitsAllocated + 7) / 8
}

// PixelCount returns Columns*Rows.
func (c *Context) PixelCount() int {
	return c.Columns * c.Rows
}

// NativeSize returns the byte size of an uncompressed frame at this
// geometry: Columns*Rows*BytesPerSample*SamplesPerPixel.
func (c *Context) NativeSize() int {
	return c.PixelCount() * c.BytesPerSample() * c.SamplesPerPixel
}

func (c *Context) diagnostics() Diagnostics {
	if c.Diagnostics != nil {
		return c.Diagnostics
	}
	return defaultDiagnostics
}
