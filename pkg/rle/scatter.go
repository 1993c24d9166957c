package rle

// Geometry is the subset of pixel-geometry fields the RLE scatter mapping
// needs. Planar is 0 for chunky (interleaved) layout, 1 for planar.
type Geometry struct {
	Columns             int
	Rows                int
	BytesPerSample       int
	SamplesPerPixel      int
	Planar               int
}

func (g Geometry) pixelCount() int {
	return g.Columns * g.Rows
}

// segmentPlacement computes the (start, stride) pair for segment s per
// §4.2: sample = s div bps, sabyte = s mod bps; base places planar segments
// one whole component-plane apart and chunky segments one sample (bps bytes)
// apart within a pixel; start adds (bps-sabyte-1) so the first byte written is the most
// significant byte of its sample (big-endian sample layout in the output
// regardless of host endianness).
func segmentPlacement(s int, g Geometry) (start, stride int) {
	bps := g.BytesPerSample
	sample := s / bps
	sabyte := s % bps

	var base int
	if g.Planar == 0 {
		base = sample * bps
	} else {
		base = sample * bps * g.pixelCount()
	}
	start = base + (bps - sabyte - 1)

	if g.Planar == 0 {
		stride = g.SamplesPerPixel * bps
	} else {
		stride = bps
	}
	return start, stride
}
