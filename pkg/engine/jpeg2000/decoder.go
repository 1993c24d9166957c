package jpeg2000

import (
	"bytes"
	"fmt"
	"io"
)

// Image is the decoded result: one flat int32-ish (stored as int for Go
// ergonomics) sample plane per component, plus the metadata the adapter
// layer needs to size and copy into the host's decoded buffer.
type Image struct {
	Width      int
	Height     int
	NumComps   int
	Precision  int
	Components [][]int
}

// Decode decodes a raw J2K codestream (SOC-first; JP2-boxed input must be
// unwrapped with ExtractCodestream first) into per-component sample planes.
func Decode(r io.Reader) (*Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("jpeg2000: reading codestream: %w", err)
	}

	cr := newCodestreamReader(bytes.NewReader(data))
	if err := cr.readMainHeader(); err != nil {
		return nil, err
	}

	sot, err := cr.readSOT()
	if err != nil {
		return nil, fmt.Errorf("jpeg2000: reading SOT: %w", err)
	}
	if sot.NumTileParts > 1 {
		return nil, fmt.Errorf("%w: multiple tile-parts not supported", ErrUnsupportedCodestream)
	}
	if err := cr.readTilePartHeader(); err != nil {
		return nil, fmt.Errorf("jpeg2000: reading tile-part header: %w", err)
	}

	tileData, err := readTileData(cr, data)
	if err != nil {
		return nil, err
	}

	numComps := len(cr.SIZ.Components)
	if numComps == 0 {
		return nil, fmt.Errorf("%w: SIZ declared zero components", ErrInvalidSIZ)
	}

	width, height := int(cr.SIZ.XSiz), int(cr.SIZ.YSiz)
	planes, err := decodeTile(tileData, numComps, width, height, cr.COD, cr.QCD)
	if err != nil {
		return nil, err
	}

	if numComps >= 3 && cr.COD.MCT != 0 {
		applyInverseRCT(planes)
	}

	return &Image{
		Width:      width,
		Height:     height,
		NumComps:   numComps,
		Precision:  cr.SIZ.Components[0].Precision,
		Components: planes,
	}, nil
}

// readTileData returns the bytes following SOD, trimmed of a trailing EOC
// marker if present. This engine decodes a single tile, so everything past
// SOD (short of EOC) is that tile's serialized coefficient data.
func readTileData(cr *codestreamReader, full []byte) ([]byte, error) {
	rest, err := io.ReadAll(cr.r.r)
	if err != nil {
		return nil, fmt.Errorf("jpeg2000: reading tile data: %w", err)
	}
	if len(rest) >= 2 && rest[len(rest)-2] == 0xFF && rest[len(rest)-1] == 0xD9 {
		rest = rest[:len(rest)-2]
	}
	return rest, nil
}
