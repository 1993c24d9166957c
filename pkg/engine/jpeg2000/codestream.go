package jpeg2000

import (
	"errors"
	"fmt"
	"io"
)

var (
	ErrInvalidMarker         = errors.New("jpeg2000: invalid marker")
	ErrInvalidSIZ            = errors.New("jpeg2000: invalid SIZ marker")
	ErrInvalidCOD            = errors.New("jpeg2000: invalid COD marker")
	ErrInvalidQCD            = errors.New("jpeg2000: invalid QCD marker")
	ErrInvalidSOT            = errors.New("jpeg2000: invalid SOT marker")
	ErrTruncatedPacketHeader = errors.New("jpeg2000: truncated packet header")
	ErrUnsupportedCodestream = errors.New("jpeg2000: codestream feature not supported")
)

// codestreamReader walks the main header and tile-part headers of a raw
// J2K codestream (SOC onward — JP2-boxed input must be unwrapped first by
// ExtractCodestream).
type codestreamReader struct {
	r   *byteReader
	SIZ SIZMarker
	COD CODMarker
	QCD QCDMarker
}

func newCodestreamReader(r io.Reader) *codestreamReader {
	return &codestreamReader{r: newByteReader(r)}
}

func (c *codestreamReader) readMarker() (uint16, error) { return c.r.ReadUint16() }

// readMainHeader reads SOC through SIZ/COD/QCD/COC/QCC/COM, stopping at the
// first SOT or SOD.
func (c *codestreamReader) readMainHeader() error {
	marker, err := c.readMarker()
	if err != nil {
		return fmt.Errorf("jpeg2000: reading SOC: %w", err)
	}
	if marker != markerSOC {
		return fmt.Errorf("%w: expected SOC, got 0x%04X", ErrInvalidMarker, marker)
	}

	for {
		marker, err = c.readMarker()
		if err != nil {
			return fmt.Errorf("jpeg2000: reading marker: %w", err)
		}

		switch marker {
		case markerSIZ:
			if err := c.readSIZ(); err != nil {
				return err
			}
		case markerCOD:
			if err := c.readCOD(); err != nil {
				return err
			}
		case markerQCD:
			if err := c.readQCD(); err != nil {
				return err
			}
		case markerCOC, markerQCC, markerCOM:
			if err := c.skipSegment(); err != nil {
				return err
			}
		case markerSOT, markerSOD:
			return nil
		default:
			if err := c.skipSegment(); err != nil {
				return err
			}
		}
	}
}

func (c *codestreamReader) skipSegment() error {
	length, err := c.r.ReadUint16()
	if err != nil {
		return err
	}
	return c.r.Skip(int(length) - 2)
}

func (c *codestreamReader) readSIZ() error {
	length, err := c.r.ReadUint16()
	if err != nil {
		return err
	}
	if length < 41 {
		return ErrInvalidSIZ
	}
	if _, err := c.r.ReadUint16(); err != nil { // Rsiz, unused in decode-only path
		return err
	}
	if c.SIZ.XSiz, err = c.r.ReadUint32(); err != nil {
		return err
	}
	if c.SIZ.YSiz, err = c.r.ReadUint32(); err != nil {
		return err
	}
	if c.SIZ.XOsiz, err = c.r.ReadUint32(); err != nil {
		return err
	}
	if c.SIZ.YOsiz, err = c.r.ReadUint32(); err != nil {
		return err
	}
	if c.SIZ.XTsiz, err = c.r.ReadUint32(); err != nil {
		return err
	}
	if c.SIZ.YTsiz, err = c.r.ReadUint32(); err != nil {
		return err
	}
	if c.SIZ.XTOsiz, err = c.r.ReadUint32(); err != nil {
		return err
	}
	if c.SIZ.YTOsiz, err = c.r.ReadUint32(); err != nil {
		return err
	}

	numComps, err := c.r.ReadUint16()
	if err != nil {
		return err
	}
	c.SIZ.Components = make([]ComponentInfo, numComps)
	for i := range c.SIZ.Components {
		ssiz, err := c.r.ReadByte()
		if err != nil {
			return err
		}
		c.SIZ.Components[i].Signed = ssiz&0x80 != 0
		c.SIZ.Components[i].Precision = int(ssiz&0x7F) + 1

		xrsiz, err := c.r.ReadByte()
		if err != nil {
			return err
		}
		c.SIZ.Components[i].XRsiz = int(xrsiz)

		yrsiz, err := c.r.ReadByte()
		if err != nil {
			return err
		}
		c.SIZ.Components[i].YRsiz = int(yrsiz)
	}

	if c.SIZ.XOsiz != 0 || c.SIZ.YOsiz != 0 {
		return fmt.Errorf("%w: image origin offset not supported", ErrUnsupportedCodestream)
	}
	if c.SIZ.XTsiz != c.SIZ.XSiz || c.SIZ.YTsiz != c.SIZ.YSiz || c.SIZ.XTOsiz != 0 || c.SIZ.YTOsiz != 0 {
		return fmt.Errorf("%w: only a single tile spanning the whole image is supported", ErrUnsupportedCodestream)
	}
	for _, comp := range c.SIZ.Components {
		if comp.XRsiz != 1 || comp.YRsiz != 1 {
			return fmt.Errorf("%w: component subsampling not supported", ErrUnsupportedCodestream)
		}
	}
	return nil
}

func (c *codestreamReader) readCOD() error {
	length, err := c.r.ReadUint16()
	if err != nil {
		return err
	}
	if length < 12 {
		return ErrInvalidCOD
	}
	if c.COD.Scod, err = c.r.ReadByte(); err != nil {
		return err
	}
	if c.COD.ProgressionOrder, err = c.r.ReadByte(); err != nil {
		return err
	}
	if c.COD.NumLayers, err = c.r.ReadUint16(); err != nil {
		return err
	}
	if c.COD.MCT, err = c.r.ReadByte(); err != nil {
		return err
	}
	if c.COD.DecompLevels, err = c.r.ReadByte(); err != nil {
		return err
	}
	if c.COD.CodeBlockWidthExp, err = c.r.ReadByte(); err != nil {
		return err
	}
	if c.COD.CodeBlockHeightExp, err = c.r.ReadByte(); err != nil {
		return err
	}
	if c.COD.CodeBlockStyle, err = c.r.ReadByte(); err != nil {
		return err
	}
	if c.COD.TransformType, err = c.r.ReadByte(); err != nil {
		return err
	}
	remaining := int(length) - 2 - 10
	if c.COD.usesCustomPrecincts() {
		// One byte of precinct-size nibbles per resolution level; this
		// decode path assumes the default (maximal) precinct covering each
		// whole subband, so reject codestreams that override it.
		return fmt.Errorf("%w: explicit precinct sizes not supported", ErrUnsupportedCodestream)
	}
	if remaining > 0 {
		if err := c.r.Skip(remaining); err != nil {
			return err
		}
	}
	if c.COD.TransformType != 1 {
		return fmt.Errorf("%w: only the reversible 5/3 transform is supported", ErrUnsupportedCodestream)
	}
	if c.COD.CodeBlockStyle != 0 {
		return fmt.Errorf("%w: non-default code-block style (BYPASS/RESET/TERMALL/VSC/PREDICTABLE/SEGSYM) not supported", ErrUnsupportedCodestream)
	}
	if c.COD.NumLayers != 1 {
		return fmt.Errorf("%w: only single-layer codestreams are supported", ErrUnsupportedCodestream)
	}
	return nil
}

func (c *codestreamReader) readQCD() error {
	length, err := c.r.ReadUint16()
	if err != nil {
		return err
	}
	if length < 4 {
		return ErrInvalidQCD
	}
	sqcd, err := c.r.ReadByte()
	if err != nil {
		return err
	}
	c.QCD.Sqcd = sqcd & 0x1F
	c.QCD.GuardBits = (sqcd >> 5) & 0x07
	if c.QCD.style() != 0 {
		return fmt.Errorf("%w: only reversible (unquantized) subbands are supported", ErrUnsupportedCodestream)
	}

	numExponents := int(length) - 3
	c.QCD.Exponents = make([]int, numExponents)
	for i := range c.QCD.Exponents {
		b, err := c.r.ReadByte()
		if err != nil {
			return err
		}
		c.QCD.Exponents[i] = int(b >> 3)
	}
	return nil
}

// readSOT reads a tile-part header's fixed 8-byte body (Lsot is 10, which
// counts the 2-byte length field itself).
func (c *codestreamReader) readSOT() (*SOTMarker, error) {
	length, err := c.r.ReadUint16()
	if err != nil {
		return nil, err
	}
	if length != 10 {
		return nil, ErrInvalidSOT
	}
	sot := &SOTMarker{}
	if sot.TileIndex, err = c.r.ReadUint16(); err != nil {
		return nil, err
	}
	if sot.TilePartLen, err = c.r.ReadUint32(); err != nil {
		return nil, err
	}
	if sot.TilePartIdx, err = c.r.ReadByte(); err != nil {
		return nil, err
	}
	if sot.NumTileParts, err = c.r.ReadByte(); err != nil {
		return nil, err
	}
	return sot, nil
}

// readTilePartHeader reads markers between SOT and SOD.
func (c *codestreamReader) readTilePartHeader() error {
	for {
		marker, err := c.readMarker()
		if err != nil {
			return err
		}
		switch marker {
		case markerSOD:
			return nil
		case markerCOD:
			if err := c.readCOD(); err != nil {
				return err
			}
		case markerQCD:
			if err := c.readQCD(); err != nil {
				return err
			}
		default:
			if err := c.skipSegment(); err != nil {
				return err
			}
		}
	}
}
