// Package jpeg2000 implements a single-tile JPEG 2000 decode path (ITU-T
// T.800 | ISO/IEC 15444-1): main-header parsing (SIZ/COD/QCD), tile-part
// decode (SOT/SOD), tier-2 packet-header parsing, EBCOT tier-1 entropy
// decoding (MQ arithmetic coding over the default, non-BYPASS code-block
// style), reversible 5/3 inverse DWT reconstruction and, for 3-component
// tiles with the multi-component transform flag set, the inverse reversible
// color transform.
package jpeg2000

const (
	markerSOC = 0xFF4F
	markerSOT = 0xFF90
	markerSOD = 0xFFD3
	markerEOC = 0xFFD9
	markerSIZ = 0xFF51
	markerCOD = 0xFF52
	markerCOC = 0xFF53
	markerQCD = 0xFF5C
	markerQCC = 0xFF5D
	markerCOM = 0xFF64
	markerSOP = 0xFF91
	markerEPH = 0xFF92
)

// ComponentInfo holds per-component precision/signedness/subsampling from
// the SIZ marker (ITU-T T.800 A.5.1).
type ComponentInfo struct {
	Precision int
	Signed    bool
	XRsiz     int
	YRsiz     int
}

// SIZMarker holds image and tile size parameters.
type SIZMarker struct {
	XSiz, YSiz     uint32
	XOsiz, YOsiz   uint32
	XTsiz, YTsiz   uint32
	XTOsiz, YTOsiz uint32
	Components     []ComponentInfo
}

// subbandType identifies which of the four DWT subbands a code block
// belongs to; resolution 0 has only subbandLL, every other resolution has
// subbandHL/subbandLH/subbandHH.
type subbandType int

const (
	subbandLL subbandType = iota
	subbandHL
	subbandLH
	subbandHH
)

func (s subbandType) String() string {
	switch s {
	case subbandLL:
		return "LL"
	case subbandHL:
		return "HL"
	case subbandLH:
		return "LH"
	case subbandHH:
		return "HH"
	default:
		return "?"
	}
}

// CODMarker holds coding style default parameters (ITU-T T.800 A.6.1). MCT
// nonzero selects the reversible color transform across the first three
// components.
type CODMarker struct {
	Scod               byte
	ProgressionOrder   byte
	NumLayers          uint16
	MCT                byte
	DecompLevels       byte
	CodeBlockWidthExp  byte // stored as (exponent - 2), per ITU-T T.800 Table A.18
	CodeBlockHeightExp byte
	CodeBlockStyle     byte
	TransformType      byte // 0 = 9/7 irreversible, 1 = 5/3 reversible
}

// usesSOP reports whether SOP marker segments prefix each packet.
func (c CODMarker) usesSOP() bool { return c.Scod&0x02 != 0 }

// usesEPH reports whether an EPH marker follows each packet header.
func (c CODMarker) usesEPH() bool { return c.Scod&0x04 != 0 }

// usesCustomPrecincts reports whether non-default precinct sizes follow the
// code-block style byte in the COD segment.
func (c CODMarker) usesCustomPrecincts() bool { return c.Scod&0x01 != 0 }

func (c CODMarker) codeBlockWidth() int  { return 1 << (c.CodeBlockWidthExp + 2) }
func (c CODMarker) codeBlockHeight() int { return 1 << (c.CodeBlockHeightExp + 2) }

// QCDMarker holds quantization default parameters. Only quantization style
// 0 (no quantization, reversible) is decoded; Exponents holds one 5-bit
// exponent per subband, ordered LL, then HL/LH/HH per resolution level.
type QCDMarker struct {
	Sqcd      byte
	GuardBits byte
	Exponents []int
}

func (q QCDMarker) style() byte { return q.Sqcd & 0x1F }

// SOTMarker holds tile-part header parameters (ITU-T T.800 A.4.2).
type SOTMarker struct {
	TileIndex    uint16
	TilePartLen  uint32
	TilePartIdx  byte
	NumTileParts byte
}
