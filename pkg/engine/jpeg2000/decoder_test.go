package jpeg2000

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func put16(buf *bytes.Buffer, v uint16) { buf.WriteByte(byte(v >> 8)); buf.WriteByte(byte(v)) }
func put32(buf *bytes.Buffer, v uint32) {
	buf.WriteByte(byte(v >> 24))
	buf.WriteByte(byte(v >> 16))
	buf.WriteByte(byte(v >> 8))
	buf.WriteByte(byte(v))
}

// codestreamOpts parameterizes buildCodestream's deviations from a minimal
// conformant single-tile, single-component codestream, so negative tests
// can exercise one scope boundary at a time without poking byte offsets.
type codestreamOpts struct {
	width, height int
	decompLevels  byte
	cbExp         byte
	qcdExponents  []byte
	tileBody      []byte
	xrsiz, yrsiz  byte
	transformType byte
	numTileParts  byte
}

func buildCodestream(o codestreamOpts) []byte {
	if o.xrsiz == 0 {
		o.xrsiz = 1
	}
	if o.yrsiz == 0 {
		o.yrsiz = 1
	}
	if o.transformType == 0 {
		o.transformType = 1
	}
	if o.numTileParts == 0 {
		o.numTileParts = 1
	}

	var buf bytes.Buffer
	put16(&buf, markerSOC)

	put16(&buf, markerSIZ)
	put16(&buf, 41) // length: 2 + 36 + 3*1 comps
	put16(&buf, 0)  // Rsiz
	put32(&buf, uint32(o.width))
	put32(&buf, uint32(o.height))
	put32(&buf, 0) // XOsiz
	put32(&buf, 0) // YOsiz
	put32(&buf, uint32(o.width))
	put32(&buf, uint32(o.height))
	put32(&buf, 0)   // XTOsiz
	put32(&buf, 0)   // YTOsiz
	put16(&buf, 1)   // numComps
	buf.WriteByte(7) // ssiz: unsigned, 8-bit
	buf.WriteByte(o.xrsiz)
	buf.WriteByte(o.yrsiz)

	put16(&buf, markerCOD)
	put16(&buf, 12)
	buf.WriteByte(0) // Scod: no custom precincts, no SOP/EPH
	buf.WriteByte(0) // progression order: LRCP
	put16(&buf, 1)   // numLayers
	buf.WriteByte(0) // MCT
	buf.WriteByte(o.decompLevels)
	buf.WriteByte(o.cbExp) // code-block width exp
	buf.WriteByte(o.cbExp) // code-block height exp
	buf.WriteByte(0)       // code-block style: default
	buf.WriteByte(o.transformType)

	put16(&buf, markerQCD)
	put16(&buf, uint16(3+len(o.qcdExponents)))
	buf.WriteByte(0) // Sqcd: style 0 (reversible), guard bits 0
	buf.Write(o.qcdExponents)

	put16(&buf, markerSOT)
	put16(&buf, 10)
	put16(&buf, 0) // tile index
	put32(&buf, 0) // tile-part length (unused by this decode path)
	buf.WriteByte(0)
	buf.WriteByte(o.numTileParts)

	put16(&buf, markerSOD)
	buf.Write(o.tileBody)
	put16(&buf, markerEOC)
	return buf.Bytes()
}

func buildSingleComponentCodestream(width, height int, decompLevels, cbExp byte, qcdExponents []byte, tileBody []byte) []byte {
	return buildCodestream(codestreamOpts{
		width: width, height: height,
		decompLevels: decompLevels, cbExp: cbExp,
		qcdExponents: qcdExponents, tileBody: tileBody,
	})
}

// An empty packet (present bit 0) declares no code-block data at all for
// its resolution/component; with zero decomposition levels there is a
// single LL-only packet, so the whole tile decodes to zero.
func TestDecodeEmptyPacketProducesZeroPlane(t *testing.T) {
	width, height := 3, 2
	cs := buildSingleComponentCodestream(width, height, 0, 4, []byte{0}, []byte{0x00})

	img, err := Decode(bytes.NewReader(cs))
	require.NoError(t, err)
	require.Equal(t, width, img.Width)
	require.Equal(t, height, img.Height)
	require.Equal(t, 1, img.NumComps)
	require.Equal(t, 8, img.Precision)
	require.Equal(t, make([]int, width*height), img.Components[0])
}

func TestDecodeRejectsMultipleTileParts(t *testing.T) {
	cs := buildCodestream(codestreamOpts{
		width: 2, height: 2, cbExp: 4, qcdExponents: []byte{0},
		tileBody: []byte{0x00}, numTileParts: 2,
	})
	_, err := Decode(bytes.NewReader(cs))
	require.ErrorIs(t, err, ErrUnsupportedCodestream)
}

func TestDecodeRejectsSubsampledComponents(t *testing.T) {
	cs := buildCodestream(codestreamOpts{
		width: 2, height: 2, cbExp: 4, qcdExponents: []byte{0},
		tileBody: []byte{0x00}, xrsiz: 2,
	})
	_, err := Decode(bytes.NewReader(cs))
	require.ErrorIs(t, err, ErrUnsupportedCodestream)
}

func TestDecodeRejectsNonReversibleTransform(t *testing.T) {
	cs := buildCodestream(codestreamOpts{
		width: 2, height: 2, cbExp: 4, qcdExponents: []byte{0},
		tileBody: []byte{0x00}, transformType: 2, // any non-reversible value; 0 is the zero-value default
	})
	_, err := Decode(bytes.NewReader(cs))
	require.ErrorIs(t, err, ErrUnsupportedCodestream)
}

func TestResolutionDimsAndSubbandGeometryTileImageExactly(t *testing.T) {
	width, height, levels := 17, 13, 3
	dims := resolutionDims(width, height, levels)
	require.Equal(t, [2]int{width, height}, dims[0])

	total := 0
	for r := 0; r <= levels; r++ {
		for _, sb := range subbandsAtResolution(r, levels, dims) {
			total += sb.width * sb.height
		}
	}
	require.Equal(t, width*height, total)
}

func TestSubbandsAtResolutionZeroIsLLOnly(t *testing.T) {
	dims := resolutionDims(8, 8, 2)
	subbands := subbandsAtResolution(0, 2, dims)
	require.Len(t, subbands, 1)
	require.Equal(t, subbandLL, subbands[0].typ)
	require.Equal(t, dims[2][0], subbands[0].width)
	require.Equal(t, dims[2][1], subbands[0].height)
}

func TestSubbandsAboveZeroAreHLLHHH(t *testing.T) {
	dims := resolutionDims(8, 8, 1)
	subbands := subbandsAtResolution(1, 1, dims)
	require.Len(t, subbands, 3)
	require.Equal(t, subbandHL, subbands[0].typ)
	require.Equal(t, subbandLH, subbands[1].typ)
	require.Equal(t, subbandHH, subbands[2].typ)
	// HL sits to the right of LL, LH below it, HH in the remaining corner.
	require.Equal(t, dims[1][0], subbands[0].xOff)
	require.Equal(t, 0, subbands[0].yOff)
	require.Equal(t, 0, subbands[1].xOff)
	require.Equal(t, dims[1][1], subbands[1].yOff)
}

func TestSubbandExpIndexOrdering(t *testing.T) {
	require.Equal(t, 0, subbandExpIndex(subbandLL, 0))
	require.Equal(t, 1, subbandExpIndex(subbandHL, 1))
	require.Equal(t, 2, subbandExpIndex(subbandLH, 1))
	require.Equal(t, 3, subbandExpIndex(subbandHH, 1))
	require.Equal(t, 4, subbandExpIndex(subbandHL, 2))
	require.Equal(t, 6, subbandExpIndex(subbandHH, 2))
}

func TestPartitionCodeBlocksCoversSubbandExactly(t *testing.T) {
	sb := subbandGeom{width: 13, height: 9}
	blocks := partitionCodeBlocks(sb, 4, 4)

	area := 0
	for _, b := range blocks {
		require.LessOrEqual(t, b.localX+b.width, sb.width)
		require.LessOrEqual(t, b.localY+b.height, sb.height)
		area += b.width * b.height
	}
	require.Equal(t, sb.width*sb.height, area)

	gw, gh := codeBlockGridDims(sb, 4, 4)
	require.Equal(t, 4, gw) // ceil(13/4)
	require.Equal(t, 3, gh) // ceil(9/4)
	require.Len(t, blocks, gw*gh)
}

func TestIlog2(t *testing.T) {
	cases := map[int]int{1: 0, 2: 1, 3: 1, 4: 2, 5: 2, 7: 2, 8: 3, 37: 5}
	for n, want := range cases {
		require.Equal(t, want, ilog2(n), "ilog2(%d)", n)
	}
}

func bitString(s string) []byte {
	var out []byte
	var cur byte
	n := 0
	for _, ch := range s {
		cur = cur<<1 | byte(ch-'0')
		n++
		if n == 8 {
			out = append(out, cur)
			cur, n = 0, 0
		}
	}
	if n > 0 {
		cur <<= 8 - n
		out = append(out, cur)
	}
	return out
}

func TestReadNumPassesShortCodes(t *testing.T) {
	cases := []struct {
		bits string
		want int
	}{
		{"0", 1},
		{"10", 2},
		{"1100", 3},
		{"1101", 4},
		{"1110", 5},
	}
	for _, tc := range cases {
		br := newPacketBitReader(bitString(tc.bits))
		got, err := readNumPasses(br)
		require.NoError(t, err)
		require.Equal(t, tc.want, got, tc.bits)
	}
}

func TestReadLblockIncrement(t *testing.T) {
	br := newPacketBitReader(bitString("1110"))
	inc, err := readLblockIncrement(br)
	require.NoError(t, err)
	require.Equal(t, 3, inc)
}

func TestPacketBitReaderBitStuffing(t *testing.T) {
	// 0xFF is always followed by a stuffed 0 bit, so only 7 of the next
	// byte's bits carry data; 0x40 (0100_0000) has the required top bit
	// clear, so its first real (post-stuffing) bit is bit 1, which is 1.
	br := newPacketBitReader([]byte{0xFF, 0x40})
	for i := 0; i < 8; i++ {
		bit, err := br.ReadBit()
		require.NoError(t, err)
		require.Equal(t, 1, bit)
	}
	bit, err := br.ReadBit()
	require.NoError(t, err)
	require.Equal(t, 1, bit)
}

func TestTagTreeDecodeInclusionSingleLeaf(t *testing.T) {
	tt := newTagTree(1, 1)
	br := newPacketBitReader([]byte{0x80}) // first bit 1: node resolves immediately to 0
	included, err := tt.decodeInclusion(0, 0, 0, br)
	require.NoError(t, err)
	require.True(t, included)
}

func TestTagTreeDecodeZBP(t *testing.T) {
	tt := newTagTree(1, 1)
	// Two 0-bits (low goes 0->1->2), then a 1-bit resolves the node at 2.
	br := newPacketBitReader(bitString("001"))
	zbp, err := tt.decodeZBP(0, 0, br)
	require.NoError(t, err)
	require.EqualValues(t, 2, zbp)
}
