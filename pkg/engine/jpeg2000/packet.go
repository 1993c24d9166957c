package jpeg2000

import "fmt"

// Tier-2 packet-header parsing and subband/code-block geometry (ITU-T
// T.800 Annex B). This engine only supports a single tile, a single
// quality layer, and the default (maximal) precinct per subband, so every
// packet corresponds to exactly one (resolution, component) pair and the
// precinct/layer loops that a general decoder needs collapse to one
// iteration each.

// subbandGeom describes one subband's placement within the flat,
// strided coefficient buffer that inverseMultiLevel expects: the same
// quadrant layout forwardMultiLevel produces.
type subbandGeom struct {
	typ           subbandType
	xOff, yOff    int
	width, height int
}

// resolutionDims mirrors inverseMultiLevel's dims table: dims[0] is the
// full image, dims[i] is the LL region remaining after i decompositions.
func resolutionDims(width, height, levels int) [][2]int {
	dims := make([][2]int, levels+1)
	dims[0] = [2]int{width, height}
	for i := 1; i <= levels; i++ {
		dims[i] = [2]int{(dims[i-1][0] + 1) / 2, (dims[i-1][1] + 1) / 2}
	}
	return dims
}

// subbandsAtResolution returns the subbands belonging to resolution r
// (0 is the LL-only coarsest resolution). Resolution r's decomposition
// loop level is levels-r: the region dims[levels-r] split into an LL of
// size dims[levels-r+1] plus HL/LH/HH filling out the rest, exactly the
// split forward1D performs row-then-column.
func subbandsAtResolution(r, levels int, dims [][2]int) []subbandGeom {
	if r == 0 {
		ll := dims[levels]
		return []subbandGeom{{typ: subbandLL, width: ll[0], height: ll[1]}}
	}
	loopLevel := levels - r
	full := dims[loopLevel]
	ll := dims[loopLevel+1]
	return []subbandGeom{
		{typ: subbandHL, xOff: ll[0], yOff: 0, width: full[0] - ll[0], height: ll[1]},
		{typ: subbandLH, xOff: 0, yOff: ll[1], width: ll[0], height: full[1] - ll[1]},
		{typ: subbandHH, xOff: ll[0], yOff: ll[1], width: full[0] - ll[0], height: full[1] - ll[1]},
	}
}

// subbandExpIndex maps a subband to its index into QCDMarker.Exponents:
// LL is index 0; each resolution level above it contributes HL, LH, HH
// in that order (ITU-T T.800 Table A.22).
func subbandExpIndex(typ subbandType, r int) int {
	if r == 0 {
		return 0
	}
	offset := 0
	switch typ {
	case subbandLH:
		offset = 1
	case subbandHH:
		offset = 2
	}
	return 1 + 3*(r-1) + offset
}

type codeBlockGeom struct {
	localX, localY int
	width, height  int
}

// partitionCodeBlocks tiles a subband into its code-block grid, anchored
// at the subband's own local origin. This decoder requires the default
// (maximal) precinct, so the code-block grid is not further split by
// precinct boundaries.
func partitionCodeBlocks(sb subbandGeom, cbw, cbh int) []codeBlockGeom {
	if sb.width <= 0 || sb.height <= 0 {
		return nil
	}
	var blocks []codeBlockGeom
	for y := 0; y < sb.height; y += cbh {
		h := min(cbh, sb.height-y)
		for x := 0; x < sb.width; x += cbw {
			w := min(cbw, sb.width-x)
			blocks = append(blocks, codeBlockGeom{localX: x, localY: y, width: w, height: h})
		}
	}
	return blocks
}

func codeBlockGridDims(sb subbandGeom, cbw, cbh int) (int, int) {
	if sb.width <= 0 || sb.height <= 0 {
		return 1, 1
	}
	return (sb.width + cbw - 1) / cbw, (sb.height + cbh - 1) / cbh
}

// ilog2 returns floor(log2(n)) for n >= 1, the number of extra bits the
// packet-header data-length field carries once a code block has more than
// one coding pass (ITU-T T.800 B.10.7).
func ilog2(n int) int {
	b := 0
	for n > 1 {
		n >>= 1
		b++
	}
	return b
}

// readNumPasses decodes a code block's coding-pass count from its
// variable-length comma code (ITU-T T.800 B.10.6): each escape level
// widens the remaining range before falling back to a fixed-width field.
func readNumPasses(br *packetBitReader) (int, error) {
	bit, err := br.ReadBit()
	if err != nil {
		return 0, err
	}
	if bit == 0 {
		return 1, nil
	}

	bit, err = br.ReadBit()
	if err != nil {
		return 0, err
	}
	if bit == 0 {
		return 2, nil
	}

	v2, err := br.ReadBits(2)
	if err != nil {
		return 0, err
	}
	if v2 != 3 {
		return 3 + int(v2), nil
	}

	v5, err := br.ReadBits(5)
	if err != nil {
		return 0, err
	}
	if v5 != 31 {
		return 6 + int(v5), nil
	}

	v7, err := br.ReadBits(7)
	if err != nil {
		return 0, err
	}
	return 38 + int(v7), nil
}

// readLblockIncrement decodes the unary-coded increment to a code block's
// Lblock value (ITU-T T.800 B.10.7): a run of 1-bits terminated by a 0.
func readLblockIncrement(br *packetBitReader) (int, error) {
	n := 0
	for {
		bit, err := br.ReadBit()
		if err != nil {
			return 0, err
		}
		if bit == 0 {
			return n, nil
		}
		n++
	}
}

func skipSOPMarker(data []byte, pos int) int {
	if pos+6 <= len(data) && data[pos] == 0xFF && data[pos+1] == (markerSOP&0xFF) {
		return pos + 6
	}
	return pos
}

func skipEPHMarker(data []byte, pos int) int {
	if pos+2 <= len(data) && data[pos] == 0xFF && data[pos+1] == (markerEPH&0xFF) {
		return pos + 2
	}
	return pos
}

// tileDecoder holds the state that persists across packets for one tile:
// per-component coefficient planes, and the inclusion/zero-bit-plane tag
// trees for each (component, resolution, subband).
type tileDecoder struct {
	width, height int
	levels        int
	cod           CODMarker
	qcd           QCDMarker
	dims          [][2]int
	cbw, cbh      int

	coeffs [][]int
	ebcot  *ebcotDecoder

	incTrees map[[3]int]*tagTree
	zbpTrees map[[3]int]*tagTree
}

func newTileDecoder(numComps, width, height int, cod CODMarker, qcd QCDMarker) *tileDecoder {
	levels := int(cod.DecompLevels)
	td := &tileDecoder{
		width: width, height: height, levels: levels,
		cod: cod, qcd: qcd,
		dims:     resolutionDims(width, height, levels),
		cbw:      cod.codeBlockWidth(),
		cbh:      cod.codeBlockHeight(),
		coeffs:   make([][]int, numComps),
		incTrees: map[[3]int]*tagTree{},
		zbpTrees: map[[3]int]*tagTree{},
	}
	for c := range td.coeffs {
		td.coeffs[c] = make([]int, width*height)
	}
	td.ebcot = newEBCOTDecoder(td.cbw, td.cbh)
	return td
}

// decode consumes tileData (the bytes from SOD up to EOC) as a sequence
// of packets and returns each component's reconstructed coefficient
// plane, ready for inverseMultiLevel.
func (td *tileDecoder) decode(tileData []byte, numComps int) ([][]int, error) {
	resolutionMajor := td.cod.ProgressionOrder <= 2
	pos := 0

	visit := func(comp, r int) error {
		next, err := td.decodePacket(tileData, pos, comp, r)
		if err != nil {
			return fmt.Errorf("jpeg2000: resolution %d component %d: %w", r, comp, err)
		}
		pos = next
		return nil
	}

	if resolutionMajor {
		for r := 0; r <= td.levels; r++ {
			for c := 0; c < numComps; c++ {
				if err := visit(c, r); err != nil {
					return nil, err
				}
			}
		}
	} else {
		for c := 0; c < numComps; c++ {
			for r := 0; r <= td.levels; r++ {
				if err := visit(c, r); err != nil {
					return nil, err
				}
			}
		}
	}

	for c := range td.coeffs {
		inverseMultiLevel(td.coeffs[c], td.width, td.height, td.levels)
	}
	return td.coeffs, nil
}

type codeBlockContribution struct {
	sb            subbandGeom
	blk           codeBlockGeom
	numPasses     int
	zeroBitPlanes int
	length        int
}

// decodePacket parses one (resolution, component) packet starting at pos
// and returns the offset immediately following it.
func (td *tileDecoder) decodePacket(tileData []byte, pos, comp, r int) (int, error) {
	subbands := subbandsAtResolution(r, td.levels, td.dims)

	pos = skipSOPMarker(tileData, pos)
	br := newPacketBitReader(tileData[pos:])

	present, err := br.ReadBit()
	if err != nil {
		return 0, err
	}

	var contributions []codeBlockContribution
	if present != 0 {
		for sbi, sb := range subbands {
			blocks := partitionCodeBlocks(sb, td.cbw, td.cbh)
			gw, gh := codeBlockGridDims(sb, td.cbw, td.cbh)
			k := [3]int{comp, r, sbi}

			incTree := td.incTrees[k]
			if incTree == nil {
				incTree = newTagTree(gw, gh)
				td.incTrees[k] = incTree
			}
			zbpTree := td.zbpTrees[k]
			if zbpTree == nil {
				zbpTree = newTagTree(gw, gh)
				td.zbpTrees[k] = zbpTree
			}

			for bi, blk := range blocks {
				bx, by := bi%gw, bi/gw
				included, err := incTree.decodeInclusion(bx, by, 0, br)
				if err != nil {
					return 0, err
				}
				if !included {
					continue
				}
				zbp, err := zbpTree.decodeZBP(bx, by, br)
				if err != nil {
					return 0, err
				}
				numPasses, err := readNumPasses(br)
				if err != nil {
					return 0, err
				}
				inc, err := readLblockIncrement(br)
				if err != nil {
					return 0, err
				}
				lblock := 3 + inc
				bits := lblock
				if numPasses > 1 {
					bits += ilog2(numPasses)
				}
				length, err := br.ReadBits(bits)
				if err != nil {
					return 0, err
				}
				contributions = append(contributions, codeBlockContribution{
					sb: sb, blk: blk, numPasses: numPasses,
					zeroBitPlanes: int(zbp), length: int(length),
				})
			}
		}
	}

	br.ByteAlign()
	pos += br.Pos()
	pos = skipEPHMarker(tileData, pos)

	for _, ct := range contributions {
		if pos+ct.length > len(tileData) {
			return 0, fmt.Errorf("%w: code-block data runs past tile end", ErrInvalidSOT)
		}
		data := tileData[pos : pos+ct.length]
		pos += ct.length

		expIdx := subbandExpIndex(ct.sb.typ, r)
		if expIdx >= len(td.qcd.Exponents) {
			return 0, fmt.Errorf("%w: missing exponent for subband %s at resolution %d", ErrInvalidQCD, ct.sb.typ, r)
		}
		mb := int(td.qcd.GuardBits) + td.qcd.Exponents[expIdx] - 1

		blockCoeffs := td.ebcot.decodeCodeBlock(data, ct.blk.width, ct.blk.height, ct.numPasses, ct.zeroBitPlanes, mb, ct.sb.typ)

		plane := td.coeffs[comp]
		for y := 0; y < ct.blk.height; y++ {
			imgY := ct.sb.yOff + ct.blk.localY + y
			rowOff := imgY*td.width + ct.sb.xOff + ct.blk.localX
			srcRow := blockCoeffs[y]
			for x := 0; x < ct.blk.width; x++ {
				plane[rowOff+x] = int(srcRow[x]) / 2
			}
		}
	}

	return pos, nil
}
