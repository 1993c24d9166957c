package jpeg2000

// EBCOT tier-1 bit-plane decoding (ITU-T T.800 Annex D). Each code block is
// decoded bit plane by bit plane, most significant first, through three
// coding passes:
//
//  1. Significance propagation: coefficients adjacent to an already
//     significant coefficient are tested for significance.
//  2. Magnitude refinement: coefficients already significant get one more
//     bit of precision.
//  3. Cleanup: everything neither pass above touched, with a run-length
//     shortcut when a whole stripe column has no significance context.
//
// This decoder covers the default code-block style (no BYPASS, RESET,
// ERTERM, vertically-causal context, or segmentation symbols) — the
// combination the overwhelming majority of encoders emit, and the only one
// that reduces to a single continuous MQ-coded segment per code block.

// Magnitude-refinement context IDs: ctxMagFirst for a coefficient's first
// refinement with no significant neighbor, ctxMagFirst+1 (ctxMagOther) for
// a first refinement with one, and 16 for every later refinement.
const (
	ctxMagFirst = 14
	ctxMagOther = 15
)

const (
	flagSignificant = 1 << iota
	flagSign
	flagRefined
	flagVisited
	flagNeighborSig
)

// lutCtxnoSC maps an 8-bit neighbor sign/significance pattern to a sign
// context (9-13). Copied from the OpenJPEG t1_luts table referenced by
// ITU-T T.800 Annex D.3.
var lutCtxnoSC = [256]byte{
	0x9, 0x9, 0xa, 0xa, 0x9, 0x9, 0xa, 0xa, 0xc, 0xc, 0xd, 0xb, 0xc, 0xc, 0xd, 0xb,
	0x9, 0x9, 0xa, 0xa, 0x9, 0x9, 0xa, 0xa, 0xc, 0xc, 0xb, 0xd, 0xc, 0xc, 0xb, 0xd,
	0xc, 0xc, 0xd, 0xd, 0xc, 0xc, 0xb, 0xb, 0xc, 0x9, 0xd, 0xa, 0x9, 0xc, 0xa, 0xb,
	0xc, 0xc, 0xb, 0xb, 0xc, 0xc, 0xd, 0xd, 0xc, 0x9, 0xb, 0xa, 0x9, 0xc, 0xa, 0xd,
	0x9, 0x9, 0xa, 0xa, 0x9, 0x9, 0xa, 0xa, 0xc, 0xc, 0xd, 0xb, 0xc, 0xc, 0xd, 0xb,
	0x9, 0x9, 0xa, 0xa, 0x9, 0x9, 0xa, 0xa, 0xc, 0xc, 0xb, 0xd, 0xc, 0xc, 0xb, 0xd,
	0xc, 0xc, 0xd, 0xd, 0xc, 0xc, 0xb, 0xb, 0xc, 0x9, 0xd, 0xa, 0x9, 0xc, 0xa, 0xb,
	0xc, 0xc, 0xb, 0xb, 0xc, 0xc, 0xd, 0xd, 0xc, 0x9, 0xb, 0xa, 0x9, 0xc, 0xa, 0xd,
	0xa, 0xa, 0xa, 0xa, 0xa, 0xa, 0xa, 0xa, 0xd, 0xb, 0xd, 0xb, 0xd, 0xb, 0xd, 0xb,
	0xa, 0xa, 0x9, 0x9, 0xa, 0xa, 0x9, 0x9, 0xd, 0xb, 0xc, 0xc, 0xd, 0xb, 0xc, 0xc,
	0xd, 0xd, 0xd, 0xd, 0xb, 0xb, 0xb, 0xb, 0xd, 0xa, 0xd, 0xa, 0xa, 0xb, 0xa, 0xb,
	0xd, 0xd, 0xc, 0xc, 0xb, 0xb, 0xc, 0xc, 0xd, 0xa, 0xc, 0x9, 0xa, 0xb, 0x9, 0xc,
	0xa, 0xa, 0x9, 0x9, 0xa, 0xa, 0x9, 0x9, 0xb, 0xd, 0xc, 0xc, 0xb, 0xd, 0xc, 0xc,
	0xa, 0xa, 0xa, 0xa, 0xa, 0xa, 0xa, 0xa, 0xb, 0xd, 0xb, 0xd, 0xb, 0xd, 0xb, 0xd,
	0xb, 0xb, 0xc, 0xc, 0xd, 0xd, 0xc, 0xc, 0xb, 0xa, 0xc, 0x9, 0xa, 0xd, 0x9, 0xc,
	0xb, 0xb, 0xb, 0xb, 0xd, 0xd, 0xd, 0xd, 0xb, 0xa, 0xb, 0xa, 0xa, 0xd, 0xa, 0xd,
}

// lutSPB maps the same neighbor pattern to the sign-prediction bit the
// decoded bit is XORed against.
var lutSPB = [256]byte{
	0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 0, 1, 0, 1, 0, 1, 0, 0, 1, 1, 0, 0, 1, 1, 0, 1, 0, 1, 0, 1, 0, 1,
	0, 0, 0, 0, 1, 1, 1, 1, 0, 0, 0, 0, 0, 1, 0, 1, 0, 0, 0, 0, 1, 1, 1, 1, 0, 0, 0, 1, 0, 1, 1, 1,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 0, 1, 0, 1, 0, 1, 0, 0, 1, 1, 0, 0, 1, 1, 0, 1, 0, 1, 0, 1, 0, 1,
	0, 0, 0, 0, 1, 1, 1, 1, 0, 0, 0, 0, 0, 1, 0, 1, 0, 0, 0, 0, 1, 1, 1, 1, 0, 0, 0, 1, 0, 1, 1, 1,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 0, 1, 0, 1, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 0, 1, 0, 1, 0, 1,
	0, 0, 0, 0, 1, 1, 1, 1, 0, 0, 0, 0, 0, 1, 0, 1, 0, 0, 0, 0, 1, 1, 1, 1, 0, 0, 0, 0, 0, 1, 0, 1,
	1, 1, 0, 0, 1, 1, 0, 0, 0, 1, 0, 1, 0, 1, 0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0, 1, 0, 1, 0, 1, 0, 1,
	0, 0, 0, 0, 1, 1, 1, 1, 0, 1, 0, 0, 1, 1, 0, 1, 0, 0, 0, 0, 1, 1, 1, 1, 0, 1, 0, 1, 1, 1, 1, 1,
}

// ebcotDecoder decodes one code block at a time; its state arrays are
// reused (and cleared) across code blocks, sized to the largest code block
// the tile's COD marker allows.
type ebcotDecoder struct {
	mq            *mqDecoder
	width, height int
	state         [][]uint8
	data          [][]int32
}

func newEBCOTDecoder(maxWidth, maxHeight int) *ebcotDecoder {
	e := &ebcotDecoder{state: make([][]uint8, maxHeight+2), data: make([][]int32, maxHeight+2)}
	for i := range e.state {
		e.state[i] = make([]uint8, maxWidth+2)
		e.data[i] = make([]int32, maxWidth+2)
	}
	return e
}

// decodeCodeBlock decodes width x height coefficients from data, coded as
// numPasses passes starting at bit plane mb-zeroBitPlanes-1.
func (e *ebcotDecoder) decodeCodeBlock(data []byte, width, height, numPasses, zeroBitPlanes, mb int, subbandType subbandType) [][]int32 {
	e.width, e.height = width, height
	for y := 0; y < len(e.state); y++ {
		for x := 0; x < len(e.state[y]); x++ {
			e.state[y][x] = 0
			e.data[y][x] = 0
		}
	}

	if e.mq == nil {
		e.mq = newMQDecoder(data)
	} else {
		e.mq.resetContexts()
		e.mq.reset(data)
	}

	if mb < 1 {
		mb = 8
	}
	bp := mb - zeroBitPlanes - 1
	if bp < 0 {
		bp = 0
	}

	passtype := 2 // cleanup first; then SPP(0), MRP(1), cleanup(2), ...
	for pass := 0; pass < numPasses; pass++ {
		if passtype == 0 || (passtype == 2 && pass == 0) {
			e.clearVisited()
		}
		switch passtype {
		case 0:
			e.significancePropagationPass(bp, subbandType)
		case 1:
			e.magnitudeRefinementPass(bp)
		case 2:
			e.cleanupPass(bp, subbandType)
		}
		passtype++
		if passtype == 3 {
			passtype = 0
			if bp > 0 {
				bp--
			}
		}
	}

	out := make([][]int32, height)
	for y := 0; y < height; y++ {
		out[y] = make([]int32, width)
		copy(out[y], e.data[y+1][1:1+width])
	}
	return out
}

func (e *ebcotDecoder) clearVisited() {
	for y := 1; y <= e.height; y++ {
		for x := 1; x <= e.width; x++ {
			e.state[y][x] &^= flagVisited
		}
	}
}

func (e *ebcotDecoder) significancePropagationPass(bp int, subbandType subbandType) {
	for stripe := 0; stripe < (e.height+3)/4; stripe++ {
		y0 := stripe * 4
		y1 := min(y0+4, e.height)
		for x := 0; x < e.width; x++ {
			for y := y0; y < y1; y++ {
				yy, xx := y+1, x+1
				if e.state[yy][xx]&flagSignificant != 0 {
					continue
				}
				if e.state[yy][xx]&flagNeighborSig == 0 {
					continue
				}
				e.state[yy][xx] |= flagVisited
				if e.mq.decode(e.sigContext(xx, yy, subbandType)) != 0 {
					e.setSignificant(xx, yy, bp)
					e.decodeSign(xx, yy)
				}
			}
		}
	}
}

func (e *ebcotDecoder) magnitudeRefinementPass(bp int) {
	poshalf := int32(1) << uint(bp)
	for stripe := 0; stripe < (e.height+3)/4; stripe++ {
		y0 := stripe * 4
		y1 := min(y0+4, e.height)
		for x := 0; x < e.width; x++ {
			for y := y0; y < y1; y++ {
				yy, xx := y+1, x+1
				if e.state[yy][xx]&flagSignificant == 0 || e.state[yy][xx]&flagVisited != 0 {
					continue
				}
				ctx := ctxMagFirst
				first := e.state[yy][xx]&flagRefined == 0
				if !first {
					ctx = 16
				} else if e.state[yy][xx]&flagNeighborSig != 0 {
					ctx = ctxMagOther
				}
				e.state[yy][xx] |= flagRefined
				bit := e.mq.decode(ctx)
				e.applyRefinement(yy, xx, bit, poshalf)
			}
		}
	}
}

func (e *ebcotDecoder) applyRefinement(yy, xx, bit int, poshalf int32) {
	negative := e.data[yy][xx] < 0
	if (bit != 0) != negative {
		e.data[yy][xx] += poshalf
	} else {
		e.data[yy][xx] -= poshalf
	}
}

func (e *ebcotDecoder) cleanupPass(bp int, subbandType subbandType) {
	for stripe := 0; stripe < (e.height+3)/4; stripe++ {
		y0 := stripe * 4
		y1 := min(y0+4, e.height)
		for x := 0; x < e.width; x++ {
			xx := x + 1
			runnable := y1-y0 >= 4
			for i := 0; i < 4 && runnable; i++ {
				if e.state[y0+i+1][xx] != 0 {
					runnable = false
				}
			}

			if !runnable {
				for y := y0; y < y1; y++ {
					yy := y + 1
					if e.state[yy][xx]&flagVisited != 0 {
						continue
					}
					e.cleanupDecodeOne(xx, yy, bp, subbandType)
				}
				continue
			}

			if e.mq.decode(ctxAggregation) == 0 {
				for i := 0; i < 4; i++ {
					e.state[y0+i+1][xx] |= flagVisited
				}
				continue
			}
			bit1 := e.mq.decode(ctxUniform)
			bit0 := e.mq.decode(ctxUniform)
			runLen := bit1<<1 | bit0

			for i := 0; i < 4; i++ {
				yy := y0 + i + 1
				switch {
				case i < runLen:
					e.state[yy][xx] |= flagVisited
				case i == runLen:
					e.state[yy][xx] |= flagVisited
					e.setSignificant(xx, yy, bp)
					e.decodeSign(xx, yy)
				default:
					e.cleanupDecodeOne(xx, yy, bp, subbandType)
				}
			}
		}
	}
}

func (e *ebcotDecoder) cleanupDecodeOne(x, y, bp int, subbandType subbandType) {
	e.state[y][x] |= flagVisited
	if e.state[y][x]&flagSignificant != 0 {
		return
	}
	if e.mq.decode(e.sigContext(x, y, subbandType)) != 0 {
		e.setSignificant(x, y, bp)
		e.decodeSign(x, y)
	}
}

func (e *ebcotDecoder) decodeSign(x, y int) {
	ctx, xorBit := e.signContext(x, y)
	bit := e.mq.decode(ctx) ^ xorBit
	if bit != 0 {
		e.state[y][x] |= flagSign
		e.data[y][x] = -e.data[y][x]
	}
}

// sigContext implements ITU-T T.800 Table D.1: orientation determines
// whether the horizontal or vertical neighbor count is the primary
// discriminator, and HH instead keys off the combined h+v count.
func (e *ebcotDecoder) sigContext(x, y int, subbandType subbandType) int {
	h, v, d := e.countSigNeighbors(x, y)

	if subbandType == subbandHH {
		hv := h + v
		switch {
		case d == 0 && hv == 0:
			return 0
		case d == 0 && hv == 1:
			return 1
		case d == 0:
			return 2
		case d == 1 && hv == 0:
			return 3
		case d == 1 && hv == 1:
			return 4
		case d == 1:
			return 5
		case d == 2 && hv == 0:
			return 6
		case d == 2:
			return 7
		default:
			return 8
		}
	}

	if subbandType == subbandHL {
		h, v = v, h
	}
	switch {
	case h == 0 && v == 0 && d == 0:
		return 0
	case h == 0 && v == 0 && d == 1:
		return 1
	case h == 0 && v == 0:
		return 2
	case h == 0 && v == 1:
		return 3
	case h == 0:
		return 4
	case h == 1 && v == 0 && d == 0:
		return 5
	case h == 1 && v == 0:
		return 6
	case h == 1:
		return 7
	default:
		return 8
	}
}

const (
	lutSgnW = 1 << 0
	lutSigN = 1 << 1
	lutSgnE = 1 << 2
	lutSigW = 1 << 3
	lutSgnN = 1 << 4
	lutSigE = 1 << 5
	lutSgnS = 1 << 6
	lutSigS = 1 << 7
)

func (e *ebcotDecoder) signContext(x, y int) (int, int) {
	var lu int
	if w := e.state[y][x-1]; w&flagSignificant != 0 {
		lu |= lutSigW
		if w&flagSign != 0 {
			lu |= lutSgnW
		}
	}
	if ea := e.state[y][x+1]; ea&flagSignificant != 0 {
		lu |= lutSigE
		if ea&flagSign != 0 {
			lu |= lutSgnE
		}
	}
	if n := e.state[y-1][x]; n&flagSignificant != 0 {
		lu |= lutSigN
		if n&flagSign != 0 {
			lu |= lutSgnN
		}
	}
	if s := e.state[y+1][x]; s&flagSignificant != 0 {
		lu |= lutSigS
		if s&flagSign != 0 {
			lu |= lutSgnS
		}
	}
	return int(lutCtxnoSC[lu]), int(lutSPB[lu])
}

// setSignificant marks (x, y) significant, seeds its reconstructed
// magnitude at the bin midpoint (OpenJPEG's "oneplushalf" convention), and
// flags all eight neighbors so later context lookups are O(1).
func (e *ebcotDecoder) setSignificant(x, y, bp int) {
	if e.state[y][x]&flagSignificant != 0 {
		return
	}
	e.state[y][x] |= flagSignificant
	e.data[y][x] = int32(1)<<uint(bp+1) | int32(1)<<uint(bp)

	e.state[y][x-1] |= flagNeighborSig
	e.state[y][x+1] |= flagNeighborSig
	e.state[y-1][x] |= flagNeighborSig
	e.state[y-1][x-1] |= flagNeighborSig
	e.state[y-1][x+1] |= flagNeighborSig
	e.state[y+1][x] |= flagNeighborSig
	e.state[y+1][x-1] |= flagNeighborSig
	e.state[y+1][x+1] |= flagNeighborSig
}

func (e *ebcotDecoder) countSigNeighbors(x, y int) (h, v, d int) {
	if e.state[y][x-1]&flagSignificant != 0 {
		h++
	}
	if e.state[y][x+1]&flagSignificant != 0 {
		h++
	}
	if e.state[y-1][x]&flagSignificant != 0 {
		v++
	}
	if e.state[y+1][x]&flagSignificant != 0 {
		v++
	}
	if e.state[y-1][x-1]&flagSignificant != 0 {
		d++
	}
	if e.state[y-1][x+1]&flagSignificant != 0 {
		d++
	}
	if e.state[y+1][x-1]&flagSignificant != 0 {
		d++
	}
	if e.state[y+1][x+1]&flagSignificant != 0 {
		d++
	}
	return
}
