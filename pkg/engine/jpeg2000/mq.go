package jpeg2000

// The MQ context-adaptive binary arithmetic decoder (ITU-T T.800 Annex C).
// Each EBCOT coding pass decodes a sequence of binary decisions through one
// of 19 contexts, each tracking its own probability-estimation state. This
// decoder only supports the common case of a single MQ-coded segment per
// code block (no BYPASS, RESET, or ERTERM coding-pass termination modes),
// which covers the overwhelming majority of real-world encoder output.

// mqProbEntry is one row of the probability-estimation state machine
// (ITU-T T.800 Table C.2).
type mqProbEntry struct {
	qe        uint32
	nmps      uint8
	nlps      uint8
	switchMPS bool
}

var mqProbTable = [47]mqProbEntry{
	{0x5601, 1, 1, true}, {0x3401, 2, 6, false}, {0x1801, 3, 9, false},
	{0x0AC1, 4, 12, false}, {0x0521, 5, 29, false}, {0x0221, 38, 33, false},
	{0x5601, 7, 6, true}, {0x5401, 8, 14, false}, {0x4801, 9, 14, false},
	{0x3801, 10, 14, false}, {0x3001, 11, 17, false}, {0x2401, 12, 18, false},
	{0x1C01, 13, 20, false}, {0x1601, 29, 21, false}, {0x5601, 15, 14, true},
	{0x5401, 16, 14, false}, {0x5101, 17, 15, false}, {0x4801, 18, 16, false},
	{0x3801, 19, 17, false}, {0x3401, 20, 18, false}, {0x3001, 21, 19, false},
	{0x2801, 22, 19, false}, {0x2401, 23, 20, false}, {0x2201, 24, 21, false},
	{0x1C01, 25, 22, false}, {0x1801, 26, 23, false}, {0x1601, 27, 24, false},
	{0x1401, 28, 25, false}, {0x1201, 29, 26, false}, {0x1101, 30, 27, false},
	{0x0AC1, 31, 28, false}, {0x09C1, 32, 29, false}, {0x08A1, 33, 30, false},
	{0x0521, 34, 31, false}, {0x0441, 35, 32, false}, {0x02A1, 36, 33, false},
	{0x0221, 37, 34, false}, {0x0141, 38, 35, false}, {0x0111, 39, 36, false},
	{0x0085, 40, 37, false}, {0x0049, 41, 38, false}, {0x0025, 42, 39, false},
	{0x0015, 43, 40, false}, {0x0009, 44, 41, false}, {0x0005, 45, 42, false},
	{0x0001, 45, 43, false}, {0x5601, 46, 46, false},
}

const (
	numEBCOTContexts = 19
	ctxUniform       = 18 // T1_CTXNO_UNI: fixed 50/50 probability (state 46)
	ctxAggregation   = 17 // T1_CTXNO_AGG: cleanup-pass run-mode flag
	ctxSignificance0 = 0  // T1_CTXNO_ZC: first significance context
)

type mqContext struct {
	index uint8
	mps   uint8
}

// mqDecoder is the MQ arithmetic decoder state for one code block.
type mqDecoder struct {
	a  uint32
	c  uint32
	ct int

	data []byte
	pos  int

	contexts [numEBCOTContexts]mqContext
}

func newMQDecoder(data []byte) *mqDecoder {
	mq := &mqDecoder{}
	mq.resetContexts()
	mq.reset(data)
	return mq
}

// resetContexts restores the fixed initial probability states assigned to
// each context by ITU-T T.800 C.2.1 (most start at state 0 / MPS 0).
func (mq *mqDecoder) resetContexts() {
	for i := range mq.contexts {
		mq.contexts[i] = mqContext{}
	}
	mq.contexts[ctxSignificance0].index = 4
	mq.contexts[ctxAggregation].index = 3
	mq.contexts[ctxUniform].index = 46
}

// reset starts decoding a fresh code block's MQ-coded segment (INITDEC,
// ITU-T T.800 C.3.5).
func (mq *mqDecoder) reset(data []byte) {
	mq.data = data
	mq.pos = 0
	mq.a = 0x8000

	if mq.pos < len(mq.data) {
		mq.c = uint32(mq.data[mq.pos]) << 16
	} else {
		mq.c = 0xFF << 16
	}
	mq.bytein()
	mq.c <<= 7
	mq.ct -= 7
}

// bytein feeds the next byte of compressed data into C, respecting the
// 0xFF bit-stuffing and marker-detection rules of ITU-T T.800 C.3.4.
func (mq *mqDecoder) bytein() {
	if mq.pos >= len(mq.data) {
		mq.c += 0xFF << 8
		mq.ct = 8
		return
	}

	var next byte = 0xFF
	if mq.pos+1 < len(mq.data) {
		next = mq.data[mq.pos+1]
	}

	if mq.data[mq.pos] == 0xFF {
		if next > 0x8F {
			// Marker reached: the decoder behaves as if an infinite run of
			// 0xFF follows, without consuming past the marker.
			mq.c += 0xFF << 8
			mq.ct = 8
			return
		}
		mq.pos++
		mq.c += uint32(next) << 9
		mq.ct = 7
		return
	}

	mq.pos++
	mq.c += uint32(next) << 8
	mq.ct = 8
}

func (mq *mqDecoder) renormalize() {
	for mq.a < 0x8000 {
		if mq.ct == 0 {
			mq.bytein()
		}
		mq.a <<= 1
		mq.c <<= 1
		mq.ct--
	}
}

// decode returns the next binary decision coded under context ctx
// (ITU-T T.800 C.3.2, DECODE procedure).
func (mq *mqDecoder) decode(ctx int) int {
	cx := &mq.contexts[ctx]
	entry := &mqProbTable[cx.index]
	qe := entry.qe

	mq.a -= qe
	if mq.c>>16 < qe {
		if mq.a < qe {
			cx.index = entry.nmps
			mq.a = qe
			d := int(cx.mps)
			mq.renormalize()
			return d
		}
		mq.a = qe
		d := 1 - int(cx.mps)
		if entry.switchMPS {
			cx.mps = 1 - cx.mps
		}
		cx.index = entry.nlps
		mq.renormalize()
		return d
	}

	mq.c -= qe << 16
	if mq.a&0x8000 == 0 {
		if mq.a < qe {
			d := 1 - int(cx.mps)
			if entry.switchMPS {
				cx.mps = 1 - cx.mps
			}
			cx.index = entry.nlps
			mq.renormalize()
			return d
		}
		cx.index = entry.nmps
		d := int(cx.mps)
		mq.renormalize()
		return d
	}
	return int(cx.mps)
}
