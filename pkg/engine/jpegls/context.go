package jpegls

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func clip(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// PredictMED implements the Median Edge Detector predictor (ISO/IEC
// 14495-1 §A.4.1). Ra is the left neighbor, Rb the above neighbor, Rc the
// above-left neighbor.
func PredictMED(Ra, Rb, Rc int) int {
	if Rc >= max(Ra, Rb) {
		return min(Ra, Rb)
	}
	if Rc <= min(Ra, Rb) {
		return max(Ra, Rb)
	}
	return Ra + Rb - Rc
}

// contextModel holds the 365 regular contexts plus the 2 run-interruption
// contexts (indices 365, 366) used by JPEG-LS's adaptive gradient model
// (ISO/IEC 14495-1 Annex A).
type contextModel struct {
	T1, T2, T3 int
	MaxVal     int

	A, B, C, N []int
	Reset      int

	J        [32]int
	RunIndex int
}

var runModeJTable = [32]int{0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2, 3, 3, 3, 3, 4, 4, 5, 5, 6, 6, 7, 7, 8, 9, 10, 11, 12, 13, 14, 15}

// newContextModel builds the model for the given sample range, near-lossless
// parameter and context-reset threshold, deriving the gradient quantization
// thresholds T1/T2/T3 per ISO/IEC 14495-1 Annex A.3.
func newContextModel(maxVal, near, reset int) *contextModel {
	cm := &contextModel{MaxVal: maxVal, Reset: reset}

	factor := (min(maxVal, 4095) + 128) / 256
	cm.T1 = clip(factor*(3-2)+2+3*near, near+1, maxVal)
	cm.T2 = clip(factor*(7-3)+3+5*near, cm.T1, maxVal)
	cm.T3 = clip(factor*(21-4)+4+7*near, cm.T2, maxVal)

	const size = 367
	cm.A = make([]int, size)
	cm.B = make([]int, size)
	cm.C = make([]int, size)
	cm.N = make([]int, size)
	for i := 0; i < size; i++ {
		cm.A[i] = 4
		cm.N[i] = 1
	}

	cm.J = runModeJTable
	return cm
}

func (cm *contextModel) quantizeGradient(d int) int {
	switch {
	case d <= -cm.T3:
		return -4
	case d <= -cm.T2:
		return -3
	case d <= -cm.T1:
		return -2
	case d < 0:
		return -1
	case d == 0:
		return 0
	case d < cm.T1:
		return 1
	case d < cm.T2:
		return 2
	case d < cm.T3:
		return 3
	default:
		return 4
	}
}

func (cm *contextModel) computeK(q int) int {
	n := cm.N[q]
	if n == 0 {
		return 0
	}
	a := cm.A[q]
	k := 0
	for (n << uint(k)) < a {
		k++
	}
	return k
}

func (cm *contextModel) updateStats(q, errVal int) {
	cm.B[q] += errVal
	cm.A[q] += abs(errVal)
	if cm.N[q] == cm.Reset {
		cm.A[q] >>= 1
		cm.B[q] >>= 1
		cm.N[q] >>= 1
	}
	cm.N[q]++
	cm.updateBias(q)
}

func (cm *contextModel) updateBias(q int) {
	if cm.B[q] <= -cm.N[q] {
		cm.B[q] += cm.N[q]
		cm.C[q]--
		if cm.B[q] <= -cm.N[q] {
			cm.B[q] += cm.N[q]
			cm.C[q]--
		}
	} else if cm.B[q] > 0 {
		cm.B[q] -= cm.N[q]
		cm.C[q]++
		if cm.B[q] > 0 {
			cm.B[q] -= cm.N[q]
			cm.C[q]++
		}
	}
	cm.C[q] = clip(cm.C[q], -128, 127)
}

// contextIndex computes the context index and sign from the three gradients
// per ISO/IEC 14495-1 Figure A.5: quantize each gradient, normalize the sign
// so the index falls in [0,364], and return the normalizing sign separately.
func (cm *contextModel) contextIndex(d1, d2, d3 int) (index, sign int) {
	q1 := cm.quantizeGradient(d1)
	q2 := cm.quantizeGradient(d2)
	q3 := cm.quantizeGradient(d3)

	sign = 1
	if q1 < 0 || (q1 == 0 && q2 < 0) || (q1 == 0 && q2 == 0 && q3 < 0) {
		q1, q2, q3 = -q1, -q2, -q3
		sign = -1
	}
	return q1*81 + q2*9 + q3, sign
}
