package jpegls

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPredictMEDFlatRegion(t *testing.T) {
	// Ra == Rb == Rc: Rc>=max(Ra,Rb) selects min(Ra,Rb), which here also
	// equals Ra+Rb-Rc.
	assert.Equal(t, 10, PredictMED(10, 10, 10))
}

func TestPredictMEDHorizontalEdge(t *testing.T) {
	assert.Equal(t, 5, PredictMED(5, 9, 9)) // Rc>=max(Ra,Rb) -> min(Ra,Rb)
}

func TestPredictMEDVerticalEdge(t *testing.T) {
	assert.Equal(t, 9, PredictMED(9, 5, 1)) // Rc<=min(Ra,Rb) -> max(Ra,Rb)
}

func TestContextModelThresholdsFor8Bit(t *testing.T) {
	cm := newContextModel(255, 0, 64)
	assert.Equal(t, 3, cm.T1)
	assert.Equal(t, 7, cm.T2)
	assert.Equal(t, 21, cm.T3)
}

func TestQuantizeGradientSymmetry(t *testing.T) {
	cm := newContextModel(255, 0, 64)
	assert.Equal(t, 0, cm.quantizeGradient(0))
	assert.Equal(t, -cm.quantizeGradient(5), cm.quantizeGradient(-5))
}

func TestContextIndexIsWithinRange(t *testing.T) {
	cm := newContextModel(255, 0, 64)
	for _, d1 := range []int{-30, -1, 0, 1, 30} {
		for _, d2 := range []int{-30, -1, 0, 1, 30} {
			for _, d3 := range []int{-30, -1, 0, 1, 30} {
				idx, sign := cm.contextIndex(d1, d2, d3)
				assert.GreaterOrEqual(t, idx, 0)
				assert.LessOrEqual(t, idx, 364)
				assert.Contains(t, []int{-1, 1}, sign)
			}
		}
	}
}

func TestComputeKGrowsWithAccumulatedMagnitude(t *testing.T) {
	cm := newContextModel(255, 0, 64)
	cm.A[0] = 4
	cm.N[0] = 1
	k0 := cm.computeK(0)
	cm.A[0] = 4096
	k1 := cm.computeK(0)
	assert.Greater(t, k1, k0)
}
