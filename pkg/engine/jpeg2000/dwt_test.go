package jpeg2000

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestForward1DInverse1DRoundTrip(t *testing.T) {
	original := []int{10, 20, 15, 30, 5, 25, 40, 12}
	signal := append([]int(nil), original...)
	forward1D(signal)
	inverse1D(signal)
	require.Equal(t, original, signal)
}

func TestForwardInverseMultiLevelRoundTrip(t *testing.T) {
	width, height := 8, 8
	original := make([]int, width*height)
	for i := range original {
		original[i] = (i*37 + 5) % 256
	}
	data := append([]int(nil), original...)

	forwardMultiLevel(data, width, height, 2)
	inverseMultiLevel(data, width, height, 2)
	require.Equal(t, original, data)
}

func TestInverseRCTInPlaceRoundTripsForwardTransform(t *testing.T) {
	r := []int{10, 200, 128}
	g := []int{20, 100, 128}
	b := []int{30, 50, 128}

	y := make([]int, 3)
	cb := make([]int, 3)
	cr := make([]int, 3)
	for i := range r {
		y[i] = (r[i] + 2*g[i] + b[i]) >> 2
		cb[i] = b[i] - g[i]
		cr[i] = r[i] - g[i]
	}

	inverseRCTInPlace(y, cb, cr)
	require.Equal(t, r, y)
	require.Equal(t, g, cb)
	require.Equal(t, b, cr)
}
