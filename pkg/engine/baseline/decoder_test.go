package baseline

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildMinimalStream assembles a one-component, 2x1, 8-bit lossless JPEG
// with a single-symbol Huffman table (SSSS=0 at code "0"), so every decoded
// difference is zero and every sample equals its prediction.
func buildMinimalStream() []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0xFF, 0xD8}) // SOI

	// SOF3: precision=8, height=1, width=2, 1 component
	sof := []byte{0xFF, 0xC3, 0x00, 0x0B, 0x08, 0x00, 0x01, 0x00, 0x02, 0x01, 0x01, 0x00, 0x00}
	buf.Write(sof)

	// DHT: one DC table (id 0), bits[1]=1, value=0
	dht := []byte{0xFF, 0xC4, 0x00, 0x14, 0x00}
	bits := make([]byte, 16)
	bits[0] = 1
	dht = append(dht, bits...)
	dht = append(dht, 0x00) // HUFFVAL: symbol 0
	buf.Write(dht)

	// SOS: 1 component, selector 1 -> table 0, predictor 1, Se=0, Ah/Al=0
	sos := []byte{0xFF, 0xDA, 0x00, 0x08, 0x01, 0x01, 0x00, 0x01, 0x00, 0x00}
	buf.Write(sos)

	// Entropy data: two Huffman codes "0" back to back -> 0b00000000
	buf.WriteByte(0x00)
	buf.Write([]byte{0xFF, 0xD9}) // EOI
	return buf.Bytes()
}

func TestDecodeMinimalLosslessStream(t *testing.T) {
	samples, frame, err := Decode(bytes.NewReader(buildMinimalStream()))
	require.NoError(t, err)
	require.Equal(t, 8, frame.Precision)
	require.Equal(t, 2, frame.Width)
	require.Equal(t, 1, frame.Height)
	require.Equal(t, 1, frame.Components)
	require.Equal(t, []int{128, 128}, samples)
}

func TestPredictFirstSampleIsHalfRange(t *testing.T) {
	got := predict(make([]int, 4), make([]int, 4), 0, 0, 1, 8)
	require.Equal(t, 128, got)
}

func TestPredictPredictorSelection(t *testing.T) {
	curr := []int{10, 0, 0}
	prev := []int{5, 20, 0}
	// x=1,y=1 so Ra=curr[0]=10, Rb=prev[1]=20, Rc=prev[0]=5
	require.Equal(t, 10, predict(curr, prev, 1, 1, 1, 8))
	require.Equal(t, 20, predict(curr, prev, 1, 1, 2, 8))
	require.Equal(t, 5, predict(curr, prev, 1, 1, 3, 8))
	require.Equal(t, 25, predict(curr, prev, 1, 1, 4, 8))
}

func TestExtendSignExtension(t *testing.T) {
	require.Equal(t, 0, extend(0, 0))
	require.Equal(t, -1, extend(0, 1))
	require.Equal(t, 1, extend(1, 1))
	require.Equal(t, -3, extend(0, 2))
	require.Equal(t, 3, extend(3, 2))
}
