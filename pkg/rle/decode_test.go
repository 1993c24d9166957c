package rle

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// header builds a 64-byte RLE header for the given segment offsets.
func header(offsets ...uint32) []byte {
	n := len(offsets)
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(n))
	for i, o := range offsets {
		binary.LittleEndian.PutUint32(buf[4+4*i:8+4*i], o)
	}
	return buf
}

func TestDecodeSingleSegmentLiteral(t *testing.T) {
	payload := append(header(HeaderSize), 0x03, 0x0A, 0x0B, 0x0C, 0x0D)
	g := Geometry{Columns: 4, Rows: 1, BytesPerSample: 1, SamplesPerPixel: 1, Planar: 0}
	out := make([]byte, 4)
	require.NoError(t, Decode(payload, g, out))
	assert.Equal(t, []byte{0x0A, 0x0B, 0x0C, 0x0D}, out)
}

func TestDecodeSingleSegmentRepeat(t *testing.T) {
	negThree := int8(-3)
	payload := append(header(HeaderSize), byte(negThree), 0x55)
	g := Geometry{Columns: 4, Rows: 1, BytesPerSample: 1, SamplesPerPixel: 1, Planar: 0}
	out := make([]byte, 4)
	require.NoError(t, Decode(payload, g, out))
	assert.Equal(t, []byte{0x55, 0x55, 0x55, 0x55}, out)
}

func TestDecodeThreeSegmentPlanar(t *testing.T) {
	seg := []byte{0x01, 0x01, 0x02} // literal run of 2: 0x01 0x02
	payload := header(HeaderSize, HeaderSize+uint32(len(seg)), HeaderSize+2*uint32(len(seg)))
	payload = append(payload, seg...)
	payload = append(payload, seg...)
	payload = append(payload, seg...)

	g := Geometry{Columns: 2, Rows: 1, BytesPerSample: 1, SamplesPerPixel: 3, Planar: 1}
	out := make([]byte, 6)
	require.NoError(t, Decode(payload, g, out))
	assert.Equal(t, []byte{0x01, 0x02, 0x01, 0x02, 0x01, 0x02}, out)
}

func TestDecodeThreeSegmentChunky(t *testing.T) {
	seg := []byte{0x01, 0x01, 0x02}
	payload := header(HeaderSize, HeaderSize+uint32(len(seg)), HeaderSize+2*uint32(len(seg)))
	payload = append(payload, seg...)
	payload = append(payload, seg...)
	payload = append(payload, seg...)

	g := Geometry{Columns: 2, Rows: 1, BytesPerSample: 1, SamplesPerPixel: 3, Planar: 0}
	out := make([]byte, 6)
	require.NoError(t, Decode(payload, g, out))
	assert.Equal(t, []byte{0x01, 0x01, 0x01, 0x02, 0x02, 0x02}, out)
}

func TestDecodeNoOpControlByte(t *testing.T) {
	neg128 := int8(-128)
	payload := append(header(HeaderSize), byte(neg128), 0x00, 0x0F)
	g := Geometry{Columns: 1, Rows: 1, BytesPerSample: 1, SamplesPerPixel: 1, Planar: 0}
	out := make([]byte, 1)
	require.NoError(t, Decode(payload, g, out))
	assert.Equal(t, []byte{0x0F}, out)
}

func TestDecodeReplicateRunWritesExactCount(t *testing.T) {
	// control byte -5 must write exactly 6 bytes (-c+1), not 5.
	negFive := int8(-5)
	payload := append(header(HeaderSize), byte(negFive), 0xAA)
	g := Geometry{Columns: 6, Rows: 1, BytesPerSample: 1, SamplesPerPixel: 1, Planar: 0}
	out := make([]byte, 6)
	require.NoError(t, Decode(payload, g, out))
	for _, b := range out {
		assert.Equal(t, byte(0xAA), b)
	}
}

func TestDecodeBlockCopyFastPathMatchesStrideOne(t *testing.T) {
	payload := append(header(HeaderSize), 0x04, 1, 2, 3, 4, 5)
	g := Geometry{Columns: 5, Rows: 1, BytesPerSample: 1, SamplesPerPixel: 1, Planar: 0}
	out := make([]byte, 5)
	require.NoError(t, Decode(payload, g, out))
	assert.Equal(t, []byte{1, 2, 3, 4, 5}, out)
}

func TestDecodeOutputOverrunIsFatal(t *testing.T) {
	payload := append(header(HeaderSize), 0x09, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	g := Geometry{Columns: 4, Rows: 1, BytesPerSample: 1, SamplesPerPixel: 1, Planar: 0}
	out := make([]byte, 4)
	err := Decode(payload, g, out)
	require.Error(t, err)
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, ErrOutputOverrun, de.Kind)
}

func TestNewSegmentTableRejectsShortPayload(t *testing.T) {
	_, err := NewSegmentTable(make([]byte, 10))
	require.Error(t, err)
}

func TestNewSegmentTableRejectsSegmentCountOutOfRange(t *testing.T) {
	buf := header()
	binary.LittleEndian.PutUint32(buf[0:4], 16)
	_, err := NewSegmentTable(buf)
	require.Error(t, err)
}

func TestSegmentSpanRejectsOutOfRangeIndex(t *testing.T) {
	table, err := NewSegmentTable(header(HeaderSize))
	require.NoError(t, err)
	_, _, err = table.segmentSpan(5)
	require.Error(t, err)
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, ErrSegmentIndexOutOfRange, de.Kind)
}
