package jpegmarker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanBitDepthRecoversPrecisionFromSOF(t *testing.T) {
	data := []byte{
		0xFF, 0xD8, // SOI
		0xFF, 0xE0, 0x00, 0x10, // APP0, length 16
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
		0xFF, 0xC0, 0x00, 0x11, 0x08, 0x00, 0x10, 0x00, 0x10,
	}
	assert.Equal(t, 8, ScanBitDepth(data))
}

func TestScanBitDepthNoSOFReturnsZero(t *testing.T) {
	assert.Equal(t, 0, ScanBitDepth([]byte{0xFF, 0xD8, 0xFF, 0xD9}))
}

func TestScanBitDepthEveryProcessMarker(t *testing.T) {
	for _, m := range []byte{0xC0, 0xC1, 0xC2, 0xC3, 0xC5, 0xC6, 0xC7, 0xC9, 0xCA, 0xCB, 0xCD, 0xCE, 0xCF} {
		data := []byte{0xFF, m, 0x00, 0x0B, 12}
		assert.Equal(t, 12, ScanBitDepth(data), "marker 0x%02X", m)
	}
}

func TestScanBitDepthSkipsLengthPrefixedMarkers(t *testing.T) {
	data := []byte{
		0xFF, 0xDB, 0x00, 0x03, 0xAA, // DQT, length 3 (2-byte length field + 1 payload byte)
		0xFF, 0xC1, 0x00, 0x0B, 10,
	}
	assert.Equal(t, 10, ScanBitDepth(data))
}

func TestScanBitDepthSkipsRSTSOIEOI(t *testing.T) {
	data := []byte{0xFF, 0xD8, 0xFF, 0xD0, 0xFF, 0xD9, 0xFF, 0xC0, 0x00, 0x0B, 14}
	assert.Equal(t, 14, ScanBitDepth(data))
}

func TestScanBitDepthHandlesFillByteAndTEM(t *testing.T) {
	data := []byte{0xFF, 0xFF, 0xFF, 0x01, 0xFF, 0xC0, 0x00, 0x0B, 16}
	assert.Equal(t, 16, ScanBitDepth(data))
}

func TestScanBitDepthUnknownMarkerFails(t *testing.T) {
	assert.Equal(t, 0, ScanBitDepth([]byte{0xFF, 0x02, 0x00, 0x00, 0x00}))
}
