package jpeg2000

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectFamilyJP2Signature(t *testing.T) {
	require.Equal(t, FamilyJP2, DetectFamily(jp2Signature))
}

func TestDetectFamilyLegacyMagic(t *testing.T) {
	require.Equal(t, FamilyJP2, DetectFamily([]byte{0x0D, 0x0A, 0x87, 0x0A, 0xFF}))
}

func TestDetectFamilyRawCodestream(t *testing.T) {
	require.Equal(t, FamilyJ2K, DetectFamily([]byte{0xFF, 0x4F, 0xFF, 0x51}))
}

func TestDetectFamilyUnknown(t *testing.T) {
	require.Equal(t, FamilyUnknown, DetectFamily([]byte{0x00, 0x01, 0x02, 0x03}))
}

func buildBox(boxType string, payload []byte) []byte {
	length := 8 + len(payload)
	box := []byte{byte(length >> 24), byte(length >> 16), byte(length >> 8), byte(length)}
	box = append(box, []byte(boxType)...)
	box = append(box, payload...)
	return box
}

func TestExtractCodestreamFindsJp2cBox(t *testing.T) {
	codestream := []byte{0xFF, 0x4F, 0xFF, 0x51, 0x01, 0x02, 0x03}
	var data []byte
	data = append(data, buildBox("ftyp", []byte{0x6A, 0x70, 0x32, 0x20})...)
	data = append(data, buildBox("jp2h", []byte{0xAA, 0xBB})...)
	data = append(data, buildBox("jp2c", codestream)...)

	got, err := ExtractCodestream(data)
	require.NoError(t, err)
	require.Equal(t, codestream, got)
}

func TestExtractCodestreamMissingBoxIsError(t *testing.T) {
	data := buildBox("ftyp", []byte{0x6A, 0x70, 0x32, 0x20})
	_, err := ExtractCodestream(data)
	require.ErrorIs(t, err, errNoCodestreamBox)
}
