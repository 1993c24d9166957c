package jpegadapter

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEOISourceYieldsDataThenEOIThenEOF(t *testing.T) {
	src := newEOISource([]byte{0x01, 0x02})

	buf := make([]byte, 4)
	n, err := src.Read(buf)
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 0x02}, buf[:n])

	n, err = src.Read(buf)
	require.NoError(t, err)
	require.Equal(t, []byte{0xFF, 0xD9}, buf[:n])

	_, err = src.Read(buf)
	require.ErrorIs(t, err, io.EOF)
}
