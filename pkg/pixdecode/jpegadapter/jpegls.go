package jpegadapter

import (
	"encoding/binary"
	"fmt"

	"github.com/dcmcodec/pixeldecode/pkg/engine/jpegls"
)

// JpegLsResult is the decoded output ready to copy into decoded_buffer.
type JpegLsResult struct {
	Width, Height, Components int
	Samples                   []byte
}

// DecodeJpegLs drives the JPEG-LS engine and packs samples byte-per-sample
// (<=8 bit precision) or little-endian 16-bit (>8 bit precision).
func DecodeJpegLs(encoded []byte) (*JpegLsResult, error) {
	samples, frame, err := jpegls.Decode(newEOISource(encoded))
	if err != nil {
		return nil, fmt.Errorf("jpegls: decode failed: %w", err)
	}

	bytesPerSample := 1
	if frame.Precision > 8 {
		bytesPerSample = 2
	}

	out := make([]byte, len(samples)*bytesPerSample)
	if bytesPerSample == 1 {
		for i, v := range samples {
			out[i] = byte(v)
		}
	} else {
		for i, v := range samples {
			binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
		}
	}

	components := frame.Components
	if components == 0 {
		components = 1
	}

	return &JpegLsResult{
		Width:      frame.Width,
		Height:     frame.Height,
		Components: components,
		Samples:    out,
	}, nil
}
