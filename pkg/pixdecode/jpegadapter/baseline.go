package jpegadapter

import (
	"encoding/binary"
	"fmt"

	"github.com/dcmcodec/pixeldecode/pkg/engine/baseline"
)

// BaselineRequest carries the fields the baseline adapter needs from the
// host context/parameters without importing the pixdecode package (that
// package is this one's caller, so importing it back would cycle).
type BaselineRequest struct {
	Encoded                []byte
	BitsAllocated          int
	PixelRepresentationOne bool // true when pixel_representation == 1 (signed)
	ConvertColorspaceToRGB bool
}

// BaselineResult is the decoded output ready to copy into decoded_buffer.
type BaselineResult struct {
	Width, Height, Components int
	Samples                   []byte
}

// DecodeBaseline drives the shared lossless-JPEG engine and packs its
// interleaved int samples into the byte layout decoded_buffer expects
// (§4.4's "size decoded_buffer to width*height*ceil(bits_allocated/8)*
// num_components" plus little-endian sample packing above 8 bits).
func DecodeBaseline(req BaselineRequest) (*BaselineResult, error) {
	if req.ConvertColorspaceToRGB && req.PixelRepresentationOne {
		return nil, fmt.Errorf("baseline: cannot convert signed pixel data")
	}

	samples, frame, err := baseline.Decode(newEOISource(req.Encoded))
	if err != nil {
		return nil, fmt.Errorf("baseline: decode failed: %w", err)
	}

	bytesPerSample := (req.BitsAllocated + 7) / 8
	if bytesPerSample < 1 {
		bytesPerSample = 1
	}

	out := make([]byte, len(samples)*bytesPerSample)
	if bytesPerSample == 1 {
		for i, v := range samples {
			out[i] = byte(v)
		}
	} else {
		for i, v := range samples {
			binary.LittleEndian.PutUint16(out[i*bytesPerSample:], uint16(v))
		}
	}

	return &BaselineResult{
		Width:      frame.Width,
		Height:     frame.Height,
		Components: frame.Components,
		Samples:    out,
	}, nil
}
