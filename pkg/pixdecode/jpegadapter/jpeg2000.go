package jpegadapter

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/dcmcodec/pixeldecode/pkg/engine/jpeg2000"
)

// Jpeg2000Result is the decoded output ready to copy into decoded_buffer.
type Jpeg2000Result struct {
	Columns, Rows, NumComps, Precision int
	Samples                            []byte
}

// DecodeJpeg2000 probes the container family, unwraps a JP2 box if needed,
// decodes the codestream and packs samples per the numcomps/planar rules
// the adapter contract defines. planarConfig selects interleaved (0) vs
// planar (1) output for 3-component tiles.
func DecodeJpeg2000(encoded []byte, planarConfig int) (*Jpeg2000Result, error) {
	codestream := encoded
	switch jpeg2000.DetectFamily(encoded) {
	case jpeg2000.FamilyJP2:
		extracted, err := jpeg2000.ExtractCodestream(encoded)
		if err != nil {
			return nil, fmt.Errorf("jpeg2000: %w", err)
		}
		codestream = extracted
	case jpeg2000.FamilyJ2K:
		// already a bare codestream
	default:
		return nil, fmt.Errorf("jpeg2000: unrecognized container family")
	}

	img, err := jpeg2000.Decode(bytes.NewReader(codestream))
	if err != nil {
		return nil, fmt.Errorf("jpeg2000: decode failed: %w", err)
	}

	depth := (img.Precision + 7) / 8
	if depth < 1 {
		depth = 1
	}
	numPixels := img.Width * img.Height

	samples := packSamples(img, depth, numPixels, planarConfig)

	return &Jpeg2000Result{
		Columns:   img.Width,
		Rows:      img.Height,
		NumComps:  img.NumComps,
		Precision: img.Precision,
		Samples:   samples,
	}, nil
}

// packSamples implements the adapter's per-numcomps/planar copy rules.
// Combinations outside the four enumerated in the contract intentionally
// produce a zero-length result — correctness of the host's declared
// geometry against what the codestream actually contains is left to the
// host, per the adapter's open-question note on unexpected component
// counts.
func packSamples(img *jpeg2000.Image, depth, numPixels, planarConfig int) []byte {
	switch {
	case img.NumComps == 1 && img.Precision <= 8:
		out := make([]byte, numPixels)
		for i, v := range img.Components[0] {
			out[i] = byte(v)
		}
		return out

	case img.NumComps == 1 && img.Precision > 8:
		out := make([]byte, numPixels*2)
		for i, v := range img.Components[0] {
			binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
		}
		return out

	case img.NumComps == 3 && planarConfig == 0:
		out := make([]byte, numPixels*3)
		for i := 0; i < numPixels; i++ {
			out[i*3] = byte(img.Components[0][i])
			out[i*3+1] = byte(img.Components[1][i])
			out[i*3+2] = byte(img.Components[2][i])
		}
		return out

	case img.NumComps == 3 && planarConfig == 1:
		out := make([]byte, numPixels*3)
		for c := 0; c < 3; c++ {
			for i, v := range img.Components[c] {
				out[c*numPixels+i] = byte(v)
			}
		}
		return out

	default:
		return nil
	}
}
