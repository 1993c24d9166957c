package baseline

import (
	"errors"
	"fmt"
	"io"
)

// decodeScan walks the entropy-coded segment and returns per-pixel samples
// interleaved as samples[(y*Width+x)*Components+c], one predictive decode
// per component per pixel (ITU-T T.81 Annex H.1). Restart markers reset
// every component's left/above-left prediction context.
func (d *Decoder) decodeScan() ([]int, error) {
	if err := d.readSOS(); err != nil {
		return nil, err
	}

	w, h, nc := d.Frame.Width, d.Frame.Height, d.Frame.Components
	if nc == 0 {
		nc = 1
	}
	maxVal := (1 << uint(d.Frame.Precision)) - 1

	br := newBitReader(d.r)
	out := make([]int, w*h*nc)
	prevRow := make([][]int, nc)
	currRow := make([][]int, nc)
	for c := 0; c < nc; c++ {
		prevRow[c] = make([]int, w)
		currRow[c] = make([]int, w)
	}

	mcuCount := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if d.restartInterval > 0 && mcuCount > 0 && mcuCount%d.restartInterval == 0 {
				br.alignToByte()
				b1, _ := br.readByte()
				b2, _ := br.readByte()
				_ = b1
				_ = b2
				for c := 0; c < nc; c++ {
					for i := range prevRow[c] {
						prevRow[c][i] = 0
					}
				}
			}

			for c := 0; c < nc; c++ {
				tableIdx := 0
				if c < len(d.compInfo) {
					tableIdx = d.compInfo[c].tableIndex
				}
				ht := d.dcTables[tableIdx]
				if ht == nil {
					return nil, errors.New("baseline: missing Huffman table for component")
				}

				ssss, err := decodeHuffman(br, ht)
				if err != nil {
					if err == io.EOF {
						return d.fillPartial(out, w, h, nc, y, x), nil
					}
					return nil, fmt.Errorf("baseline: huffman decode failed at x=%d y=%d c=%d: %w", x, y, c, err)
				}

				var diff int
				if ssss > 0 {
					bits, err := br.readBits(ssss)
					if err != nil {
						if err == io.EOF {
							return d.fillPartial(out, w, h, nc, y, x), nil
						}
						return nil, err
					}
					diff = extend(bits, ssss)
				}

				pred := predict(currRow[c], prevRow[c], x, y, d.predictor, d.Frame.Precision)
				if d.pointTrans > 0 {
					diff <<= uint(d.pointTrans)
				}
				val := (pred + diff) & maxVal
				currRow[c][x] = val
				out[(y*w+x)*nc+c] = val
			}
			mcuCount++
		}
		for c := 0; c < nc; c++ {
			copy(prevRow[c], currRow[c])
		}
	}
	return out, nil
}

func (d *Decoder) fillPartial(out []int, w, h, nc, y, x int) []int {
	for i := (y*w + x) * nc; i < len(out); i++ {
		if i >= nc {
			out[i] = out[i-nc]
		}
	}
	return out
}

func (br *bitReader) readByte() (byte, error) {
	v, err := br.readBits(8)
	return byte(v), err
}

// predict applies the ITU-T T.81 Table H.1 predictor selection; the first
// row/column fall back to the left/above neighbor (or half-range for the
// very first sample) regardless of the selected predictor, per Annex H.2.
func predict(currRow, prevRow []int, x, y, predictor, precision int) int {
	var Ra, Rb, Rc int
	if x > 0 {
		Ra = currRow[x-1]
	}
	if y > 0 {
		Rb = prevRow[x]
		if x > 0 {
			Rc = prevRow[x-1]
		}
	}

	if y == 0 && x == 0 {
		return 1 << uint(precision-1)
	}
	if y == 0 {
		return Ra
	}
	if x == 0 {
		return Rb
	}

	switch predictor {
	case 0:
		return 0
	case 1:
		return Ra
	case 2:
		return Rb
	case 3:
		return Rc
	case 4:
		return Ra + Rb - Rc
	case 5:
		return Ra + (Rb-Rc)/2
	case 6:
		return Rb + (Ra-Rc)/2
	case 7:
		return (Ra + Rb) / 2
	default:
		return Ra
	}
}
