package jpegls

import (
	"errors"
	"fmt"
	"io"
)

// Decoder decodes the first JPEG-LS scan of a stream into one plane of
// sample values. Later scans are not decoded, and the scan's interleave mode
// (ILV) is not consulted: for a multi-component image only one plane of
// Width*Height samples is returned.
type Decoder struct {
	br      *bitReader
	Frame   FrameHeader
	scan    ScanHeader
	context *contextModel
}

// Decode reads a JPEG-LS bitstream from r and returns the decoded samples in
// row-major order along with the parsed frame header.
func Decode(r io.Reader) ([]int, FrameHeader, error) {
	d := &Decoder{br: newBitReader(r)}
	samples, err := d.decode()
	return samples, d.Frame, err
}

func (d *Decoder) decode() ([]int, error) {
	if err := d.expectMarker(MarkerSOI); err != nil {
		return nil, err
	}

	for {
		marker, length, err := d.readMarker()
		if err != nil {
			return nil, err
		}
		switch marker {
		case MarkerSOF55:
			if err := d.readSOF(length); err != nil {
				return nil, err
			}
		case MarkerLSE:
			if err := d.br.Discard(length); err != nil {
				return nil, err
			}
		case MarkerSOS:
			if err := d.readSOS(length); err != nil {
				return nil, err
			}
			return d.decodeScan()
		case MarkerEOI:
			return nil, errors.New("jpegls: unexpected EOI before SOS")
		default:
			if err := d.br.Discard(length); err != nil {
				return nil, err
			}
		}
	}
}

func (d *Decoder) expectMarker(want int) error {
	marker, _, err := d.readRawMarker()
	if err != nil {
		return err
	}
	if marker != want {
		return fmt.Errorf("jpegls: expected marker 0x%04X, got 0x%04X", want, marker)
	}
	return nil
}

// readRawMarker reads a bare 2-byte marker with no trailing length field.
func (d *Decoder) readRawMarker() (int, int, error) {
	b1, err := d.br.ReadByte()
	if err != nil {
		return 0, 0, err
	}
	if b1 != 0xFF {
		return 0, 0, fmt.Errorf("jpegls: expected marker prefix 0xFF, got 0x%02X", b1)
	}
	b2, err := d.br.ReadByte()
	if err != nil {
		return 0, 0, err
	}
	return 0xFF00 | int(b2), 0, nil
}

// readMarker reads a 2-byte marker followed by its 2-byte big-endian length
// (inclusive of the length field) and returns the marker plus the remaining
// body length.
func (d *Decoder) readMarker() (int, int, error) {
	marker, _, err := d.readRawMarker()
	if err != nil {
		return 0, 0, err
	}
	l1, err := d.br.ReadByte()
	if err != nil {
		return 0, 0, err
	}
	l2, err := d.br.ReadByte()
	if err != nil {
		return 0, 0, err
	}
	length := int(l1)<<8 | int(l2)
	return marker, length - 2, nil
}

func (d *Decoder) readSOF(n int) error {
	p, err := d.br.ReadByte()
	if err != nil {
		return err
	}
	d.Frame.Precision = int(p)

	h1, _ := d.br.ReadByte()
	h2, err := d.br.ReadByte()
	if err != nil {
		return err
	}
	d.Frame.Height = int(h1)<<8 | int(h2)

	w1, _ := d.br.ReadByte()
	w2, err := d.br.ReadByte()
	if err != nil {
		return err
	}
	d.Frame.Width = int(w1)<<8 | int(w2)

	nf, err := d.br.ReadByte()
	if err != nil {
		return err
	}
	d.Frame.Components = int(nf)

	return d.br.Discard(n - 6)
}

func (d *Decoder) readSOS(n int) error {
	ns, err := d.br.ReadByte()
	if err != nil {
		return err
	}
	d.scan.Components = int(ns)
	if err := d.br.Discard(d.scan.Components * 2); err != nil {
		return err
	}

	near, err := d.br.ReadByte()
	if err != nil {
		return err
	}
	d.scan.Near = int(near)

	ilv, err := d.br.ReadByte()
	if err != nil {
		return err
	}
	d.scan.ILV = int(ilv)

	bits, err := d.br.ReadByte()
	if err != nil {
		return err
	}
	d.scan.Al = int(bits >> 4)
	d.scan.Ah = int(bits & 0xF)
	return nil
}

func isMarkerErr(err error) bool {
	return errors.Is(err, ErrMarker)
}

func (d *Decoder) decodeScan() ([]int, error) {
	w, h := d.Frame.Width, d.Frame.Height
	maxVal := (1 << d.Frame.Precision) - 1
	d.context = newContextModel(maxVal, d.scan.Near, 64)

	out := make([]int, w*h)
	currLine := make([]int, w)
	prevLine := make([]int, w)
	maxValPlus1 := maxVal + 1

	for y := 0; y < h; y++ {
		d.context.RunIndex = 0

		for x := 0; x < w; x++ {
			var Ra, Rb, Rc, Rd int
			if y > 0 {
				Rb = prevLine[x]
				if x > 0 {
					Rc = prevLine[x-1]
				} else {
					Rc = prevLine[0]
				}
				if x < w-1 {
					Rd = prevLine[x+1]
				} else {
					Rd = Rb
				}
			}
			if x > 0 {
				Ra = currLine[x-1]
			} else if y > 0 {
				Ra = prevLine[0]
			}

			D1 := Rd - Rb
			D2 := Rb - Rc
			D3 := Rc - Ra

			if D1 == 0 && D2 == 0 && D3 == 0 {
				err := d.decodeRun(Ra, Rb, currLine, &x, y, w)
				if err != nil {
					if isMarkerErr(err) {
						copy(out[y*w:y*w+w], currLine)
						return out, nil
					}
					return nil, fmt.Errorf("jpegls: run mode failed at x=%d y=%d: %w", x, y, err)
				}
				// decodeRun already advanced x to the next undecoded
				// column; counteract the loop's own increment.
				x--
				continue
			}

			Q, sign := d.context.contextIndex(D1, D2, D3)
			Px := PredictMED(Ra, Rb, Rc)
			Px += sign * d.context.C[Q]
			Px = clip(Px, 0, maxVal)

			k := d.context.computeK(Q)
			mapped, err := d.br.ReadGolomb(k)
			if err != nil {
				if isMarkerErr(err) {
					copy(out[y*w:y*w+x], currLine[:x])
					return out, nil
				}
				return nil, fmt.Errorf("jpegls: golomb decode failed at x=%d y=%d: %w", x, y, err)
			}

			var errVal int
			if mapped&1 == 0 {
				errVal = int(mapped) >> 1
			} else {
				errVal = -(int(mapped) + 1) >> 1
			}
			statsErrVal := errVal
			if sign == -1 {
				errVal = -errVal
			}
			d.context.updateStats(Q, statsErrVal)

			rx := Px + errVal
			if rx < 0 {
				rx += maxValPlus1
			}
			if rx > maxVal {
				rx -= maxValPlus1
			}
			rx = clip(rx, 0, maxVal)

			currLine[x] = rx
		}
		copy(out[y*w:y*w+w], currLine)
		copy(prevLine, currLine)
	}
	return out, nil
}
