package baseline

import (
	"errors"
	"fmt"
	"io"
)

// Decoder decodes a JPEG Lossless (SOF3) bitstream into interleaved
// per-pixel samples: samples[ (y*Width+x)*Components + c ].
type Decoder struct {
	r io.Reader

	Frame FrameHeader

	compInfo []componentInfo
	dcTables [4]*huffmanTable

	predictor       int
	pointTrans      int
	restartInterval int
}

// Decode reads a JPEG Lossless bitstream from r and returns interleaved
// samples plus the parsed frame header. The sample precision is taken from
// the SOF3 header and reported in FrameHeader.Precision.
func Decode(r io.Reader) ([]int, FrameHeader, error) {
	d := &Decoder{r: r}
	samples, err := d.decode()
	return samples, d.Frame, err
}

func (d *Decoder) decode() ([]int, error) {
	if err := d.expectMarker(markerSOI); err != nil {
		return nil, fmt.Errorf("baseline: expected SOI: %w", err)
	}

	for {
		marker, err := d.readMarker()
		if err != nil {
			return nil, err
		}
		switch marker {
		case markerSOF3:
			if err := d.readSOF(); err != nil {
				return nil, err
			}
		case markerDHT:
			if err := d.readDHT(); err != nil {
				return nil, err
			}
		case markerDRI:
			if err := d.readDRI(); err != nil {
				return nil, err
			}
		case markerSOS:
			return d.decodeScan()
		case markerEOI:
			return nil, errors.New("baseline: unexpected EOI before scan data")
		default:
			if isSOFMarker(marker) {
				return nil, fmt.Errorf("baseline: unsupported SOF marker 0x%04X", marker)
			}
			if err := d.skipMarkerData(); err != nil {
				return nil, err
			}
		}
	}
}

func (d *Decoder) expectMarker(want int) error {
	var buf [2]byte
	if _, err := io.ReadFull(d.r, buf[:]); err != nil {
		return err
	}
	got := int(buf[0])<<8 | int(buf[1])
	if got != want {
		return fmt.Errorf("baseline: expected marker 0x%04X, got 0x%04X", want, got)
	}
	return nil
}

func (d *Decoder) readMarker() (int, error) {
	var buf [2]byte
	if _, err := io.ReadFull(d.r, buf[:]); err != nil {
		return 0, err
	}
	if buf[0] != 0xFF {
		return 0, fmt.Errorf("baseline: expected marker prefix, got 0x%02X", buf[0])
	}
	for buf[1] == 0xFF {
		if _, err := io.ReadFull(d.r, buf[1:]); err != nil {
			return 0, err
		}
	}
	return int(buf[0])<<8 | int(buf[1]), nil
}

func (d *Decoder) skipMarkerData() error {
	var lenBuf [2]byte
	if _, err := io.ReadFull(d.r, lenBuf[:]); err != nil {
		return err
	}
	n := int(lenBuf[0])<<8 | int(lenBuf[1]) - 2
	if n > 0 {
		_, err := io.CopyN(io.Discard, d.r, int64(n))
		return err
	}
	return nil
}

func (d *Decoder) readSOF() error {
	var lenBuf [2]byte
	if _, err := io.ReadFull(d.r, lenBuf[:]); err != nil {
		return err
	}
	n := int(lenBuf[0])<<8 | int(lenBuf[1]) - 2
	data := make([]byte, n)
	if _, err := io.ReadFull(d.r, data); err != nil {
		return err
	}
	if len(data) < 6 {
		return errors.New("baseline: SOF3 segment too short")
	}

	d.Frame.Precision = int(data[0])
	d.Frame.Height = int(data[1])<<8 | int(data[2])
	d.Frame.Width = int(data[3])<<8 | int(data[4])
	d.Frame.Components = int(data[5])

	d.compInfo = make([]componentInfo, d.Frame.Components)
	for i := 0; i < d.Frame.Components; i++ {
		off := 6 + i*3
		if off+2 >= len(data) {
			return errors.New("baseline: SOF3 segment truncated in component list")
		}
		d.compInfo[i] = componentInfo{
			id:        int(data[off]),
			hSampling: int(data[off+1]) >> 4,
			vSampling: int(data[off+1]) & 0x0F,
		}
	}
	return nil
}

func (d *Decoder) readDHT() error {
	var lenBuf [2]byte
	if _, err := io.ReadFull(d.r, lenBuf[:]); err != nil {
		return err
	}
	n := int(lenBuf[0])<<8 | int(lenBuf[1]) - 2
	data := make([]byte, n)
	if _, err := io.ReadFull(d.r, data); err != nil {
		return err
	}

	off := 0
	for off < len(data) {
		tableInfo := data[off]
		class := int(tableInfo >> 4)
		id := int(tableInfo & 0x0F)
		off++

		if class != 0 {
			var count int
			for i := 0; i < 16; i++ {
				count += int(data[off+i])
			}
			off += 16 + count
			continue
		}
		if id >= 4 {
			return fmt.Errorf("baseline: invalid Huffman table id %d", id)
		}

		ht := &huffmanTable{}
		var total int
		for i := 0; i < 16; i++ {
			ht.bits[i+1] = int(data[off+i])
			total += ht.bits[i+1]
		}
		off += 16

		ht.values = make([]byte, total)
		copy(ht.values, data[off:off+total])
		off += total

		generateHuffmanCodes(ht)
		d.dcTables[id] = ht
	}
	return nil
}

func (d *Decoder) readDRI() error {
	var buf [4]byte
	if _, err := io.ReadFull(d.r, buf[:]); err != nil {
		return err
	}
	d.restartInterval = int(buf[2])<<8 | int(buf[3])
	return nil
}

func (d *Decoder) readSOS() error {
	var lenBuf [2]byte
	if _, err := io.ReadFull(d.r, lenBuf[:]); err != nil {
		return err
	}
	n := int(lenBuf[0])<<8 | int(lenBuf[1]) - 2
	data := make([]byte, n)
	if _, err := io.ReadFull(d.r, data); err != nil {
		return err
	}

	ns := int(data[0])
	off := 1
	for i := 0; i < ns; i++ {
		selector := int(data[off])
		tableMapping := int(data[off+1])
		off += 2
		for j := range d.compInfo {
			if d.compInfo[j].id == selector {
				d.compInfo[j].tableIndex = tableMapping >> 4
				break
			}
		}
	}

	d.predictor = int(data[off])
	off += 2 // Ss, Se (Se unused in lossless)
	d.pointTrans = int(data[off]) & 0x0F
	return nil
}
