package jpeg2000

import (
	"bufio"
	"io"
)

// byteReader provides buffered, big-endian raw byte access over a
// codestream, mirroring the accessors a marker-segment parser needs.
type byteReader struct {
	r *bufio.Reader
}

func newByteReader(r io.Reader) *byteReader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &byteReader{r: br}
}

func (b *byteReader) ReadByte() (byte, error) { return b.r.ReadByte() }

func (b *byteReader) ReadUint16() (uint16, error) {
	hi, err := b.r.ReadByte()
	if err != nil {
		return 0, err
	}
	lo, err := b.r.ReadByte()
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

func (b *byteReader) ReadUint32() (uint32, error) {
	var v uint32
	for i := 0; i < 4; i++ {
		c, err := b.r.ReadByte()
		if err != nil {
			return 0, err
		}
		v = v<<8 | uint32(c)
	}
	return v, nil
}

func (b *byteReader) ReadBytes(n int) ([]byte, error) {
	data := make([]byte, n)
	_, err := io.ReadFull(b.r, data)
	return data, err
}

func (b *byteReader) Skip(n int) error {
	_, err := b.r.Discard(n)
	return err
}
