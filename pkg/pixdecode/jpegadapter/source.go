// Package jpegadapter wraps the three JPEG-family engines (baseline
// lossless JPEG, JPEG-LS, JPEG 2000) behind the adapter contract shared
// decode entry points: size the output buffer, drive header/decode, copy
// samples in.
package jpegadapter

import "io"

// eoiSource wraps an encoded payload and, once the real bytes are
// exhausted, synthesizes a single two-byte EOI marker (FF D9) before
// reporting io.EOF — many JPEG-family bitstream readers look one marker
// past the last scan byte to detect end of data, and a bare in-memory
// buffer has no such terminator unless the caller adds one.
type eoiSource struct {
	data    []byte
	pos     int
	eoiSent bool
}

func newEOISource(data []byte) *eoiSource {
	return &eoiSource{data: data}
}

func (s *eoiSource) Read(p []byte) (int, error) {
	if s.pos < len(s.data) {
		n := copy(p, s.data[s.pos:])
		s.pos += n
		return n, nil
	}
	if !s.eoiSent {
		s.eoiSent = true
		n := copy(p, []byte{0xFF, 0xD9})
		return n, nil
	}
	return 0, io.EOF
}
