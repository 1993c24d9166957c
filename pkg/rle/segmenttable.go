// Package rle decodes the DICOM-style segmented PackBits run-length format
// (DICOM PS3.5 Annex G) into a caller-supplied output buffer, scattering
// bytes across planar or chunky sample layouts per segment.
package rle

import "encoding/binary"

// HeaderSize is the fixed size, in bytes, of the segment offset table that
// prefixes every RLE payload.
const HeaderSize = 64

const maxSegments = 15

// SegmentTable is the parsed 64-byte RLE header: a segment count and up to
// 15 byte offsets into the payload. The offset array is a fixed inline
// array, not a heap allocation — the count is bounded at construction time
// so there is no reason to allocate it, and no release path to get wrong.
type SegmentTable struct {
	count   int
	offsets [maxSegments]int64
	payload []byte
}

// NewSegmentTable parses the header of payload and returns the resulting
// table. payload must be at least HeaderSize bytes.
func NewSegmentTable(payload []byte) (*SegmentTable, error) {
	if len(payload) < HeaderSize {
		return nil, newMalformed("payload shorter than the %d-byte RLE header (%d bytes)", HeaderSize, len(payload))
	}

	n := binary.LittleEndian.Uint32(payload[0:4])
	if n < 1 || n > maxSegments {
		return nil, newMalformed("segment count %d out of range [1,%d]", n, maxSegments)
	}

	t := &SegmentTable{count: int(n), payload: payload}
	for i := 0; i < maxSegments; i++ {
		off := binary.LittleEndian.Uint32(payload[4+4*i : 8+4*i])
		t.offsets[i] = int64(off)
	}
	return t, nil
}

// SegmentCount returns the number of meaningful segments, N.
func (t *SegmentTable) SegmentCount() int {
	return t.count
}

// segmentSpan returns the [start,end) byte range of segment s within the
// payload, per §4.2: length(k) = O[k+1]-O[k] except the last segment, whose
// length is payload_size - O[N-1].
func (t *SegmentTable) segmentSpan(s int) (start, end int64, err error) {
	if s < 0 || s >= t.count {
		return 0, 0, newRange(s, t.count)
	}
	start = t.offsets[s]
	if s == t.count-1 {
		end = int64(len(t.payload))
	} else {
		end = t.offsets[s+1]
	}
	if start < 0 || end < start || end > int64(len(t.payload)) {
		return 0, 0, newMalformed("segment %d has invalid offsets [%d,%d) over payload of %d bytes", s, start, end, len(t.payload))
	}
	return start, end, nil
}
