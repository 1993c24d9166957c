package rle

// Decode parses the RLE header in payload and scatters every segment into
// out according to g, per §4.2. out must already be sized to
// g.pixelCount()*g.BytesPerSample*g.SamplesPerPixel; Decode never resizes
// it.
func Decode(payload []byte, g Geometry, out []byte) error {
	table, err := NewSegmentTable(payload)
	if err != nil {
		return err
	}
	for s := 0; s < table.SegmentCount(); s++ {
		start, stride := segmentPlacement(s, g)
		if err := table.decodeSegment(s, out, start, stride); err != nil {
			return err
		}
	}
	return nil
}

// decodeSegment decodes segment s's PackBits body into out, writing the
// first byte at out[start] and every subsequent byte stride further along.
func (t *SegmentTable) decodeSegment(s int, out []byte, start, stride int) error {
	segStart, segEnd, err := t.segmentSpan(s)
	if err != nil {
		return err
	}
	body := t.payload[segStart:segEnd]

	pos := start
	i := 0
	write := func(b byte) error {
		if pos < 0 || pos >= len(out) {
			return newOverrun("segment %d write position %d outside output buffer of %d bytes", s, pos, len(out))
		}
		out[pos] = b
		pos += stride
		return nil
	}

	for i < len(body) {
		c := int8(body[i])
		i++

		switch {
		case c == -128:
			// no-op
		case c >= 0:
			count := int(c) + 1
			if i+count > len(body) {
				return newMalformed("segment %d literal run truncated: need %d bytes, have %d", s, count, len(body)-i)
			}
			for k := 0; k < count; k++ {
				if err := write(body[i+k]); err != nil {
					return err
				}
			}
			i += count
		default:
			// Replicate run: write -c+1 copies of the next byte, per the
			// PackBits rule (not -c, which is off by one).
			if i >= len(body) {
				return newMalformed("segment %d replicate run missing repeated byte", s)
			}
			count := int(-c) + 1
			val := body[i]
			i++
			for k := 0; k < count; k++ {
				if err := write(val); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
