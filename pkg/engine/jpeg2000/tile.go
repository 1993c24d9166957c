package jpeg2000

// decodeTile reconstructs every component's coefficient plane for one
// tile: tier-2 packet parsing and EBCOT tier-1 entropy decoding recover
// each code block's quantized coefficients, which are placed into their
// subband's quadrant and then run through the inverse multi-level DWT.
func decodeTile(tileData []byte, numComps, width, height int, cod CODMarker, qcd QCDMarker) ([][]int, error) {
	td := newTileDecoder(numComps, width, height, cod, qcd)
	return td.decode(tileData, numComps)
}
