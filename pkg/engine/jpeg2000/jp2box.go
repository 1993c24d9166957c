package jpeg2000

import (
	"encoding/binary"
	"errors"
)

var errNoCodestreamBox = errors.New("jpeg2000: no jp2c box found in JP2 container")

// jp2Signature is the RFC 3745 / ISO 15444-1 Annex I JP2 signature box.
var jp2Signature = []byte{0x00, 0x00, 0x00, 0x0C, 0x6A, 0x50, 0x20, 0x20, 0x0D, 0x0A, 0x87, 0x0A}

const boxTypeCodestream = "jp2c"

// Family identifies which container format a payload uses, determined from
// its leading bytes (ISO/IEC 15444-1 Annex I box layout vs. the bare
// SOC+SIZ codestream start).
type Family int

const (
	FamilyUnknown Family = iota
	FamilyJP2
	FamilyJ2K
)

// DetectFamily inspects the payload's leading bytes to classify it.
func DetectFamily(data []byte) Family {
	if len(data) >= 12 && string(data[:12]) == string(jp2Signature) {
		return FamilyJP2
	}
	if len(data) >= 4 && data[0] == 0x0D && data[1] == 0x0A && data[2] == 0x87 && data[3] == 0x0A {
		return FamilyJP2
	}
	if len(data) >= 4 && data[0] == 0xFF && data[1] == 0x4F && data[2] == 0xFF && data[3] == 0x51 {
		return FamilyJ2K
	}
	return FamilyUnknown
}

// ExtractCodestream walks a JP2 box sequence looking for the jp2c
// (contiguous codestream) box and returns its raw payload — the bytes a
// raw-J2K Decode call expects (ISO/IEC 15444-1 Annex I).
func ExtractCodestream(data []byte) ([]byte, error) {
	pos := 0
	for pos+8 <= len(data) {
		length := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		boxType := string(data[pos+4 : pos+8])

		headerLen := 8
		switch {
		case length == 1:
			if pos+16 > len(data) {
				return nil, errors.New("jpeg2000: truncated extended-length box header")
			}
			length = int(binary.BigEndian.Uint64(data[pos+8 : pos+16]))
			headerLen = 16
		case length == 0:
			length = len(data) - pos
		}

		if boxType == boxTypeCodestream {
			start := pos + headerLen
			end := pos + length
			if end > len(data) || start > end {
				return nil, errors.New("jpeg2000: jp2c box length out of bounds")
			}
			return data[start:end], nil
		}

		if length <= 0 || pos+length > len(data) {
			return nil, errors.New("jpeg2000: malformed box length while scanning for jp2c")
		}
		pos += length
	}
	return nil, errNoCodestreamBox
}
