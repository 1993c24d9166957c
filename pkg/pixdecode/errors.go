package pixdecode

import (
	"errors"
	"fmt"
)

// Kind classifies a decode failure into one of the six fatal categories.
// Every failure the dispatcher returns wraps one of these sentinels so a
// caller can match on kind with errors.Is without parsing message text.
type Kind int

const (
	// KindMalformedInput covers a literal or repeat run that would read past
	// the encoded payload, or a JPEG marker scan that ran off the end of the
	// stream.
	KindMalformedInput Kind = iota
	// KindOutputOverrun covers a write that would exceed DecodedBuffer's size.
	KindOutputOverrun
	// KindSegmentIndexOutOfRange covers an RLE segment index outside
	// [0, segment_count).
	KindSegmentIndexOutOfRange
	// KindUnrecoverableBitDepth covers a JPEG scan returning 0 with
	// BitsStored also 0, or a scanned/declared bit depth over 16.
	KindUnrecoverableBitDepth
	// KindUnsupportedColorConversion covers ConvertColorspaceToRGB requested
	// against signed pixel data.
	KindUnsupportedColorConversion
	// KindEngineFailure covers any non-OK return from a codec engine call.
	KindEngineFailure
)

func (k Kind) String() string {
	switch k {
	case KindMalformedInput:
		return "malformed_input"
	case KindOutputOverrun:
		return "output_overrun"
	case KindSegmentIndexOutOfRange:
		return "segment_index_out_of_range"
	case KindUnrecoverableBitDepth:
		return "unrecoverable_bit_depth"
	case KindUnsupportedColorConversion:
		return "unsupported_color_conversion"
	case KindEngineFailure:
		return "engine_failure"
	default:
		return "unknown"
	}
}

var (
	errMalformedInput            = errors.New("malformed input")
	errOutputOverrun              = errors.New("output buffer overrun")
	errSegmentIndexOutOfRange      = errors.New("segment index out of range")
	errUnrecoverableBitDepth       = errors.New("unrecoverable bit depth")
	errUnsupportedColorConversion  = errors.New("unsupported color-conversion combination")
	errEngineFailure               = errors.New("codec engine reported failure")
)

func sentinelFor(k Kind) error {
	switch k {
	case KindMalformedInput:
		return errMalformedInput
	case KindOutputOverrun:
		return errOutputOverrun
	case KindSegmentIndexOutOfRange:
		return errSegmentIndexOutOfRange
	case KindUnrecoverableBitDepth:
		return errUnrecoverableBitDepth
	case KindUnsupportedColorConversion:
		return errUnsupportedColorConversion
	default:
		return errEngineFailure
	}
}

// DecodeError is the concrete error type every dispatcher entry point
// returns on failure. Component names the adapter or decoder that raised it
// (e.g. "rle", "baseline", "jpeg2000").
type DecodeError struct {
	Kind      Kind
	Component string
	Err       error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Component, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Component, e.Kind)
}

func (e *DecodeError) Unwrap() error {
	return sentinelFor(e.Kind)
}

// newErr constructs a DecodeError, wrapping cause (which may be nil).
func newErr(kind Kind, component string, cause error) *DecodeError {
	return &DecodeError{Kind: kind, Component: component, Err: cause}
}

// newErrf is newErr with a formatted cause message.
func newErrf(kind Kind, component, format string, args ...any) *DecodeError {
	return newErr(kind, component, fmt.Errorf(format, args...))
}
