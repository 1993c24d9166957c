package pixdecode

import (
	"errors"

	"github.com/dcmcodec/pixeldecode/pkg/jpegmarker"
	"github.com/dcmcodec/pixeldecode/pkg/pixdecode/jpegadapter"
	"github.com/dcmcodec/pixeldecode/pkg/rle"
)

// DecodeRle decodes ctx's encoded_buffer as a DICOM PackBits/segmented RLE
// stream into decoded_buffer, scattering samples per bits_allocated,
// samples_per_pixel and planar_configuration.
func DecodeRle(ctx *Context) error {
	size := ctx.NativeSize()
	ctx.DecodedBuffer.Reset(size)

	geometry := rle.Geometry{
		Columns:         ctx.Columns,
		Rows:            ctx.Rows,
		BytesPerSample:  ctx.BytesPerSample(),
		SamplesPerPixel: ctx.SamplesPerPixel,
		Planar:          int(ctx.PlanarConfiguration),
	}

	if err := rle.Decode(ctx.EncodedBuffer.Bytes(), geometry, ctx.DecodedBuffer.Bytes()); err != nil {
		ctx.diagnostics().Warn("rle decode failed", "error", err.Error())
		return newErr(kindForRLEError(err), "rle", err)
	}
	return nil
}

// kindForRLEError maps the rle package's own error taxonomy onto the
// dispatcher's Kind values so callers see one consistent classification
// regardless of which decoder raised it.
func kindForRLEError(err error) Kind {
	var de *rle.DecodeError
	if errors.As(err, &de) {
		switch de.Kind {
		case rle.ErrOutputOverrun:
			return KindOutputOverrun
		case rle.ErrSegmentIndexOutOfRange:
			return KindSegmentIndexOutOfRange
		}
	}
	return KindMalformedInput
}

// DecodeJpeg checks the scanned SOF bit depth (falling back to bits_stored
// when no SOF marker is present) and rejects 0 or anything above 16; every
// accepted depth is decoded by the same baseline lossless-JPEG engine.
func DecodeJpeg(ctx *Context, params *Parameters) error {
	depth := jpegmarker.ScanBitDepth(ctx.EncodedBuffer.Bytes())
	if depth == 0 {
		depth = ctx.BitsStored
	}
	if depth == 0 {
		return newErrf(KindUnrecoverableBitDepth, "baseline", "bit depth is 0")
	}
	if depth > 16 {
		return newErrf(KindUnrecoverableBitDepth, "baseline", "unsupported Jpeg bit depth %d", depth)
	}

	result, err := jpegadapter.DecodeBaseline(jpegadapter.BaselineRequest{
		Encoded:                ctx.EncodedBuffer.Bytes(),
		BitsAllocated:          ctx.BitsAllocated,
		PixelRepresentationOne: ctx.PixelRepresentation == Signed,
		ConvertColorspaceToRGB: params.ConvertColorspaceToRGB,
	})
	if err != nil {
		ctx.diagnostics().Warn("baseline jpeg decode failed", "error", err.Error())
		if params.ConvertColorspaceToRGB && ctx.PixelRepresentation == Signed {
			return newErr(KindUnsupportedColorConversion, "baseline", err)
		}
		return newErr(KindEngineFailure, "baseline", err)
	}

	ctx.DecodedBuffer.SetBytes(result.Samples)
	return nil
}

// DecodeJpegLs decodes ctx's encoded_buffer as a JPEG-LS bitstream.
func DecodeJpegLs(ctx *Context, params *Parameters) error {
	result, err := jpegadapter.DecodeJpegLs(ctx.EncodedBuffer.Bytes())
	if err != nil {
		ctx.diagnostics().Warn("jpegls decode failed", "error", err.Error())
		return newErr(KindEngineFailure, "jpegls", err)
	}
	ctx.DecodedBuffer.SetBytes(result.Samples)
	return nil
}

// DecodeJpeg2000 decodes ctx's encoded_buffer as a JP2-boxed or bare J2K
// codestream.
func DecodeJpeg2000(ctx *Context, params *Parameters) error {
	result, err := jpegadapter.DecodeJpeg2000(ctx.EncodedBuffer.Bytes(), int(ctx.PlanarConfiguration))
	if err != nil {
		ctx.diagnostics().Warn("jpeg2000 decode failed", "error", err.Error())
		return newErr(KindEngineFailure, "jpeg2000", err)
	}
	if result.NumComps != 1 && result.NumComps != 3 {
		ctx.diagnostics().Warn("jpeg2000: unsupported component geometry, no samples copied",
			"num_comps", result.NumComps)
	}
	ctx.DecodedBuffer.SetBytes(result.Samples)
	return nil
}
