package pixdecode

// Parameters carries decode options recognized by the JPEG-family adapters.
// The RLE decoder takes none.
type Parameters struct {
	// ConvertColorspaceToRGB is read by the baseline JPEG adapter only. It is
	// an error to set this for signed pixel data (§4.4, §7 kind 5). For
	// unsigned data it has no effect: the adapter performs no colour
	// conversion and returns the samples as the engine decodes them.
	ConvertColorspaceToRGB bool
}
