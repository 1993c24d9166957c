package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/dcmcodec/pixeldecode/pkg/pixdecode"
	"github.com/spf13/cobra"
)

// geometry mirrors the subset of pixdecode.Context a host would normally
// populate from a DICOM dataset's pixel-data-adjacent attributes. The CLI
// reads it from a JSON sidecar since it has no dataset parser of its own.
type geometry struct {
	Columns                   int    `json:"columns"`
	Rows                      int    `json:"rows"`
	BitsAllocated             int    `json:"bits_allocated"`
	BitsStored                int    `json:"bits_stored"`
	SamplesPerPixel           int    `json:"samples_per_pixel"`
	PixelRepresentation       int    `json:"pixel_representation"`
	PlanarConfiguration       int    `json:"planar_configuration"`
	PhotometricInterpretation string `json:"photometric_interpretation"`
}

func (g geometry) toContext() *pixdecode.Context {
	return &pixdecode.Context{
		Columns:             g.Columns,
		Rows:                g.Rows,
		BitsAllocated:       g.BitsAllocated,
		BitsStored:          g.BitsStored,
		SamplesPerPixel:     g.SamplesPerPixel,
		PixelRepresentation: pixdecode.PixelRepresentation(g.PixelRepresentation),
		PlanarConfiguration: pixdecode.PlanarConfiguration(g.PlanarConfiguration),
	}
}

// NewDecodeCmd decodes a single frame of encoded pixel data read from a
// file against geometry described by a JSON sidecar, writing the native
// decoded bytes to stdout (or --out).
func NewDecodeCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "decode one frame of pixel data",
		RunE: func(cmd *cobra.Command, args []string) error {
			transferSyntax, _ := cmd.Flags().GetString("transfer-syntax")
			inPath, _ := cmd.Flags().GetString("in")
			metaPath, _ := cmd.Flags().GetString("meta")
			outPath, _ := cmd.Flags().GetString("out")
			convertToRGB, _ := cmd.Flags().GetBool("convert-rgb")

			encoded, err := os.ReadFile(inPath)
			if err != nil {
				return fmt.Errorf("reading encoded payload: %w", err)
			}
			metaRaw, err := os.ReadFile(metaPath)
			if err != nil {
				return fmt.Errorf("reading geometry sidecar: %w", err)
			}
			var g geometry
			if err := json.Unmarshal(metaRaw, &g); err != nil {
				return fmt.Errorf("parsing geometry sidecar: %w", err)
			}

			dctx := g.toContext()
			dctx.EncodedBuffer.SetBytes(encoded)
			params := &pixdecode.Parameters{ConvertColorspaceToRGB: convertToRGB}

			if err := decodeByTransferSyntax(dctx, params, transferSyntax); err != nil {
				return err
			}

			out := dctx.DecodedBuffer.Bytes()
			if outPath == "" || outPath == "-" {
				_, err = os.Stdout.Write(out)
				return err
			}
			return os.WriteFile(outPath, out, 0o644)
		},
	}
	pf := cmd.Flags()
	pf.String("transfer-syntax", "rle", "codec to decode with: rle|baseline-jpeg|jpegls|jpeg2000")
	pf.String("in", "", "path to the encoded frame payload")
	pf.String("meta", "", "path to a JSON sidecar describing frame geometry")
	pf.String("out", "-", "path to write decoded bytes to (- for stdout)")
	pf.Bool("convert-rgb", false, "baseline JPEG only: reject signed pixel data (no colour conversion is applied)")
	return cmd
}

func decodeByTransferSyntax(dctx *pixdecode.Context, params *pixdecode.Parameters, transferSyntax string) error {
	switch transferSyntax {
	case "rle":
		return pixdecode.DecodeRle(dctx)
	case "baseline-jpeg":
		return pixdecode.DecodeJpeg(dctx, params)
	case "jpegls":
		return pixdecode.DecodeJpegLs(dctx, params)
	case "jpeg2000":
		return pixdecode.DecodeJpeg2000(dctx, params)
	default:
		return fmt.Errorf("unknown transfer syntax %q", transferSyntax)
	}
}
