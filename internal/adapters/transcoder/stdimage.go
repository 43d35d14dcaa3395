package transcoder

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"

	"pixbox/internal/core/domain"

	"github.com/rs/zerolog/log"
)

// StdImage re-encodes images with the standard codecs. The raster surface is
// a transient allocation scoped to a single call.
type StdImage struct{}

func NewStdImage() *StdImage {
	return &StdImage{}
}

// Transcode decodes the source at its native dimensions, redraws it onto a
// fresh surface and re-encodes at the requested quality. Dimensions are
// always preserved; only the entropy-coding quality changes. The result is
// returned as computed even when the output did not get smaller.
func (t *StdImage) Transcode(ctx context.Context, req domain.TranscodeRequest) (domain.TranscodeResult, error) {
	if req.QualityPercent < 1 || req.QualityPercent > 100 {
		return domain.TranscodeResult{}, domain.Faultf(domain.FaultEncode,
			"quality must be between 1 and 100, got %d", req.QualityPercent)
	}

	src, format, err := image.Decode(bytes.NewReader(req.Source.Data))
	if err != nil {
		return domain.TranscodeResult{}, fmt.Errorf("transcode: %w",
			domain.Faultf(domain.FaultDecode, "error decoding source image: %s", err))
	}

	bounds := src.Bounds()
	surface := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(surface, surface.Bounds(), src, bounds.Min, draw.Src)

	if err := ctx.Err(); err != nil {
		return domain.TranscodeResult{}, fmt.Errorf("transcode cancelled: %w", err)
	}

	encoded := new(bytes.Buffer)
	mediaType := targetMediaType(req.Source.MediaType, format)

	switch mediaType {
	case "image/png":
		encoder := png.Encoder{CompressionLevel: png.BestCompression}
		if err := encoder.Encode(encoded, surface); err != nil {
			return domain.TranscodeResult{}, fmt.Errorf("transcode: %w",
				domain.Faultf(domain.FaultEncode, "error encoding png: %s", err))
		}
	default:
		opts := jpeg.Options{Quality: req.QualityPercent}
		if err := jpeg.Encode(encoded, surface, &opts); err != nil {
			return domain.TranscodeResult{}, fmt.Errorf("transcode: %w",
				domain.Faultf(domain.FaultEncode, "error encoding jpeg: %s", err))
		}
	}

	originalSize := len(req.Source.Data)
	encodedSize := encoded.Len()

	log.Debug().
		Int("originalBytes", originalSize).
		Int("encodedBytes", encodedSize).
		Int("quality", req.QualityPercent).
		Str("mediaType", mediaType).
		Msg("transcoded image")

	return domain.TranscodeResult{
		Encoded: domain.ImageAsset{
			Name:      "compressed_" + req.Source.Name,
			MediaType: mediaType,
			Data:      encoded.Bytes(),
		},
		OriginalByteSize: originalSize,
		EncodedByteSize:  encodedSize,
		RatioPercent:     domain.CompressionRatio(originalSize, encodedSize),
	}, nil
}

// targetMediaType keeps the source type when it maps to a supported encoder,
// falling back to jpeg like a canvas toBlob default.
func targetMediaType(declared, decodedFormat string) string {
	switch declared {
	case "image/png", "image/jpeg":
		return declared
	}

	switch decodedFormat {
	case "png":
		return "image/png"
	default:
		return "image/jpeg"
	}
}
