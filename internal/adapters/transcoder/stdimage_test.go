package transcoder

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"pixbox/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gradientJPEG renders a noisy gradient so the jpeg quality setting has a
// visible effect on the encoded size.
func gradientJPEG(t *testing.T, width, height, quality int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(x * 7 % 256),
				G: uint8(y * 13 % 256),
				B: uint8((x ^ y) % 256),
				A: 255,
			})
		}
	}

	buf := new(bytes.Buffer)
	require.NoError(t, jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}))
	return buf.Bytes()
}

func TestTranscodePreservesDimensions(t *testing.T) {
	source := domain.ImageAsset{
		Name:      "photo.jpg",
		MediaType: "image/jpeg",
		Data:      gradientJPEG(t, 1000, 1000, 95),
	}

	result, err := NewStdImage().Transcode(t.Context(), domain.TranscodeRequest{
		Source:         source,
		QualityPercent: 70,
	})
	require.NoError(t, err)

	decoded, format, err := image.Decode(bytes.NewReader(result.Encoded.Data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 1000, decoded.Bounds().Dx())
	assert.Equal(t, 1000, decoded.Bounds().Dy())

	assert.Equal(t, len(source.Data), result.OriginalByteSize)
	assert.Equal(t, len(result.Encoded.Data), result.EncodedByteSize)
	assert.GreaterOrEqual(t, result.EncodedByteSize, 0)
	assert.InDelta(t,
		(1-float64(result.EncodedByteSize)/float64(result.OriginalByteSize))*100,
		result.RatioPercent, 0.001)
	assert.Equal(t, "compressed_photo.jpg", result.Encoded.Name)
}

func TestTranscodeQualityDrivesSize(t *testing.T) {
	source := domain.ImageAsset{
		Name:      "photo.jpg",
		MediaType: "image/jpeg",
		Data:      gradientJPEG(t, 200, 160, 95),
	}

	low, err := NewStdImage().Transcode(t.Context(), domain.TranscodeRequest{Source: source, QualityPercent: 10})
	require.NoError(t, err)

	high, err := NewStdImage().Transcode(t.Context(), domain.TranscodeRequest{Source: source, QualityPercent: 95})
	require.NoError(t, err)

	assert.Less(t, low.EncodedByteSize, high.EncodedByteSize)
}

func TestTranscodeResultReturnedEvenWhenLarger(t *testing.T) {
	// A tiny flat png re-encoded as high quality jpeg usually grows; the
	// result is still returned as computed, no smaller-of-two fallback.
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))

	source := domain.ImageAsset{Name: "tiny.png", MediaType: "image/png", Data: buf.Bytes()}

	result, err := NewStdImage().Transcode(t.Context(), domain.TranscodeRequest{Source: source, QualityPercent: 100})
	require.NoError(t, err)

	assert.InDelta(t,
		(1-float64(result.EncodedByteSize)/float64(result.OriginalByteSize))*100,
		result.RatioPercent, 0.001)
}

func TestTranscodeKeepsPNGMediaType(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))

	source := domain.ImageAsset{Name: "tiny.png", MediaType: "image/png", Data: buf.Bytes()}

	result, err := NewStdImage().Transcode(t.Context(), domain.TranscodeRequest{Source: source, QualityPercent: 70})
	require.NoError(t, err)

	assert.Equal(t, "image/png", result.Encoded.MediaType)
	_, format, err := image.Decode(bytes.NewReader(result.Encoded.Data))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
}

func TestTranscodeDecodeError(t *testing.T) {
	source := domain.ImageAsset{Name: "not-image.jpg", MediaType: "image/jpeg", Data: []byte("plain text")}

	_, err := NewStdImage().Transcode(t.Context(), domain.TranscodeRequest{Source: source, QualityPercent: 70})

	require.Error(t, err)
	assert.Equal(t, domain.FaultDecode, domain.KindOf(err))
}

func TestTranscodeQualityOutOfRange(t *testing.T) {
	source := domain.ImageAsset{Name: "photo.jpg", MediaType: "image/jpeg", Data: gradientJPEG(t, 8, 8, 90)}

	for _, quality := range []int{0, -1, 101} {
		_, err := NewStdImage().Transcode(t.Context(), domain.TranscodeRequest{Source: source, QualityPercent: quality})
		require.Error(t, err, quality)
		assert.Equal(t, domain.FaultEncode, domain.KindOf(err))
	}
}
