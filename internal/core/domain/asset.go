package domain

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// ImageAsset is an opaque image payload with its declared media type and a
// display name. Assets are replaced, never mutated, when an operation
// produces a new result.
type ImageAsset struct {
	Name      string
	MediaType string
	Data      []byte
}

// GeneratedImage is the outcome of a text-to-image call. DataURI is set when
// the bytes could be inlined server-side; URL always carries the upstream
// reference. Note is a human-readable remark about the result, e.g. when the
// inline conversion was skipped.
type GeneratedImage struct {
	DataURI string
	URL     string
	Note    string
}

// Ref returns the best reference for materializing the image, preferring the
// inlined payload over the upstream URL.
func (g GeneratedImage) Ref() string {
	if g.DataURI != "" {
		return g.DataURI
	}
	return g.URL
}

// EncodeDataURI wraps raw bytes into a base64 data URI.
func EncodeDataURI(mediaType string, data []byte) string {
	if mediaType == "" {
		mediaType = "image/png"
	}
	return fmt.Sprintf("data:%s;base64,%s", mediaType, base64.StdEncoding.EncodeToString(data))
}

// ParseDataURI decodes a base64 data URI into its media type and payload.
func ParseDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data URI")
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("malformed data URI")
	}

	mediaType, _ := strings.CutSuffix(meta, ";base64")
	if mediaType == "" {
		mediaType = "image/png"
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("error decoding data URI payload: %w", err)
	}

	return mediaType, data, nil
}

// ExtensionForMediaType maps a media type to a file extension, defaulting to
// png when the type is absent or unknown.
func ExtensionForMediaType(mediaType string) string {
	_, sub, ok := strings.Cut(mediaType, "/")
	if !ok || sub == "" {
		return ".png"
	}

	if semi := strings.Index(sub, ";"); semi >= 0 {
		sub = sub[:semi]
	}

	switch sub {
	case "jpeg", "jpg":
		return ".jpg"
	case "png", "webp", "gif", "bmp":
		return "." + sub
	default:
		return ".png"
	}
}

// FormatByteSize renders a byte count for display.
func FormatByteSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.2f MB", float64(n)/float64(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.2f KB", float64(n)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
