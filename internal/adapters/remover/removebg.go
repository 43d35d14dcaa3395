package remover

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"pixbox/internal/adapters/gateway"
	"pixbox/internal/core/domain"

	"github.com/rs/zerolog/log"
)

const removalTimeout = 60 * time.Second

// RemoveBG wraps a remove.bg-style segmentation endpoint. The credential
// lives server-side only; it is never reachable from the client leg.
type RemoveBG struct {
	gw       *gateway.Gateway
	endpoint string
	apiKey   string
}

func NewRemoveBG(gw *gateway.Gateway, endpoint, apiKey string) *RemoveBG {
	return &RemoveBG{gw: gw, endpoint: endpoint, apiKey: apiKey}
}

// RemoveBackground posts the image as multipart form data and receives the
// cut-out image back as raw bytes. Error bodies are plain text, surfaced via
// the gateway's rejection message.
func (r *RemoveBG) RemoveBackground(ctx context.Context, asset domain.ImageAsset) (domain.ImageAsset, error) {
	if r.apiKey == "" {
		return domain.ImageAsset{}, errors.New("background removal API key is not configured")
	}

	payloadBuf := new(bytes.Buffer)
	form := multipart.NewWriter(payloadBuf)

	part, err := form.CreateFormFile("image_file", asset.Name)
	if err != nil {
		return domain.ImageAsset{}, fmt.Errorf("error building removal form: %w", err)
	}
	if _, err := part.Write(asset.Data); err != nil {
		return domain.ImageAsset{}, fmt.Errorf("error writing removal form: %w", err)
	}
	if err := form.WriteField("size", "auto"); err != nil {
		return domain.ImageAsset{}, fmt.Errorf("error writing removal form: %w", err)
	}
	if err := form.Close(); err != nil {
		return domain.ImageAsset{}, fmt.Errorf("error closing removal form: %w", err)
	}

	header := http.Header{}
	header.Set("X-Api-Key", r.apiKey)
	header.Set("Content-Type", form.FormDataContentType())

	outcome := r.gw.Call(ctx, gateway.Request{
		Method:  http.MethodPost,
		URL:     r.endpoint,
		Header:  header,
		Body:    payloadBuf,
		Timeout: removalTimeout,
	})

	result, fault := gateway.DecodeBinary(outcome, cutoutName(asset.Name))
	if fault != nil {
		return domain.ImageAsset{}, fmt.Errorf("removal request failed: %w", fault)
	}

	log.Debug().Int("bytes", len(result.Data)).Str("name", result.Name).Msg("background removed")

	return result, nil
}

// cutoutName derives the result name, always a png per the provider.
func cutoutName(name string) string {
	if name == "" {
		return "no-bg_image.png"
	}

	if dot := strings.LastIndex(name, "."); dot > 0 {
		name = name[:dot]
	}

	return "no-bg_" + name + ".png"
}
