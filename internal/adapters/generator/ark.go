package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"pixbox/internal/adapters/gateway"
	"pixbox/internal/core/domain"

	"github.com/rs/zerolog/log"
)

const generationTimeout = 30 * time.Second

// Ark wraps the image-generation endpoint of an ark-style provider.
type Ark struct {
	gw        *gateway.Gateway
	endpoint  string
	apiKey    string
	model     string
	watermark bool
}

func NewArk(gw *gateway.Gateway, endpoint, apiKey, model string, watermark bool) *Ark {
	return &Ark{
		gw:        gw,
		endpoint:  endpoint,
		apiKey:    apiKey,
		model:     model,
		watermark: watermark,
	}
}

type generationRequest struct {
	Model                     string `json:"model"`
	Prompt                    string `json:"prompt"`
	SequentialImageGeneration string `json:"sequential_image_generation"`
	ResponseFormat            string `json:"response_format"`
	Size                      string `json:"size"`
	Stream                    bool   `json:"stream"`
	Watermark                 bool   `json:"watermark"`
}

type generationResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

// GenerateFromPrompt asks the provider for a hosted image URL and then
// fetches those bytes server-side, returning them inlined as a data URI so
// the client leg never has to fetch across origins. If the secondary fetch
// fails, the hosted URL is still returned with a note instead of failing the
// whole operation.
func (a *Ark) GenerateFromPrompt(ctx context.Context, prompt string) (domain.GeneratedImage, error) {
	if a.apiKey == "" {
		return domain.GeneratedImage{}, errors.New("generation API key is not configured")
	}

	arkRequest := generationRequest{
		Model:                     a.model,
		Prompt:                    prompt,
		SequentialImageGeneration: "disabled",
		ResponseFormat:            "url",
		Size:                      "2K",
		Stream:                    false,
		Watermark:                 a.watermark,
	}

	payloadBuf := new(bytes.Buffer)
	if err := json.NewEncoder(payloadBuf).Encode(arkRequest); err != nil {
		return domain.GeneratedImage{}, fmt.Errorf("error encoding ark request: %w", err)
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("Authorization", "Bearer "+a.apiKey)

	outcome := a.gw.Call(ctx, gateway.Request{
		Method:  http.MethodPost,
		URL:     a.endpoint,
		Header:  header,
		Body:    payloadBuf,
		Timeout: generationTimeout,
	})

	var result generationResponse
	if fault := gateway.DecodeJSON(outcome, &result); fault != nil {
		return domain.GeneratedImage{}, fmt.Errorf("ark request failed: %w", fault)
	}

	if len(result.Data) == 0 || result.Data[0].URL == "" {
		return domain.GeneratedImage{}, errors.New("no image returned in ark response")
	}

	imageURL := result.Data[0].URL
	log.Debug().Str("imageURL", imageURL).Msg("ark generationResponse")

	dataURI, fault := gateway.DecodeDataURI(a.gw.Call(ctx, gateway.Request{
		Method:  http.MethodGet,
		URL:     imageURL,
		Timeout: generationTimeout,
	}))
	if fault != nil {
		log.Warn().Err(fault).Str("imageURL", imageURL).Msg("could not inline generated image")
		return domain.GeneratedImage{
			URL:  imageURL,
			Note: "image generated, but download optimization is unavailable",
		}, nil
	}

	return domain.GeneratedImage{
		DataURI: dataURI,
		URL:     imageURL,
		Note:    "image generated",
	}, nil
}
