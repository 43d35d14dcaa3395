package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pixbox/internal/core/domain"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const recognitionTimeout = 30 * time.Second

// DefaultQuestion is what the vision model is asked about every image.
const DefaultQuestion = "What does the picture mainly show?"

// Vision answers questions about an image via an OpenAI-compatible chat
// completions endpoint, sending the image inline as a base64 data URI.
type Vision struct {
	client   openai.Client
	model    string
	question string
}

func NewVision(apiKey, baseURL, model, question string) *Vision {
	if question == "" {
		question = DefaultQuestion
	}

	return &Vision{
		client:   openai.NewClient(option.WithAPIKey(apiKey), option.WithBaseURL(baseURL)),
		model:    model,
		question: question,
	}
}

func (v *Vision) DescribeImage(ctx context.Context, asset domain.ImageAsset) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, recognitionTimeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(v.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfArrayOfContentParts: []openai.ChatCompletionContentPartUnionParam{
							{OfText: &openai.ChatCompletionContentPartTextParam{
								Text: v.question,
							}},
							{OfImageURL: &openai.ChatCompletionContentPartImageParam{
								ImageURL: openai.ChatCompletionContentPartImageImageURLParam{
									URL: domain.EncodeDataURI(asset.MediaType, asset.Data),
								},
							}},
						},
					},
				},
			},
		},
	}

	response, err := v.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", classifyVisionError(err)
	}

	if len(response.Choices) == 0 {
		return "", errors.New("no choices in recognition response")
	}

	return response.Choices[0].Message.Content, nil
}

func classifyVisionError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("recognition request: %w",
			domain.Faultf(domain.FaultTimeout, "deadline of %s exceeded", recognitionTimeout))
	}

	var apierr *openai.Error
	if errors.As(err, &apierr) {
		return fmt.Errorf("recognition request: %w", &domain.Fault{
			Kind:       domain.FaultRemoteRejected,
			Message:    apierr.Message,
			HTTPStatus: apierr.StatusCode,
		})
	}

	return fmt.Errorf("recognition request: %w",
		domain.Faultf(domain.FaultNetworkUnavailable, "transport failure: %s", err))
}
