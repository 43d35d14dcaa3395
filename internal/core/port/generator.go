package port

import (
	"context"

	"pixbox/internal/core/domain"
)

type ImageGenerator interface {
	// GenerateFromPrompt produces an image for the prompt. The result carries
	// an inlined data URI when the provider's hosted image could be fetched
	// server-side, otherwise the hosted URL with an explanatory note.
	GenerateFromPrompt(ctx context.Context, prompt string) (domain.GeneratedImage, error)
}

type ImageRecognizer interface {
	// DescribeImage asks the vision model what the image mainly shows and
	// returns its textual answer.
	DescribeImage(ctx context.Context, asset domain.ImageAsset) (string, error)
}
