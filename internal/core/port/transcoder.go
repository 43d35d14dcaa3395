package port

import (
	"context"

	"pixbox/internal/core/domain"
)

type Transcoder interface {
	// Transcode re-encodes the source at the requested quality, preserving
	// pixel dimensions. Only the entropy-coding quality changes.
	Transcode(ctx context.Context, req domain.TranscodeRequest) (domain.TranscodeResult, error)
}
