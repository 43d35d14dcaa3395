package service

import (
	"context"
	"sync"

	"pixbox/internal/core/domain"
	"pixbox/internal/core/port"

	"github.com/rs/zerolog/log"
)

// Recognize orchestrates the content-recognition workflow: validate the
// upload, ask the vision model about it and keep the latest answer.
type Recognize struct {
	machine
	recognizer port.ImageRecognizer

	resultMu sync.Mutex
	result   string
}

func NewRecognize(recognizer port.ImageRecognizer) *Recognize {
	return &Recognize{recognizer: recognizer}
}

func (r *Recognize) Run(ctx context.Context, asset domain.ImageAsset) (string, error) {
	if err := domain.ValidateUpload(asset.MediaType, len(asset.Data)); err != nil {
		return "", err
	}

	r.selectInput()

	token, err := r.begin()
	if err != nil {
		return "", err
	}

	l := log.With().Str("feature", "recognize").Str("name", asset.Name).Logger()
	l.Info().Msg("handling request")

	description, err := r.recognizer.DescribeImage(ctx, asset)

	if !r.finish(token, err) {
		l.Warn().Msg("discarding stale recognition result")
		return "", ErrStale
	}

	if err != nil {
		l.Error().Err(err).Msg("recognition failed")
		return "", err
	}

	r.resultMu.Lock()
	r.result = description
	r.resultMu.Unlock()

	l.Info().Int("chars", len(description)).Msg("recognition finished")

	return description, nil
}

// Result returns the latest recognition answer, if any.
func (r *Recognize) Result() (string, bool) {
	r.resultMu.Lock()
	defer r.resultMu.Unlock()

	return r.result, r.result != ""
}
