package service

import (
	"context"
	"sync"

	"pixbox/internal/core/domain"
	"pixbox/internal/core/port"

	"github.com/rs/zerolog/log"
)

// RemoveBackground orchestrates the background-removal workflow: validate
// the upload, send it to the segmentation provider and keep the latest
// cut-out for display and download.
type RemoveBackground struct {
	machine
	remover      port.BackgroundRemover
	materializer port.Materializer

	resultMu sync.Mutex
	result   *domain.ImageAsset
}

func NewRemoveBackground(remover port.BackgroundRemover, materializer port.Materializer) *RemoveBackground {
	return &RemoveBackground{remover: remover, materializer: materializer}
}

func (r *RemoveBackground) Run(ctx context.Context, asset domain.ImageAsset) (domain.ImageAsset, error) {
	if err := domain.ValidateUpload(asset.MediaType, len(asset.Data)); err != nil {
		return domain.ImageAsset{}, err
	}

	r.selectInput()

	token, err := r.begin()
	if err != nil {
		return domain.ImageAsset{}, err
	}

	l := log.With().Str("feature", "remove-background").Str("name", asset.Name).Logger()
	l.Info().Msg("handling request")

	result, err := r.remover.RemoveBackground(ctx, asset)

	if !r.finish(token, err) {
		l.Warn().Msg("discarding stale removal result")
		return domain.ImageAsset{}, ErrStale
	}

	if err != nil {
		l.Error().Err(err).Msg("background removal failed")
		return domain.ImageAsset{}, err
	}

	r.resultMu.Lock()
	r.result = &result
	r.resultMu.Unlock()

	l.Info().Int("bytes", len(result.Data)).Msg("background removal finished")

	return result, nil
}

// Result returns the latest cut-out, if any.
func (r *RemoveBackground) Result() (domain.ImageAsset, bool) {
	r.resultMu.Lock()
	defer r.resultMu.Unlock()

	if r.result == nil {
		return domain.ImageAsset{}, false
	}
	return *r.result, true
}

// Download materializes the latest cut-out. A materialization failure is
// surfaced in the error slot even though the removal itself succeeded.
func (r *RemoveBackground) Download(ctx context.Context) (string, error) {
	result, ok := r.Result()
	if !ok {
		return "", domain.NewFault(domain.FaultValidation, "no processed image available yet")
	}

	ref := domain.EncodeDataURI(result.MediaType, result.Data)

	path, err := r.materializer.Materialize(ctx, ref, result.Name)
	if err != nil {
		r.reportError(err)
		return "", err
	}

	return path, nil
}
