package service

import (
	"context"
	"sync"

	"pixbox/internal/core/domain"
	"pixbox/internal/core/port"

	"github.com/rs/zerolog/log"
)

// Compress orchestrates the local re-encode workflow: validate the upload,
// transcode at the requested quality and keep the latest result for display
// and download.
type Compress struct {
	machine
	transcoder   port.Transcoder
	materializer port.Materializer

	resultMu sync.Mutex
	result   *domain.TranscodeResult
}

func NewCompress(transcoder port.Transcoder, materializer port.Materializer) *Compress {
	return &Compress{transcoder: transcoder, materializer: materializer}
}

func (c *Compress) Run(ctx context.Context, asset domain.ImageAsset, qualityPercent int) (domain.TranscodeResult, error) {
	if err := domain.ValidateUpload(asset.MediaType, len(asset.Data)); err != nil {
		return domain.TranscodeResult{}, err
	}

	if qualityPercent < 1 || qualityPercent > 100 {
		return domain.TranscodeResult{}, domain.NewFault(domain.FaultValidation,
			"quality must be between 1 and 100")
	}

	c.selectInput()

	token, err := c.begin()
	if err != nil {
		return domain.TranscodeResult{}, err
	}

	l := log.With().Str("feature", "compress").Str("name", asset.Name).Int("quality", qualityPercent).Logger()
	l.Info().Msg("handling request")

	result, err := c.transcoder.Transcode(ctx, domain.TranscodeRequest{
		Source:         asset,
		QualityPercent: qualityPercent,
	})

	if !c.finish(token, err) {
		l.Warn().Msg("discarding stale transcode result")
		return domain.TranscodeResult{}, ErrStale
	}

	if err != nil {
		l.Error().Err(err).Msg("transcode failed")
		return domain.TranscodeResult{}, err
	}

	c.resultMu.Lock()
	c.result = &result
	c.resultMu.Unlock()

	l.Info().Float64("ratioPercent", result.RatioPercent).Msg("transcode finished")

	return result, nil
}

// Result returns the latest compression outcome, if any.
func (c *Compress) Result() (domain.TranscodeResult, bool) {
	c.resultMu.Lock()
	defer c.resultMu.Unlock()

	if c.result == nil {
		return domain.TranscodeResult{}, false
	}
	return *c.result, true
}

// Download materializes the latest result. A materialization failure is
// surfaced in the error slot even though the compression itself succeeded.
func (c *Compress) Download(ctx context.Context) (string, error) {
	result, ok := c.Result()
	if !ok {
		return "", domain.NewFault(domain.FaultValidation, "no compressed image available yet")
	}

	ref := domain.EncodeDataURI(result.Encoded.MediaType, result.Encoded.Data)

	path, err := c.materializer.Materialize(ctx, ref, result.Encoded.Name)
	if err != nil {
		c.reportError(err)
		return "", err
	}

	return path, nil
}
