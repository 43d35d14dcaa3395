package service

import (
	"context"
	"strings"
	"sync"

	"pixbox/internal/core/domain"
	"pixbox/internal/core/port"

	"github.com/rs/zerolog/log"
)

// PromptExamples are the preset prompts offered alongside the input field.
var PromptExamples = []string{
	"Interstellar scene, a black hole with a shattered retro train bursting out of it, strong visual impact, cinematic",
	"A sunny beach with clear water, white sand, coconut trees in the distance, blue sky and white clouds",
	"A futuristic city with skyscrapers, hovering cars and flickering neon lights",
	"A cabin in the forest surrounded by towering trees, sunlight dappling through the leaves",
	"A cute kitten sleeping in the sun, fluffy, warm tones",
}

// Generate orchestrates the text-to-image workflow and owns the prompt
// history affordance: successful prompts are appended to a deduplicated
// recency window persisted outside the orchestrator's lifetime.
type Generate struct {
	machine
	generator    port.ImageGenerator
	materializer port.Materializer
	history      port.HistoryStore

	resultMu sync.Mutex
	result   *domain.GeneratedImage
}

func NewGenerate(generator port.ImageGenerator, materializer port.Materializer, history port.HistoryStore) *Generate {
	return &Generate{generator: generator, materializer: materializer, history: history}
}

func (g *Generate) Run(ctx context.Context, prompt string) (domain.GeneratedImage, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return domain.GeneratedImage{}, domain.NewFault(domain.FaultValidation, "please provide a prompt")
	}

	g.selectInput()

	token, err := g.begin()
	if err != nil {
		return domain.GeneratedImage{}, err
	}

	l := log.With().Str("feature", "generate").Str("prompt", prompt).Logger()
	l.Info().Msg("handling request")

	image, err := g.generator.GenerateFromPrompt(ctx, prompt)

	if !g.finish(token, err) {
		l.Warn().Msg("discarding stale generation result")
		return domain.GeneratedImage{}, ErrStale
	}

	if err != nil {
		l.Error().Err(err).Msg("generation failed")
		return domain.GeneratedImage{}, err
	}

	g.resultMu.Lock()
	g.result = &image
	g.resultMu.Unlock()

	g.appendHistory(ctx, prompt)

	l.Info().Bool("inlined", image.DataURI != "").Msg("generation finished")

	return image, nil
}

// appendHistory records the prompt after a success. History is best effort;
// a store failure never fails the generation itself.
func (g *Generate) appendHistory(ctx context.Context, prompt string) {
	prompts, err := g.history.Load(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("could not load prompt history")
		return
	}

	next, changed := domain.AppendPrompt(prompts, prompt)
	if !changed {
		return
	}

	if err := g.history.Save(ctx, next); err != nil {
		log.Warn().Err(err).Msg("could not save prompt history")
	}
}

// History returns the persisted prompt window, newest first.
func (g *Generate) History(ctx context.Context) ([]string, error) {
	return g.history.Load(ctx)
}

// Result returns the latest generated image, if any.
func (g *Generate) Result() (domain.GeneratedImage, bool) {
	g.resultMu.Lock()
	defer g.resultMu.Unlock()

	if g.result == nil {
		return domain.GeneratedImage{}, false
	}
	return *g.result, true
}

// Download materializes the latest generated image, preferring the inlined
// payload so no cross-origin fetch is needed.
func (g *Generate) Download(ctx context.Context) (string, error) {
	result, ok := g.Result()
	if !ok {
		return "", domain.NewFault(domain.FaultValidation, "no generated image available yet")
	}

	path, err := g.materializer.Materialize(ctx, result.Ref(), "ai-generated")
	if err != nil {
		g.reportError(err)
		return "", err
	}

	return path, nil
}
