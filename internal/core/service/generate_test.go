package service

import (
	"errors"
	"testing"
	"time"

	"pixbox/internal/adapters/store"
	"pixbox/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRunSuccessAppendsHistory(t *testing.T) {
	mg := &MockImageGenerator{image: domain.GeneratedImage{
		DataURI: "data:image/png;base64,AQ==",
		URL:     "https://example.org/1.png",
		Note:    "image generated",
	}}
	history := store.NewMemory()

	g := NewGenerate(mg, &MockMaterializer{}, history)

	got, err := g.Run(t.Context(), "sunset beach")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,AQ==", got.DataURI)
	assert.Equal(t, StateSucceeded, g.State())
	assert.Empty(t, g.LastError())

	prompts, err := g.History(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"sunset beach"}, prompts)
}

func TestGenerateRunSkipsDuplicateHistoryEntry(t *testing.T) {
	mg := &MockImageGenerator{image: domain.GeneratedImage{URL: "https://example.org/1.png"}}
	history := store.NewMemory()

	g := NewGenerate(mg, &MockMaterializer{}, history)

	_, err := g.Run(t.Context(), "sunset beach")
	require.NoError(t, err)
	_, err = g.Run(t.Context(), "sunset beach")
	require.NoError(t, err)

	prompts, err := g.History(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"sunset beach"}, prompts)
}

func TestGenerateRunBlankPrompt(t *testing.T) {
	mg := &MockImageGenerator{}

	g := NewGenerate(mg, &MockMaterializer{}, store.NewMemory())

	_, err := g.Run(t.Context(), "   ")

	require.Error(t, err)
	assert.Equal(t, domain.FaultValidation, domain.KindOf(err))
	assert.Equal(t, StateIdle, g.State(), "validation failure must not enter processing")
	assert.Zero(t, mg.Calls())
}

func TestGenerateRunFailureDoesNotTouchHistory(t *testing.T) {
	mg := &MockImageGenerator{err: domain.NewFault(domain.FaultTimeout, "deadline exceeded")}
	history := store.NewMemory()

	g := NewGenerate(mg, &MockMaterializer{}, history)

	_, err := g.Run(t.Context(), "sunset beach")

	require.Error(t, err)
	assert.Equal(t, StateFailed, g.State())
	assert.Equal(t, "the operation timed out, please try again later", g.LastError())

	prompts, loadErr := g.History(t.Context())
	require.NoError(t, loadErr)
	assert.Empty(t, prompts)
}

func TestGenerateRunRejectsWhileProcessing(t *testing.T) {
	mg := &MockImageGenerator{
		image:   domain.GeneratedImage{URL: "https://example.org/1.png"},
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}

	g := NewGenerate(mg, &MockMaterializer{}, store.NewMemory())

	done := make(chan error, 1)
	go func() {
		_, err := g.Run(t.Context(), "first prompt")
		done <- err
	}()

	select {
	case <-mg.started:
	case <-time.After(time.Second):
		t.Fatal("generator was never invoked")
	}

	_, err := g.Run(t.Context(), "second prompt")
	assert.ErrorIs(t, err, ErrBusy)

	close(mg.release)
	require.NoError(t, <-done)

	assert.Equal(t, 1, mg.Calls(), "exactly one generator call may be in flight")
}

func TestGenerateHistoryStoreFailureIsNonFatal(t *testing.T) {
	mg := &MockImageGenerator{image: domain.GeneratedImage{URL: "https://example.org/1.png"}}

	g := NewGenerate(mg, &MockMaterializer{}, &FailingHistoryStore{loadErr: errors.New("disk gone")})

	_, err := g.Run(t.Context(), "sunset beach")

	require.NoError(t, err, "history is best effort")
	assert.Equal(t, StateSucceeded, g.State())
}

func TestGenerateDownload(t *testing.T) {
	mg := &MockImageGenerator{image: domain.GeneratedImage{
		DataURI: "data:image/png;base64,AQ==",
		URL:     "https://example.org/1.png",
	}}
	mm := &MockMaterializer{path: "/tmp/artifacts/ai-generated-1.png"}

	g := NewGenerate(mg, mm, store.NewMemory())

	_, err := g.Run(t.Context(), "sunset beach")
	require.NoError(t, err)

	path, err := g.Download(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "/tmp/artifacts/ai-generated-1.png", path)
	assert.Equal(t, "data:image/png;base64,AQ==", mm.ref, "inlined payload is preferred")
	assert.Equal(t, "ai-generated", mm.name)
}

func TestGenerateDownloadWithoutResult(t *testing.T) {
	g := NewGenerate(&MockImageGenerator{}, &MockMaterializer{}, store.NewMemory())

	_, err := g.Download(t.Context())

	require.Error(t, err)
	assert.Equal(t, domain.FaultValidation, domain.KindOf(err))
}

func TestGenerateDownloadFailureSurfacesError(t *testing.T) {
	mg := &MockImageGenerator{image: domain.GeneratedImage{URL: "https://example.org/1.png"}}
	mm := &MockMaterializer{err: domain.NewFault(domain.FaultDownloadFailed, "empty body")}

	g := NewGenerate(mg, mm, store.NewMemory())

	_, err := g.Run(t.Context(), "sunset beach")
	require.NoError(t, err)

	_, err = g.Download(t.Context())
	require.Error(t, err)

	assert.Equal(t, StateSucceeded, g.State(), "the main operation still succeeded")
	assert.NotEmpty(t, g.LastError(), "the materialization failure is still surfaced")
}
