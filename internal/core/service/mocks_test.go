package service

import (
	"context"
	"sync"

	"pixbox/internal/core/domain"
)

type MockImageGenerator struct {
	image domain.GeneratedImage
	err   error

	mu      sync.Mutex
	calls   int
	prompt  string
	started chan struct{}
	release chan struct{}
}

func (m *MockImageGenerator) GenerateFromPrompt(_ context.Context, prompt string) (domain.GeneratedImage, error) {
	m.mu.Lock()
	m.calls++
	m.prompt = prompt
	m.mu.Unlock()

	if m.started != nil {
		m.started <- struct{}{}
	}
	if m.release != nil {
		<-m.release
	}

	return m.image, m.err
}

func (m *MockImageGenerator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type MockImageRecognizer struct {
	description string
	err         error
	asset       domain.ImageAsset
}

func (m *MockImageRecognizer) DescribeImage(_ context.Context, asset domain.ImageAsset) (string, error) {
	m.asset = asset
	return m.description, m.err
}

type MockBackgroundRemover struct {
	result domain.ImageAsset
	err    error
	calls  int
}

func (m *MockBackgroundRemover) RemoveBackground(_ context.Context, _ domain.ImageAsset) (domain.ImageAsset, error) {
	m.calls++
	return m.result, m.err
}

type MockTranscoder struct {
	result domain.TranscodeResult
	err    error
	calls  int
	req    domain.TranscodeRequest
}

func (m *MockTranscoder) Transcode(_ context.Context, req domain.TranscodeRequest) (domain.TranscodeResult, error) {
	m.calls++
	m.req = req
	return m.result, m.err
}

type MockMaterializer struct {
	path  string
	err   error
	ref   string
	name  string
	calls int
}

func (m *MockMaterializer) Materialize(_ context.Context, ref string, suggestedName string) (string, error) {
	m.calls++
	m.ref = ref
	m.name = suggestedName
	return m.path, m.err
}

type FailingHistoryStore struct {
	loadErr error
	saveErr error
}

func (f *FailingHistoryStore) Load(context.Context) ([]string, error) {
	return nil, f.loadErr
}

func (f *FailingHistoryStore) Save(context.Context, []string) error {
	return f.saveErr
}
