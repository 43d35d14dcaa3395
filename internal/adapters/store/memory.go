package store

import (
	"context"
	"sync"
)

// Memory is an in-process HistoryStore. Values are copied on both sides of
// the boundary so callers cannot alias the stored slice.
type Memory struct {
	mu      sync.RWMutex
	prompts []string
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out, nil
}

func (m *Memory) Save(_ context.Context, prompts []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.prompts = make([]string, len(prompts))
	copy(m.prompts, prompts)
	return nil
}
