package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

// FileStore persists the prompt history as a single JSON document. The whole
// value is read, recomputed and rewritten on every change; no partial
// mutation is supported.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("error creating history directory: %w", err)
	}

	return &FileStore{path: path}, nil
}

func (s *FileStore) Load(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("error reading history: %w", err)
	}

	var prompts []string
	if err := json.Unmarshal(buf, &prompts); err != nil {
		log.Warn().Err(err).Str("path", s.path).Msg("history file is corrupt, starting fresh")
		return nil, nil
	}

	return prompts, nil
}

func (s *FileStore) Save(_ context.Context, prompts []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf, err := json.Marshal(prompts)
	if err != nil {
		return fmt.Errorf("error encoding history: %w", err)
	}

	if err := os.WriteFile(s.path, buf, 0o644); err != nil {
		return fmt.Errorf("error writing history: %w", err)
	}

	return nil
}
