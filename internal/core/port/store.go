package port

import "context"

type HistoryStore interface {
	// Load returns the full prompt history, newest first.
	Load(ctx context.Context) ([]string, error)
	// Save replaces the stored history as a whole value.
	Save(ctx context.Context, prompts []string) error
}
