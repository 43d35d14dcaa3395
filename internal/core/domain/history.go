package domain

// HistoryLimit is the recency window kept for generation prompts.
const HistoryLimit = 10

// AppendPrompt prepends a prompt to the history window. A prompt already
// present verbatim is skipped, and the oldest entries past the limit are
// evicted. The second return reports whether the history changed.
func AppendPrompt(history []string, prompt string) ([]string, bool) {
	for _, p := range history {
		if p == prompt {
			return history, false
		}
	}

	next := make([]string, 0, len(history)+1)
	next = append(next, prompt)
	next = append(next, history...)
	if len(next) > HistoryLimit {
		next = next[:HistoryLimit]
	}

	return next, true
}
