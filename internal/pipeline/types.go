package pipeline

import "context"

// Options controls a single pipeline run
type Options struct {
	// Prompt overrides the default prompt text
	Prompt string
	// Force bypasses cache validity checks and regenerates all artifacts
	Force bool
	// SkipCompletion disables the LLM title-rewrite call
	SkipCompletion bool
}

// Result describes a successful run
type Result struct {
	VideoID   string            `json:"video_id"`
	CacheDir  string            `json:"cache_dir"`
	Files     map[string]string `json:"files"`
	FromCache bool              `json:"from_cache"`
	FinalText string            `json:"-"`
	Response  string            `json:"response,omitempty"`
}

// Completer is the text contract of the LLM completion service:
// prompt in, text out.
type Completer interface {
	SimpleChat(ctx context.Context, prompt string, systemPrompt string) (string, error)
}
