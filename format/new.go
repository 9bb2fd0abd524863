package format

import (
	"context"
	"fmt"

	"github.com/opd-ai/bookpress/config"
)

// New builds the formatter selected by cfg. A positive CacheTTL wraps it in
// a Cached formatter.
func New(ctx context.Context, cfg config.Formatter) (Formatter, error) {
	var f Formatter
	switch cfg.Provider {
	case "openai":
		f = NewLLMFormatter(cfg.Provider, NewOpenAIClient(cfg.APIKey, cfg.BaseURL, cfg.Model))
	case "anthropic":
		f = NewLLMFormatter(cfg.Provider, NewClaudeClient(cfg.APIKey, cfg.Model))
	case "gemini":
		client, err := NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, &FormattingServiceError{Provider: cfg.Provider, Err: err}
		}
		f = NewLLMFormatter(cfg.Provider, client)
	case "markdown":
		f = NewMarkdownFormatter()
	default:
		return nil, fmt.Errorf("unknown formatter provider %q", cfg.Provider)
	}

	if cfg.CacheTTL > 0 {
		f = NewCached(cfg.Provider, f, cfg.CacheTTL)
	}
	return f, nil
}
