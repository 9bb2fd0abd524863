// Package format turns raw chapter text into a styled HTML document, either
// through a language model or offline from markdown.
package format

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrFormattingService = errors.New("formatting service error")
	ErrInvalidStyle      = errors.New("invalid style")
)

// FormattingServiceError wraps a failure reported by a formatting provider.
type FormattingServiceError struct {
	Provider string
	Err      error
}

func (e *FormattingServiceError) Error() string {
	return fmt.Sprintf("%s formatter: %v", e.Provider, e.Err)
}

func (e *FormattingServiceError) Unwrap() error { return e.Err }

func (e *FormattingServiceError) Is(target error) bool { return target == ErrFormattingService }

// Style carries the two typographic parameters passed to the formatter.
type Style struct {
	FontSizePx int
	LineHeight string
}

func (s Style) validate() error {
	if s.FontSizePx <= 0 {
		return fmt.Errorf("%w: font size must be positive, got %d", ErrInvalidStyle, s.FontSizePx)
	}
	if strings.TrimSpace(s.LineHeight) == "" {
		return fmt.Errorf("%w: line height is required", ErrInvalidStyle)
	}
	return nil
}

// Formatter produces a markup document from chapter text.
type Formatter interface {
	Format(ctx context.Context, chapter string, style Style) (string, error)
}

// Client sends one prompt to a language model and returns its text reply.
type Client interface {
	SendMessage(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// LLMFormatter formats chapters by prompting a language model.
type LLMFormatter struct {
	client   Client
	provider string
}

func NewLLMFormatter(provider string, client Client) *LLMFormatter {
	return &LLMFormatter{client: client, provider: provider}
}

func (f *LLMFormatter) Format(ctx context.Context, chapter string, style Style) (string, error) {
	if err := style.validate(); err != nil {
		return "", err
	}
	response, err := f.client.SendMessage(ctx, SystemPrompt(style), UserPrompt(chapter))
	if err != nil {
		return "", &FormattingServiceError{Provider: f.provider, Err: err}
	}
	markup, err := CleanMarkup(response)
	if err != nil {
		return "", &FormattingServiceError{Provider: f.provider, Err: err}
	}
	return markup, nil
}
