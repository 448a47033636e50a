package resumeparser

import (
	"context"
	"errors"

	"ats-backend/internal/ats"
)

var (
	// ErrNotConfigured is returned when no parsing provider is set up.
	ErrNotConfigured = errors.New("resume parser not configured")
	// ErrOutputInvalid marks provider output that is not a usable record.
	ErrOutputInvalid = errors.New("parser output invalid")
)

// Parser turns extracted résumé text into a structured record.
type Parser interface {
	ParseResume(ctx context.Context, resumeText string) (ats.ResumeRecord, error)
}

// Message is one chat turn sent to a provider.
type Message struct {
	Role    string
	Content string
}

// Completer sends a prompt to a model and returns the raw text answer.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// PlaceholderParser is used when PARSER_PROVIDER=none.
type PlaceholderParser struct{}

// ParseResume returns ErrNotConfigured.
func (PlaceholderParser) ParseResume(ctx context.Context, resumeText string) (ats.ResumeRecord, error) {
	_ = ctx
	_ = resumeText
	return ats.ResumeRecord{}, ErrNotConfigured
}
