package resumeparser

import (
	"context"
	"fmt"

	"ats-backend/internal/ats"
	"ats-backend/internal/shared/telemetry"
)

// CompletionParser parses résumés with a chat-style Completer. Output that
// fails validation gets one fix-JSON round trip.
type CompletionParser struct {
	Completer Completer
	Provider  string
}

// NewCompletionParser wraps c.
func NewCompletionParser(c Completer, provider string) *CompletionParser {
	return &CompletionParser{Completer: c, Provider: provider}
}

// ParseResume implements Parser.
func (p *CompletionParser) ParseResume(ctx context.Context, resumeText string) (ats.ResumeRecord, error) {
	if p == nil || p.Completer == nil {
		return ats.ResumeRecord{}, ErrNotConfigured
	}

	raw, err := p.Completer.Complete(ctx, BuildPrompt(resumeText))
	if err != nil {
		return ats.ResumeRecord{}, fmt.Errorf("%s complete: %w", p.Provider, err)
	}
	record, decodeErr := Decode(raw)
	if decodeErr == nil {
		return record, nil
	}

	telemetry.Warn("resumeparser.fix_json", map[string]any{
		"provider": p.Provider,
		"err":      decodeErr,
	})
	fixed, err := p.Completer.Complete(ctx, BuildFixPrompt(raw, decodeErr.Error()))
	if err != nil {
		return ats.ResumeRecord{}, fmt.Errorf("%s fix json: %w", p.Provider, err)
	}
	return Decode(fixed)
}

var _ Parser = (*CompletionParser)(nil)
