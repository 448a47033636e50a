package resumeparser

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"ats-backend/internal/ats"
	"ats-backend/internal/shared/telemetry"
)

const defaultRetryDelay = 300 * time.Millisecond

// RetryingParser retries a transient provider failure once.
type RetryingParser struct {
	Base  Parser
	Delay time.Duration
}

// WithRetry wraps p. A nil p yields nil.
func WithRetry(p Parser) Parser {
	if p == nil {
		return nil
	}
	return &RetryingParser{Base: p, Delay: defaultRetryDelay}
}

// ParseResume implements Parser.
func (r *RetryingParser) ParseResume(ctx context.Context, resumeText string) (ats.ResumeRecord, error) {
	record, err := r.Base.ParseResume(ctx, resumeText)
	if err == nil || !ShouldRetry(err) || ctx.Err() != nil {
		return record, err
	}

	telemetry.Warn("resumeparser.retry", map[string]any{
		"attempt": 1,
		"err":     err,
	})
	select {
	case <-time.After(r.Delay):
	case <-ctx.Done():
		return ats.ResumeRecord{}, ctx.Err()
	}
	return r.Base.ParseResume(ctx, resumeText)
}

// ShouldRetry reports whether err looks transient.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotConfigured) || errors.Is(err, ErrOutputInvalid) || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"500 internal server error",
		"502 bad gateway",
		"503 service unavailable",
		"504 gateway timeout",
		"429 too many requests",
		"server_error",
		"connection reset",
		"connection refused",
		"broken pipe",
		"unexpected eof",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
