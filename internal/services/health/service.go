package health

import (
	"context"
	"time"
)

// Pinger is anything that can report whether a dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// PingContext calls f.
func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

// Service encapsulates health-related checks.
type Service struct {
	checks  map[string]Pinger
	timeout time.Duration
}

// NewService constructs a health service. Nil checks are skipped.
func NewService(checks map[string]Pinger) *Service {
	filtered := make(map[string]Pinger, len(checks))
	for name, check := range checks {
		if check != nil {
			filtered[name] = check
		}
	}
	return &Service{checks: filtered, timeout: 2 * time.Second}
}

// Report is the health payload.
type Report struct {
	OK     bool              `json:"ok"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Status pings every dependency and reports "ok" or the error for each.
func (s *Service) Status(ctx context.Context) Report {
	report := Report{OK: true}
	if s == nil || len(s.checks) == 0 {
		return report
	}
	report.Checks = make(map[string]string, len(s.checks))
	for name, check := range s.checks {
		pingCtx, cancel := context.WithTimeout(ctx, s.timeout)
		err := check.PingContext(pingCtx)
		cancel()
		if err != nil {
			report.OK = false
			report.Checks[name] = err.Error()
			continue
		}
		report.Checks[name] = "ok"
	}
	return report
}
