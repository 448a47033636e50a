package analyses

import (
	"context"
	"time"

	"ats-backend/internal/ats"
)

// Repo defines persistence operations for analyses.
type Repo interface {
	Create(ctx context.Context, analysis Analysis) error
	GetByID(ctx context.Context, analysisID string) (Analysis, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Analysis, error)
	// LatestByUser returns the most recently completed analysis.
	LatestByUser(ctx context.Context, userID string) (Analysis, error)
	// MarkProcessing moves a queued analysis to processing. It returns
	// ErrNotQueued when another worker already claimed it.
	MarkProcessing(ctx context.Context, analysisID string, startedAt time.Time) error
	Complete(ctx context.Context, analysisID string, record *ats.ResumeRecord, report ats.ScoreReport, completedAt time.Time) error
	Fail(ctx context.Context, analysisID, code, message string, completedAt time.Time) error
}
