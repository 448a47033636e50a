package analyses

import (
	"context"
	"sort"
	"sync"
	"time"

	"ats-backend/internal/ats"
)

// MemoryRepo stores analyses in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Analysis
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Analysis)}
}

// Create stores the analysis.
func (r *MemoryRepo) Create(ctx context.Context, analysis Analysis) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if analysis.UpdatedAt.IsZero() {
		analysis.UpdatedAt = analysis.CreatedAt
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[analysis.ID] = analysis
	return nil
}

// GetByID returns an analysis by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, analysisID string) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	analysis, ok := r.byID[analysisID]
	if !ok {
		return Analysis{}, ErrNotFound
	}
	return analysis, nil
}

func (r *MemoryRepo) userAnalyses(userID string) []Analysis {
	out := []Analysis{}
	for _, a := range r.byID {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// ListByUser returns analyses for a user, newest first, with limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	r.mu.RLock()
	analyses := r.userAnalyses(userID)
	r.mu.RUnlock()

	if offset >= len(analyses) {
		return []Analysis{}, nil
	}
	end := len(analyses)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return analyses[offset:end], nil
}

// LatestByUser returns the user's most recent completed analysis.
func (r *MemoryRepo) LatestByUser(ctx context.Context, userID string) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest Analysis
	found := false
	for _, a := range r.byID {
		if a.UserID != userID || a.Status != StatusCompleted || a.CompletedAt == nil {
			continue
		}
		if !found || completedAfter(a, latest) {
			latest = a
			found = true
		}
	}
	if !found {
		return Analysis{}, ErrNotFound
	}
	return latest, nil
}

// completedAfter orders by completion time, then creation time, then ID, so
// ties resolve the same way on every call.
func completedAfter(a, b Analysis) bool {
	if !a.CompletedAt.Equal(*b.CompletedAt) {
		return a.CompletedAt.After(*b.CompletedAt)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

func (r *MemoryRepo) update(ctx context.Context, analysisID string, fn func(*Analysis) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	analysis, ok := r.byID[analysisID]
	if !ok {
		return ErrNotFound
	}
	if err := fn(&analysis); err != nil {
		return err
	}
	r.byID[analysisID] = analysis
	return nil
}

// MarkProcessing claims a queued analysis.
func (r *MemoryRepo) MarkProcessing(ctx context.Context, analysisID string, startedAt time.Time) error {
	return r.update(ctx, analysisID, func(a *Analysis) error {
		if a.Status != StatusQueued {
			return ErrNotQueued
		}
		a.Status = StatusProcessing
		a.StartedAt = &startedAt
		a.UpdatedAt = startedAt
		return nil
	})
}

// Complete stores the record and report and marks the analysis completed.
func (r *MemoryRepo) Complete(ctx context.Context, analysisID string, record *ats.ResumeRecord, report ats.ScoreReport, completedAt time.Time) error {
	return r.update(ctx, analysisID, func(a *Analysis) error {
		a.Status = StatusCompleted
		a.Record = record
		a.Report = &report
		a.ErrorCode = ""
		a.ErrorMessage = ""
		a.CompletedAt = &completedAt
		a.UpdatedAt = completedAt
		return nil
	})
}

// Fail records the failure code and message.
func (r *MemoryRepo) Fail(ctx context.Context, analysisID, code, message string, completedAt time.Time) error {
	return r.update(ctx, analysisID, func(a *Analysis) error {
		a.Status = StatusFailed
		a.ErrorCode = code
		a.ErrorMessage = message
		a.CompletedAt = &completedAt
		a.UpdatedAt = completedAt
		return nil
	})
}

var _ Repo = (*MemoryRepo)(nil)
