package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ats-backend/internal/ats"
)

// PGRepo implements Repo using Postgres. Record and report are JSONB.
type PGRepo struct {
	DB *sql.DB
}

const analysisColumns = `id, user_id, document_id, source, status, record, report, error_code, error_message, created_at, updated_at, started_at, completed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (Analysis, error) {
	var a Analysis
	var documentID sql.NullString
	var record, report []byte
	var errorCode, errorMessage sql.NullString
	var startedAt, completedAt sql.NullTime
	if err := row.Scan(
		&a.ID,
		&a.UserID,
		&documentID,
		&a.Source,
		&a.Status,
		&record,
		&report,
		&errorCode,
		&errorMessage,
		&a.CreatedAt,
		&a.UpdatedAt,
		&startedAt,
		&completedAt,
	); err != nil {
		return Analysis{}, err
	}
	a.DocumentID = documentID.String
	a.ErrorCode = errorCode.String
	a.ErrorMessage = errorMessage.String
	if startedAt.Valid {
		t := startedAt.Time
		a.StartedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		a.CompletedAt = &t
	}
	if len(record) > 0 {
		var r ats.ResumeRecord
		if err := json.Unmarshal(record, &r); err != nil {
			return Analysis{}, fmt.Errorf("decode record for analysis %s: %w", a.ID, err)
		}
		a.Record = &r
	}
	if len(report) > 0 {
		var rep ats.ScoreReport
		if err := json.Unmarshal(report, &rep); err != nil {
			return Analysis{}, fmt.Errorf("decode report for analysis %s: %w", a.ID, err)
		}
		rep = rep.Normalize()
		a.Report = &rep
	}
	return a, nil
}

func marshalJSONB(value any) (any, error) {
	switch v := value.(type) {
	case *ats.ResumeRecord:
		if v == nil {
			return nil, nil
		}
	case *ats.ScoreReport:
		if v == nil {
			return nil, nil
		}
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Create inserts a new analysis.
func (r *PGRepo) Create(ctx context.Context, analysis Analysis) error {
	const query = `
INSERT INTO analyses (
	id, user_id, document_id, source, status, record, report,
	error_code, error_message, created_at, updated_at, started_at, completed_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	record, err := marshalJSONB(analysis.Record)
	if err != nil {
		return err
	}
	report, err := marshalJSONB(analysis.Report)
	if err != nil {
		return err
	}
	updatedAt := analysis.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = analysis.CreatedAt
	}
	_, err = r.DB.ExecContext(ctx, query,
		analysis.ID,
		analysis.UserID,
		nullIfEmpty(analysis.DocumentID),
		analysis.Source,
		analysis.Status,
		record,
		report,
		nullIfEmpty(analysis.ErrorCode),
		nullIfEmpty(analysis.ErrorMessage),
		analysis.CreatedAt,
		updatedAt,
		analysis.StartedAt,
		analysis.CompletedAt,
	)
	return err
}

// GetByID returns an analysis by ID.
func (r *PGRepo) GetByID(ctx context.Context, analysisID string) (Analysis, error) {
	query := `
SELECT ` + analysisColumns + `
FROM analyses
WHERE id = $1
LIMIT 1`
	a, err := scanAnalysis(r.DB.QueryRowContext(ctx, query, analysisID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Analysis{}, ErrNotFound
		}
		return Analysis{}, err
	}
	return a, nil
}

// ListByUser lists analyses newest first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Analysis, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	query := `
SELECT ` + analysisColumns + `
FROM analyses
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Analysis{}
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// LatestByUser returns the most recently completed analysis.
func (r *PGRepo) LatestByUser(ctx context.Context, userID string) (Analysis, error) {
	query := `
SELECT ` + analysisColumns + `
FROM analyses
WHERE user_id = $1 AND status = 'completed'
ORDER BY completed_at DESC, created_at DESC, id DESC
LIMIT 1`
	a, err := scanAnalysis(r.DB.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Analysis{}, ErrNotFound
		}
		return Analysis{}, err
	}
	return a, nil
}

// MarkProcessing claims a queued analysis. Zero affected rows means the
// analysis is missing or no longer queued; both report ErrNotQueued.
func (r *PGRepo) MarkProcessing(ctx context.Context, analysisID string, startedAt time.Time) error {
	const query = `
UPDATE analyses
SET status = 'processing', started_at = $2, updated_at = $2
WHERE id = $1 AND status = 'queued'`
	res, err := r.DB.ExecContext(ctx, query, analysisID, startedAt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotQueued
	}
	return nil
}

// Complete stores the record and report.
func (r *PGRepo) Complete(ctx context.Context, analysisID string, record *ats.ResumeRecord, report ats.ScoreReport, completedAt time.Time) error {
	const query = `
UPDATE analyses
SET status = 'completed', record = $2, report = $3, error_code = NULL, error_message = NULL,
    completed_at = $4, updated_at = $4
WHERE id = $1`
	recordPayload, err := marshalJSONB(record)
	if err != nil {
		return err
	}
	reportPayload, err := marshalJSONB(&report)
	if err != nil {
		return err
	}
	return execOne(ctx, r.DB, query, analysisID, recordPayload, reportPayload, completedAt)
}

// Fail records a failure.
func (r *PGRepo) Fail(ctx context.Context, analysisID, code, message string, completedAt time.Time) error {
	const query = `
UPDATE analyses
SET status = 'failed', error_code = $2, error_message = $3, completed_at = $4, updated_at = $4
WHERE id = $1`
	return execOne(ctx, r.DB, query, analysisID, code, message, completedAt)
}

func execOne(ctx context.Context, db *sql.DB, query string, args ...any) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repo = (*PGRepo)(nil)
