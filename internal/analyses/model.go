package analyses

import (
	"time"

	"ats-backend/internal/ats"
)

const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

const (
	// SourceRecord is an analysis of a record posted directly.
	SourceRecord = "record"
	// SourceDocument is an analysis of an uploaded document.
	SourceDocument = "document"
)

// Analysis is one scoring run, synchronous or queued.
type Analysis struct {
	ID           string            `json:"id"`
	UserID       string            `json:"userId"`
	DocumentID   string            `json:"documentId,omitempty"`
	Source       string            `json:"source"`
	Status       string            `json:"status"`
	Record       *ats.ResumeRecord `json:"record,omitempty"`
	Report       *ats.ScoreReport  `json:"report,omitempty"`
	ErrorCode    string            `json:"errorCode,omitempty"`
	ErrorMessage string            `json:"errorMessage,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
	StartedAt    *time.Time        `json:"startedAt,omitempty"`
	CompletedAt  *time.Time        `json:"completedAt,omitempty"`
}

// Terminal reports whether the analysis has finished.
func (a Analysis) Terminal() bool {
	return a.Status == StatusCompleted || a.Status == StatusFailed
}
