package documents

import (
	"errors"
	"time"
)

// MaxUploadBytes caps a single résumé upload.
const MaxUploadBytes = 10 << 20

var (
	ErrNotFound        = errors.New("document not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnsupportedType = errors.New("unsupported document type")
	ErrTooLarge        = errors.New("document exceeds upload limit")
)

// Document represents an uploaded résumé owned by a user.
type Document struct {
	ID               string
	UserID           string
	FileName         string
	MimeType         string
	SizeBytes        int64
	StorageProvider  string
	StorageKey       string
	ExtractedTextKey string
	ExtractedAt      *time.Time
	CreatedAt        time.Time
}
