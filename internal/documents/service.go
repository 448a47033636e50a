package documents

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"ats-backend/internal/extract"
	"ats-backend/internal/shared/storage/object"
	"ats-backend/internal/shared/telemetry"
)

var validate = validator.New()

type uploadInput struct {
	UserID   string `validate:"required,max=200"`
	FileName string `validate:"required,max=255"`
}

// Service contains business logic for documents.
type Service struct {
	Store object.ObjectStore
	Repo  DocumentsRepo
	Now   func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Upload saves the file to object storage and records the document. Only
// PDF, DOCX and plain text are accepted.
func (s *Service) Upload(ctx context.Context, userId, fileName string, r io.Reader) (Document, error) {
	fileName = strings.TrimSpace(fileName)
	if err := validate.Struct(uploadInput{UserID: userId, FileName: fileName}); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	br := bufio.NewReaderSize(r, 512)
	head, err := br.Peek(512)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return Document{}, fmt.Errorf("read upload: %w", err)
	}
	if len(head) == 0 {
		return Document{}, fmt.Errorf("%w: file is empty", ErrInvalidInput)
	}
	sniffed := http.DetectContentType(head)
	if !extract.Supported(sniffed, fileName) {
		return Document{}, fmt.Errorf("%w: %s", ErrUnsupportedType, sniffed)
	}

	limited := &io.LimitedReader{R: br, N: MaxUploadBytes + 1}
	storageKey, size, mimeType, err := s.Store.Save(ctx, userId, fileName, limited)
	if err != nil {
		return Document{}, fmt.Errorf("save document: %w", err)
	}
	if size > MaxUploadBytes {
		s.discard(ctx, storageKey)
		return Document{}, ErrTooLarge
	}

	doc := Document{
		ID:              uuid.NewString(),
		UserID:          userId,
		FileName:        fileName,
		MimeType:        mimeType,
		SizeBytes:       size,
		StorageProvider: s.Store.Provider(),
		StorageKey:      storageKey,
		CreatedAt:       s.now(),
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		s.discard(ctx, storageKey)
		return Document{}, fmt.Errorf("record document: %w", err)
	}

	telemetry.Info("document.uploaded", map[string]any{
		"document_id": doc.ID,
		"user_id":     userId,
		"mime_type":   mimeType,
		"size_bytes":  size,
	})
	return doc, nil
}

// discard removes an object written by a rejected upload. It runs even when
// the request context is already cancelled.
func (s *Service) discard(ctx context.Context, storageKey string) {
	if err := s.Store.Delete(context.WithoutCancel(ctx), storageKey); err != nil {
		telemetry.Warn("document.discard_failed", map[string]any{
			"storage_key": storageKey,
			"err":         err,
		})
	}
}

// Current returns the most recent document for a user.
func (s *Service) Current(ctx context.Context, userId string) (Document, error) {
	if strings.TrimSpace(userId) == "" {
		return Document{}, ErrInvalidInput
	}
	return s.Repo.GetCurrentByUser(ctx, userId)
}

// Get returns one document owned by the user.
func (s *Service) Get(ctx context.Context, userId, documentID string) (Document, error) {
	if strings.TrimSpace(userId) == "" {
		return Document{}, ErrInvalidInput
	}
	if _, err := uuid.Parse(documentID); err != nil {
		return Document{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, userId, documentID)
}

// List returns a page of the user's documents, newest first.
func (s *Service) List(ctx context.Context, userId string, limit, offset int) ([]Document, error) {
	if strings.TrimSpace(userId) == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByUser(ctx, userId, limit, offset)
}

// Text returns the document's text, reusing the stored extraction when one
// exists and recording a fresh one otherwise.
func (s *Service) Text(ctx context.Context, doc Document) (string, error) {
	if doc.ExtractedTextKey != "" {
		if rc, err := s.Store.Open(ctx, doc.ExtractedTextKey); err == nil {
			defer rc.Close()
			data, err := io.ReadAll(rc)
			if err == nil && len(data) > 0 {
				return string(data), nil
			}
		}
	}

	text, err := extract.ExtractText(ctx, s.Store, doc.StorageKey, doc.MimeType, doc.FileName)
	if err != nil {
		return "", err
	}
	if err := s.Repo.UpdateExtraction(ctx, doc.UserID, doc.ID, extract.ExtractedKey(doc.StorageKey), s.now()); err != nil {
		telemetry.Error("document.extraction.record_failed", map[string]any{
			"document_id": doc.ID,
			"err":         err,
		})
	}
	return text, nil
}
