package documents

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo keeps documents in process memory. It backs dev runs without
// DATABASE_URL and the handler tests.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Document
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Document)}
}

// Create stores doc.
func (r *MemoryRepo) Create(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if doc.StorageProvider == "" {
		doc.StorageProvider = "local"
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[doc.ID] = doc
	return nil
}

// GetByID returns the document when userId owns it.
func (r *MemoryRepo) GetByID(ctx context.Context, userId, documentID string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.byID[documentID]
	if !ok || doc.UserID != userId {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

// GetCurrentByUser returns the user's newest upload.
func (r *MemoryRepo) GetCurrentByUser(ctx context.Context, userId string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	docs := r.owned(userId)
	r.mu.RUnlock()
	if len(docs) == 0 {
		return Document{}, ErrNotFound
	}
	return docs[0], nil
}

// ListByUser returns one page of the user's documents, newest first. A
// non-positive limit means no limit.
func (r *MemoryRepo) ListByUser(ctx context.Context, userId string, limit, offset int) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	docs := r.owned(userId)
	r.mu.RUnlock()

	offset = max(offset, 0)
	if offset >= len(docs) {
		return []Document{}, nil
	}
	docs = docs[offset:]
	if limit > 0 && limit < len(docs) {
		docs = docs[:limit]
	}
	return docs, nil
}

// UpdateExtraction records the extracted text key the first time only.
func (r *MemoryRepo) UpdateExtraction(ctx context.Context, userId, documentID, extractedKey string, extractedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.byID[documentID]
	if !ok || doc.UserID != userId {
		return ErrNotFound
	}
	if doc.ExtractedTextKey != "" {
		return nil
	}
	at := extractedAt
	doc.ExtractedTextKey = extractedKey
	doc.ExtractedAt = &at
	r.byID[documentID] = doc
	return nil
}

// owned returns a fresh newest-first slice; callers hold r.mu.
func (r *MemoryRepo) owned(userId string) []Document {
	out := []Document{}
	for _, doc := range r.byID {
		if doc.UserID == userId {
			out = append(out, doc)
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

var _ DocumentsRepo = (*MemoryRepo)(nil)
