package object

import (
	"context"
	"errors"
	"io"
)

// Storage providers recorded on documents.
const (
	ProviderLocal = "local"
	ProviderS3    = "s3"
)

// ErrNotFound is returned by Open when no object exists at the key.
var ErrNotFound = errors.New("object not found")

// ObjectStore defines the contract for saving and retrieving binary objects.
type ObjectStore interface {
	// Save stores r under a generated key in the user's namespace and reports
	// the sniffed content type.
	Save(ctx context.Context, userId string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	// SaveWithKey stores r at an exact key, replacing any existing object.
	SaveWithKey(ctx context.Context, storageKey string, contentType string, r io.Reader) (int64, error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	// Delete removes the object at key. Missing objects are not an error.
	Delete(ctx context.Context, storageKey string) error
	Provider() string
}
