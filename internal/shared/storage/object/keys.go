package object

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

const maxFileNameRunes = 120

// ErrInvalidFileName is returned for names that are empty after cleaning or
// that try to climb out of the owner's namespace.
var ErrInvalidFileName = errors.New("invalid file name")

// ErrInvalidKey is returned for storage keys that are absolute or escape the
// store root.
var ErrInvalidKey = errors.New("invalid storage key")

// OwnerPrefix maps a principal ("guest:abc", "user-1") to a stable hex
// directory so raw identities never appear in object paths.
func OwnerPrefix(principal string) string {
	sum := sha256.Sum256([]byte(principal))
	return hex.EncodeToString(sum[:])
}

// CleanFileName flattens separators, drops control characters and caps the
// name length while keeping the extension.
func CleanFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", ErrInvalidFileName
	}
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '_'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, strings.TrimSpace(name))
	if cleaned == "" {
		return "", ErrInvalidFileName
	}
	if runes := []rune(cleaned); len(runes) > maxFileNameRunes {
		ext := path.Ext(cleaned)
		keep := maxFileNameRunes - len([]rune(ext))
		if keep < 1 {
			return string(runes[:maxFileNameRunes]), nil
		}
		cleaned = string([]rune(strings.TrimSuffix(cleaned, ext))[:keep]) + ext
	}
	return cleaned, nil
}

// NewKey returns "<owner prefix>/<uuid>_<clean name>".
func NewKey(principal, fileName string) (string, error) {
	cleaned, err := CleanFileName(fileName)
	if err != nil {
		return "", fmt.Errorf("%w: %q", err, fileName)
	}
	return path.Join(OwnerPrefix(principal), uuid.NewString()+"_"+cleaned), nil
}

// CleanKey validates a relative storage key.
func CleanKey(key string) (string, error) {
	clean := path.Clean(strings.ReplaceAll(key, "\\", "/"))
	if clean == "." || strings.HasPrefix(clean, "/") || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return clean, nil
}

// Sniff reads up to 512 bytes to detect the content type and returns a
// reader that still yields the full stream.
func Sniff(r io.Reader) (string, io.Reader, error) {
	var head [512]byte
	n, err := io.ReadFull(r, head[:])
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", nil, fmt.Errorf("read sniff: %w", err)
	}
	return http.DetectContentType(head[:n]), io.MultiReader(bytes.NewReader(head[:n]), r), nil
}
