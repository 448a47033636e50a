package resumeparser

import (
	"fmt"
	"strings"

	"ats-backend/internal/ats"
	"ats-backend/internal/schemas"
)

// StripCodeFences removes a surrounding ```json ... ``` block if present.
func StripCodeFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// drop the language tag line
		s = s[nl+1:]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// Decode validates provider output against the record schema and decodes it.
func Decode(raw string) (ats.ResumeRecord, error) {
	cleaned := StripCodeFences(raw)
	if cleaned == "" {
		return ats.ResumeRecord{}, fmt.Errorf("%w: empty response", ErrOutputInvalid)
	}
	record, err := schemas.DecodeResumeRecord([]byte(cleaned))
	if err != nil {
		return ats.ResumeRecord{}, fmt.Errorf("%w: %w", ErrOutputInvalid, err)
	}
	return *record, nil
}
