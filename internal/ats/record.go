package ats

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ResumeRecord is the structured résumé produced by an upstream parser.
// Every field is optional; absent and empty values are treated the same.
type ResumeRecord struct {
	Name           string            `json:"name,omitempty"`
	Email          string            `json:"email,omitempty"`
	Phone          string            `json:"phone,omitempty"`
	Location       string            `json:"location,omitempty"`
	Summary        string            `json:"summary,omitempty"`
	Skills         []string          `json:"skills,omitempty"`
	Experience     []ExperienceEntry `json:"experience,omitempty"`
	Education      []EducationEntry  `json:"education,omitempty"`
	Projects       []ProjectEntry    `json:"projects,omitempty"`
	Certifications []string          `json:"certifications,omitempty"`
}

// ExperienceEntry is one position held.
type ExperienceEntry struct {
	Company          string     `json:"company,omitempty"`
	Position         string     `json:"position,omitempty"`
	Duration         string     `json:"duration,omitempty"`
	Responsibilities StringList `json:"responsibilities,omitempty"`
}

// EducationEntry is one degree or course of study.
type EducationEntry struct {
	Institution string `json:"institution,omitempty"`
	Degree      string `json:"degree,omitempty"`
	Duration    string `json:"duration,omitempty"`
}

// ProjectEntry is one listed project.
type ProjectEntry struct {
	Name         string   `json:"name,omitempty"`
	Description  string   `json:"description,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
}

// StringList decodes from either a JSON string or a JSON array of strings.
// Parsers emit responsibilities in both shapes.
type StringList []string

// UnmarshalJSON accepts "text", ["a","b"] and null.
func (l *StringList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*l = nil
		return nil
	}
	if trimmed[0] == '"' {
		var single string
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return err
		}
		if strings.TrimSpace(single) == "" {
			*l = nil
			return nil
		}
		*l = StringList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(trimmed, &many); err != nil {
		return err
	}
	*l = StringList(many)
	return nil
}

// serialize renders the record as compact lowercase JSON, the text that
// keyword matching scans in substring mode.
func (r *ResumeRecord) serialize() string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(buf.String()))
}

// values joins every string value in the record, lowercased, separated by
// newlines. Used by whole-word matching so JSON escapes never glue tokens.
func (r *ResumeRecord) values() string {
	parts := []string{r.Name, r.Email, r.Phone, r.Location, r.Summary}
	parts = append(parts, r.Skills...)
	for _, e := range r.Experience {
		parts = append(parts, e.Company, e.Position, e.Duration)
		parts = append(parts, e.Responsibilities...)
	}
	for _, e := range r.Education {
		parts = append(parts, e.Institution, e.Degree, e.Duration)
	}
	for _, p := range r.Projects {
		parts = append(parts, p.Name, p.Description)
		parts = append(parts, p.Technologies...)
	}
	parts = append(parts, r.Certifications...)
	return strings.ToLower(strings.Join(parts, "\n"))
}
