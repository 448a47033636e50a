// Package schemas validates structured résumé documents against the embedded
// JSON Schema before they reach the evaluator.
package schemas

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"ats-backend/internal/ats"
)

//go:embed resume_record.schema.json
var resumeRecordSchema string

// ErrMalformedJSON is returned when the document is not parseable JSON.
var ErrMalformedJSON = errors.New("document is not valid JSON")

// ValidationError represents a schema validation error with field paths.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf(" %d. %s: %s;", i+1, err.Field, err.Message))
	}
	return strings.TrimSuffix(sb.String(), ";")
}

// SchemaLoadError represents errors loading or compiling the schema itself.
type SchemaLoadError struct {
	Name    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Name, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Name, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

var (
	recordSchemaOnce sync.Once
	recordSchema     *gojsonschema.Schema
	recordSchemaErr  error
)

func compiledRecordSchema() (*gojsonschema.Schema, error) {
	recordSchemaOnce.Do(func() {
		recordSchema, recordSchemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(resumeRecordSchema))
		if recordSchemaErr != nil {
			recordSchemaErr = &SchemaLoadError{Name: "resume_record", Message: "compile failed", Cause: recordSchemaErr}
		}
	})
	return recordSchema, recordSchemaErr
}

// ResumeRecordSchema returns the raw schema document.
func ResumeRecordSchema() string {
	return resumeRecordSchema
}

// ValidateResumeRecord checks a JSON document against the résumé schema.
// The top level must be an object; unknown properties are allowed.
func ValidateResumeRecord(doc []byte) error {
	if !json.Valid(doc) {
		return ErrMalformedJSON
	}
	schema, err := compiledRecordSchema()
	if err != nil {
		return err
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	return toValidationError(result)
}

// DecodeResumeRecord validates doc and decodes it into a record.
func DecodeResumeRecord(doc []byte) (*ats.ResumeRecord, error) {
	if err := ValidateResumeRecord(doc); err != nil {
		return nil, err
	}
	var record ats.ResumeRecord
	if err := json.Unmarshal(doc, &record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	return &record, nil
}

func toValidationError(result *gojsonschema.Result) error {
	if result.Valid() {
		return nil
	}
	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
