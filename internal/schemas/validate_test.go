package schemas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateResumeRecord(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		wantError bool
	}{
		{"empty object", `{}`, false},
		{"full record", `{"name":"Ada","email":"a@b.c","skills":["go"],"experience":[{"company":"X","responsibilities":["a"]}],"education":[{"degree":"BSc"}]}`, false},
		{"responsibilities as string", `{"experience":[{"responsibilities":"Led things"}]}`, false},
		{"nulls allowed", `{"name":null,"skills":null,"experience":[{"responsibilities":null}]}`, false},
		{"extra properties allowed", `{"name":"Ada","linkedin":"https://example.com"}`, false},
		{"array at root", `[]`, true},
		{"string at root", `"resume"`, true},
		{"null at root", `null`, true},
		{"skills not array", `{"skills":"go, sql"}`, true},
		{"skill not string", `{"skills":[1,2]}`, true},
		{"experience entry not object", `{"experience":["Acme"]}`, true},
		{"responsibilities numeric", `{"experience":[{"responsibilities":7}]}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateResumeRecord([]byte(tt.doc))
			if !tt.wantError {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr), "error should be ValidationError type")
			assert.NotEmpty(t, validationErr.Errors)
		})
	}
}

func TestValidateResumeRecord_RootFieldName(t *testing.T) {
	err := ValidateResumeRecord([]byte(`42`))
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "(root)", validationErr.Errors[0].Field)
}

func TestValidateResumeRecord_Malformed(t *testing.T) {
	err := ValidateResumeRecord([]byte(`{ invalid json }`))
	assert.ErrorIs(t, err, ErrMalformedJSON)
}

func TestDecodeResumeRecord(t *testing.T) {
	record, err := DecodeResumeRecord([]byte(`{"name":"Ada","experience":[{"responsibilities":"Managed a team"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "Ada", record.Name)
	require.Len(t, record.Experience, 1)
	assert.Equal(t, []string{"Managed a team"}, []string(record.Experience[0].Responsibilities))

	_, err = DecodeResumeRecord([]byte(`[]`))
	assert.Error(t, err)
}

func TestResumeRecordSchemaCompiles(t *testing.T) {
	_, err := compiledRecordSchema()
	require.NoError(t, err)
	assert.Contains(t, ResumeRecordSchema(), `"ResumeRecord"`)
}

func TestSchemaLoadErrorUnwraps(t *testing.T) {
	cause := errors.New("bad keyword")
	err := error(&SchemaLoadError{Name: "resume_record", Message: "compile failed", Cause: cause})
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to load schema resume_record: compile failed: bad keyword", err.Error())
}
