package resumeparser

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ats-backend/internal/ats"
)

type scriptedCompleter struct {
	answers []string
	errs    []error
	calls   [][]Message
}

func (s *scriptedCompleter) Complete(ctx context.Context, messages []Message) (string, error) {
	i := len(s.calls)
	s.calls = append(s.calls, messages)
	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	if i < len(s.answers) {
		return s.answers[i], err
	}
	return "", err
}

type countingParser struct {
	errs  []error
	calls int
}

func (c *countingParser) ParseResume(ctx context.Context, text string) (ats.ResumeRecord, error) {
	i := c.calls
	c.calls++
	if i < len(c.errs) && c.errs[i] != nil {
		return ats.ResumeRecord{}, c.errs[i]
	}
	return ats.ResumeRecord{Name: "ok"}, nil
}

func TestStripCodeFences(t *testing.T) {
	cases := map[string]string{
		`{"a":1}`:                    `{"a":1}`,
		"```json\n{\"a\":1}\n```":    `{"a":1}`,
		"```\n{\"a\":1}\n```":        `{"a":1}`,
		"  ```JSON\n{\"a\":1}```  ":  `{"a":1}`,
		"":                           "",
	}
	for in, want := range cases {
		assert.Equal(t, want, StripCodeFences(in), "input %q", in)
	}
}

func TestDecode(t *testing.T) {
	record, err := Decode("```json\n{\"name\":\"Jane\",\"skills\":[\"Go\",\"SQL\"]}\n```")
	require.NoError(t, err)
	assert.Equal(t, "Jane", record.Name)
	assert.Len(t, record.Skills, 2)

	for _, bad := range []string{"", "not json", `["array"]`, `{"skills":"Go"}`} {
		_, err := Decode(bad)
		assert.ErrorIs(t, err, ErrOutputInvalid, "input %q", bad)
	}
}

func TestCompletionParserFixRoundTrip(t *testing.T) {
	completer := &scriptedCompleter{answers: []string{"oops", `{"name":"Jane"}`}}
	parser := NewCompletionParser(completer, "test")

	record, err := parser.ParseResume(context.Background(), "Jane")
	require.NoError(t, err)
	assert.Equal(t, "Jane", record.Name)
	require.Len(t, completer.calls, 2)
	assert.Contains(t, completer.calls[1][1].Content, "Previous answer:\noops")
}

func TestCompletionParserGivesUpAfterOneFix(t *testing.T) {
	completer := &scriptedCompleter{answers: []string{"oops", "still oops"}}
	_, err := NewCompletionParser(completer, "test").ParseResume(context.Background(), "Jane")
	assert.ErrorIs(t, err, ErrOutputInvalid)
	assert.Len(t, completer.calls, 2)
}

func TestCompletionParserProviderError(t *testing.T) {
	completer := &scriptedCompleter{errs: []error{errors.New("503 Service Unavailable")}}
	_, err := NewCompletionParser(completer, "test").ParseResume(context.Background(), "Jane")
	require.Error(t, err)
	assert.True(t, ShouldRetry(err))
	assert.Len(t, completer.calls, 1)
}

func TestPlaceholderParser(t *testing.T) {
	_, err := PlaceholderParser{}.ParseResume(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotConfigured)

	var nilParser *CompletionParser
	_, err = nilParser.ParseResume(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestRetryingParserRetriesTransientOnce(t *testing.T) {
	base := &countingParser{errs: []error{errors.New("read: connection reset by peer")}}
	parser := &RetryingParser{Base: base, Delay: time.Millisecond}

	record, err := parser.ParseResume(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "ok", record.Name)
	assert.Equal(t, 2, base.calls)
}

func TestRetryingParserSkipsPermanentErrors(t *testing.T) {
	base := &countingParser{errs: []error{ErrOutputInvalid}}
	parser := &RetryingParser{Base: base, Delay: time.Millisecond}

	_, err := parser.ParseResume(context.Background(), "x")
	assert.ErrorIs(t, err, ErrOutputInvalid)
	assert.Equal(t, 1, base.calls)
}

func TestShouldRetry(t *testing.T) {
	assert.False(t, ShouldRetry(nil))
	assert.False(t, ShouldRetry(ErrNotConfigured))
	assert.False(t, ShouldRetry(context.Canceled))
	assert.True(t, ShouldRetry(context.DeadlineExceeded))
	assert.True(t, ShouldRetry(errors.New("POST: 502 Bad Gateway")))
	assert.False(t, ShouldRetry(errors.New("400 Bad Request")))
	assert.Nil(t, WithRetry(nil))
}

func TestBuildPrompt(t *testing.T) {
	msgs := BuildPrompt(strings.Repeat("x", maxResumeChars+10))
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].Role)
	assert.LessOrEqual(t, len(msgs[1].Content), maxResumeChars+len("Résumé text:\n\n"))

	fix := BuildFixPrompt(`{"bad"`, "missing brace")
	assert.Contains(t, fix[1].Content, `"$schema"`)
	assert.Contains(t, fix[1].Content, "missing brace")
}
