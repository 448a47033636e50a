package workerproc

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"ats-backend/internal/queue"
)

type recordingProcessor struct {
	ids []string
	err error
}

func (p *recordingProcessor) ProcessAnalysis(ctx context.Context, analysisID string) error {
	p.ids = append(p.ids, analysisID)
	return p.err
}

func encode(t *testing.T, msg queue.Message) string {
	t.Helper()
	body, err := queue.EncodeMessage(msg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return string(body)
}

func TestParseMessage(t *testing.T) {
	body := encode(t, queue.NewMessage("a-1", "req-1", time.Now()))
	msg, meta, err := ParseMessage(body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if msg.AnalysisID != "a-1" || msg.RequestID != "req-1" {
		t.Fatalf("unexpected message %+v", msg)
	}
	if meta.BodyLen != len(body) || len(meta.BodySHA) != 64 {
		t.Fatalf("unexpected meta %+v", meta)
	}
}

func TestParseMessageErrors(t *testing.T) {
	cases := []struct {
		name      string
		body      string
		reason    error
		requestID string
	}{
		{name: "blank", body: "  ", reason: ErrEmptyBody},
		{name: "not json", body: "{not json", reason: ErrMalformed},
		{name: "no analysis id", body: `{"requestId":"req-9"}`, reason: ErrMissingAnalysisID, requestID: "req-9"},
		{name: "newer version", body: `{"analysisId":"a","requestId":"req-7","version":7}`, reason: ErrUnsupportedVersion, requestID: "req-7"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, meta, err := ParseMessage(tc.body)
			if !errors.Is(err, tc.reason) {
				t.Fatalf("expected %v, got %v", tc.reason, err)
			}
			var msgErr *MessageError
			if !errors.As(err, &msgErr) {
				t.Fatalf("expected MessageError, got %T", err)
			}
			if msgErr.RequestID != tc.requestID || msgErr.Meta != meta {
				t.Fatalf("unexpected error details %+v", msgErr)
			}
		})
	}
}

func TestMessageErrorText(t *testing.T) {
	_, _, err := ParseMessage(`{"analysisId":"a","version":7}`)
	if err == nil || err.Error() != "unsupported message version 7" {
		t.Fatalf("unexpected error text %v", err)
	}
	_, _, err = ParseMessage("{not json")
	if err == nil || !strings.HasPrefix(err.Error(), "malformed message: ") {
		t.Fatalf("expected decoder cause in text, got %v", err)
	}
}

func TestParseMessageDefaultsVersion(t *testing.T) {
	msg, _, err := ParseMessage(`{"analysisId":"a"}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if msg.Version != queue.MessageVersion {
		t.Fatalf("expected version %d, got %d", queue.MessageVersion, msg.Version)
	}
}

func TestHandleMessageProcesses(t *testing.T) {
	proc := &recordingProcessor{}
	if err := HandleMessage(context.Background(), proc, encode(t, queue.Message{AnalysisID: "a-2"})); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(proc.ids) != 1 || proc.ids[0] != "a-2" {
		t.Fatalf("unexpected calls %v", proc.ids)
	}
}

func TestHandleMessageUsesParsedMessage(t *testing.T) {
	proc := &recordingProcessor{}
	ctx := WithParsedMessage(context.Background(), queue.Message{AnalysisID: "from-ctx"})
	if err := HandleMessage(ctx, proc, "ignored"); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if proc.ids[0] != "from-ctx" {
		t.Fatalf("expected parsed message to be reused, got %v", proc.ids)
	}
}

func TestHandleMessageWrapsProcessError(t *testing.T) {
	boom := errors.New("boom")
	proc := &recordingProcessor{err: boom}
	err := HandleMessage(context.Background(), proc, encode(t, queue.Message{AnalysisID: "a-3", RequestID: "r"}))

	if !errors.Is(err, boom) {
		t.Fatalf("expected processor error to be wrapped, got %v", err)
	}
	if !strings.Contains(err.Error(), "a-3") {
		t.Fatalf("expected analysis id in error, got %v", err)
	}
}

func TestHandleMessageRejectsParsedMessageWithoutID(t *testing.T) {
	proc := &recordingProcessor{}
	ctx := WithParsedMessage(context.Background(), queue.Message{RequestID: "r"})
	if err := HandleMessage(ctx, proc, "{}"); !errors.Is(err, ErrMissingAnalysisID) {
		t.Fatalf("expected ErrMissingAnalysisID, got %v", err)
	}
	if len(proc.ids) != 0 {
		t.Fatalf("expected no processing, got %v", proc.ids)
	}
}

func TestHandleMessageWithoutProcessor(t *testing.T) {
	if err := HandleMessage(context.Background(), nil, "{}"); err == nil {
		t.Fatal("expected error")
	}
}
