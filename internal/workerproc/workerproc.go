// Package workerproc turns queue payloads into analysis runs.
package workerproc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"ats-backend/internal/analyses"
	"ats-backend/internal/queue"
)

// Processor runs one queued analysis.
type Processor interface {
	ProcessAnalysis(ctx context.Context, analysisID string) error
}

// Reasons a payload is rejected before processing. MessageError wraps one.
var (
	ErrEmptyBody          = errors.New("empty message body")
	ErrMalformed          = errors.New("malformed message")
	ErrUnsupportedVersion = errors.New("unsupported message version")
	ErrMissingAnalysisID  = errors.New("missing analysis id")
)

// MessageMeta identifies a payload in logs without echoing it.
type MessageMeta struct {
	BodyLen int
	BodySHA string
}

func metaOf(body string) MessageMeta {
	if body == "" {
		return MessageMeta{}
	}
	sum := sha256.Sum256([]byte(body))
	return MessageMeta{BodyLen: len(body), BodySHA: hex.EncodeToString(sum[:])}
}

// MessageError is a payload the worker drops. Reason is one of the Err*
// sentinels above; Cause carries the decoder error, if any.
type MessageError struct {
	Reason    error
	Meta      MessageMeta
	RequestID string
	Version   int
	Cause     error
}

func (e *MessageError) Error() string {
	msg := e.Reason.Error()
	if e.Version != 0 {
		msg = fmt.Sprintf("%s %d", msg, e.Version)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *MessageError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Reason}
	}
	return []error{e.Reason, e.Cause}
}

// ParseMessage decodes and checks a queue payload. A missing version reads
// as the current one.
func ParseMessage(body string) (queue.Message, MessageMeta, error) {
	meta := metaOf(body)
	if strings.TrimSpace(body) == "" {
		return queue.Message{}, meta, &MessageError{Reason: ErrEmptyBody, Meta: meta}
	}

	msg, err := queue.DecodeMessage([]byte(body))
	if err != nil {
		return queue.Message{}, meta, &MessageError{Reason: ErrMalformed, Meta: meta, Cause: err}
	}
	if msg.Version == 0 {
		msg.Version = queue.MessageVersion
	}
	if msg.Version > queue.MessageVersion {
		return msg, meta, &MessageError{Reason: ErrUnsupportedVersion, Meta: meta, RequestID: msg.RequestID, Version: msg.Version}
	}
	if strings.TrimSpace(msg.AnalysisID) == "" {
		return msg, meta, &MessageError{Reason: ErrMissingAnalysisID, Meta: meta, RequestID: msg.RequestID}
	}
	return msg, meta, nil
}

type parsedMessageKey struct{}

// WithParsedMessage lets HandleMessage skip a second decode.
func WithParsedMessage(ctx context.Context, msg queue.Message) context.Context {
	return context.WithValue(ctx, parsedMessageKey{}, msg)
}

// HandleMessage runs the analysis named by body, or by the message stored
// with WithParsedMessage.
func HandleMessage(ctx context.Context, processor Processor, body string) error {
	if processor == nil {
		return errors.New("analysis processor not configured")
	}

	msg, ok := ctx.Value(parsedMessageKey{}).(queue.Message)
	if !ok {
		var err error
		if msg, _, err = ParseMessage(body); err != nil {
			return err
		}
	}
	if strings.TrimSpace(msg.AnalysisID) == "" {
		return &MessageError{Reason: ErrMissingAnalysisID, Meta: metaOf(body), RequestID: msg.RequestID}
	}

	if err := processor.ProcessAnalysis(analyses.WithRequestID(ctx, msg.RequestID), msg.AnalysisID); err != nil {
		return fmt.Errorf("process analysis %s: %w", msg.AnalysisID, err)
	}
	return nil
}
