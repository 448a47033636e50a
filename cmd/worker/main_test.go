package main

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"ats-backend/internal/analyses"
	"ats-backend/internal/bootstrap"
	"ats-backend/internal/queue"
	"ats-backend/internal/shared/config"
)

type fakeConsumer struct {
	mu     sync.Mutex
	bodies []string
}

func (f *fakeConsumer) Receive(ctx context.Context, timeout time.Duration) (string, error) {
	f.mu.Lock()
	if len(f.bodies) > 0 {
		body := f.bodies[0]
		f.bodies = f.bodies[1:]
		f.mu.Unlock()
		return body, nil
	}
	f.mu.Unlock()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(timeout):
		return "", queue.ErrNoMessage
	}
}

type fakeProcessor struct {
	mu  sync.Mutex
	ids []string
	err error
}

func (f *fakeProcessor) ProcessAnalysis(ctx context.Context, analysisID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, analysisID)
	return f.err
}

func (f *fakeProcessor) processed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ids)
}

func encodedMessage(t *testing.T, id string) string {
	t.Helper()
	body, err := queue.EncodeMessage(queue.NewMessage(id, "req-"+id, time.Now()))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return string(body)
}

func TestHandleMessageCompleted(t *testing.T) {
	proc := &fakeProcessor{}
	if got := handleMessage(context.Background(), proc, encodedMessage(t, "a-1")); got != outcomeCompleted {
		t.Fatalf("expected %s, got %s", outcomeCompleted, got)
	}
	if proc.ids[0] != "a-1" {
		t.Fatalf("unexpected processed ids %v", proc.ids)
	}
}

func TestHandleMessageFailed(t *testing.T) {
	proc := &fakeProcessor{err: &analyses.FailureError{AnalysisID: "a-2", Code: analyses.ErrorCodeParserTimeout, Err: context.DeadlineExceeded}}
	if got := handleMessage(context.Background(), proc, encodedMessage(t, "a-2")); got != outcomeFailed {
		t.Fatalf("expected %s, got %s", outcomeFailed, got)
	}
}

func TestHandleMessageDropsInvalidJSON(t *testing.T) {
	proc := &fakeProcessor{}
	if got := handleMessage(context.Background(), proc, "{bad-json"); got != outcomeDropped {
		t.Fatalf("expected %s, got %s", outcomeDropped, got)
	}
	if got := handleMessage(context.Background(), proc, `{"requestId":"r"}`); got != outcomeDropped {
		t.Fatalf("expected %s for missing id, got %s", outcomeDropped, got)
	}
	if proc.processed() != 0 {
		t.Fatalf("expected no processing, got %d", proc.processed())
	}
}

func TestErrorCode(t *testing.T) {
	wrapped := errors.Join(errors.New("x"), &analyses.FailureError{Code: analyses.ErrorCodeStorage})
	if got := errorCode(wrapped); got != analyses.ErrorCodeStorage {
		t.Fatalf("expected %s, got %s", analyses.ErrorCodeStorage, got)
	}
	if got := errorCode(errors.New("plain")); got != "UNKNOWN" {
		t.Fatalf("expected UNKNOWN, got %s", got)
	}
}

func TestWorkerRunDrainsQueueAndStops(t *testing.T) {
	consumer := &fakeConsumer{bodies: []string{
		encodedMessage(t, "a-1"),
		"not json",
		encodedMessage(t, "a-2"),
		encodedMessage(t, "a-3"),
	}}
	proc := &fakeProcessor{}
	w := &worker{
		consumer:    consumer,
		processor:   proc,
		concurrency: 2,
		pollTimeout: 10 * time.Millisecond,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for proc.processed() < 3 {
		select {
		case <-deadline:
			cancel()
			t.Fatalf("timed out, processed %d", proc.processed())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}

func TestRunRequiresRedisURL(t *testing.T) {
	built := false
	err := run(context.Background(), config.Config{}, func(config.Config) (*bootstrap.App, error) {
		built = true
		return &bootstrap.App{}, nil
	})
	if err == nil {
		t.Fatalf("expected error without REDIS_URL")
	}
	if built {
		t.Fatalf("app should not be built without REDIS_URL")
	}
}

func TestRunClosesAppWhenQueueMissing(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})

	err := run(context.Background(), config.Config{RedisURL: "redis://" + srv.Addr()}, func(config.Config) (*bootstrap.App, error) {
		return &bootstrap.App{Redis: client}, nil
	})
	if err == nil {
		t.Fatalf("expected error when queue is unavailable")
	}
	if pingErr := client.Ping(context.Background()).Err(); !errors.Is(pingErr, redis.ErrClosed) {
		t.Fatalf("expected redis client to be closed, got %v", pingErr)
	}
}

func TestRunReportsBuildFailure(t *testing.T) {
	boom := errors.New("db down")
	err := run(context.Background(), config.Config{RedisURL: "redis://localhost:6379"}, func(config.Config) (*bootstrap.App, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected build error, got %v", err)
	}
}
