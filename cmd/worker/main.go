package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"ats-backend/internal/analyses"
	"ats-backend/internal/bootstrap"
	"ats-backend/internal/queue"
	"ats-backend/internal/shared/config"
	"ats-backend/internal/shared/metrics"
	"ats-backend/internal/shared/storage/db"
	"ats-backend/internal/shared/telemetry"
	"ats-backend/internal/workerproc"
)

const (
	taskType          = "analysis"
	pollTimeout       = 5 * time.Second
	errorBackoff      = time.Second
	shutdownTimeout   = 30 * time.Second
	defaultQueueName  = "ats:analyses"
	outcomeCompleted  = "completed"
	outcomeFailed     = "failed"
	outcomeDropped    = "dropped"
	depthSampleWindow = 30 * time.Second
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		telemetry.Error("worker.config_invalid", map[string]any{"err": err})
		telemetry.Sync()
		os.Exit(1)
	}
	telemetry.Init(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, cfg, buildApp)
	stop()
	if err != nil {
		telemetry.Error("worker.exit", map[string]any{"err": err})
		telemetry.Sync()
		os.Exit(1)
	}
	telemetry.Sync()
}

func buildApp(cfg config.Config) (*bootstrap.App, error) {
	return bootstrap.BuildWithOptions(cfg, db.OptionsFromEnv(db.DefaultWorkerOptions(cfg.WorkerConcurrency)))
}

// run builds the app and consumes the queue until ctx is cancelled. The app
// is closed on every return path.
func run(ctx context.Context, cfg config.Config, build func(config.Config) (*bootstrap.App, error)) error {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		return errors.New("REDIS_URL is required")
	}
	app, err := build(cfg)
	if err != nil {
		return fmt.Errorf("bootstrap build: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			telemetry.Warn("worker.close_failed", map[string]any{"err": err})
		}
	}()
	if app.Queue == nil {
		return errors.New("redis queue unavailable")
	}

	w := &worker{
		consumer:    app.Queue,
		processor:   app.AnalysisProcessor,
		depth:       app.Queue.Len,
		queueName:   cfg.QueueName,
		concurrency: cfg.WorkerConcurrency,
		pollTimeout: pollTimeout,
	}
	telemetry.Info("worker.start", map[string]any{
		"queue":       cfg.QueueName,
		"concurrency": cfg.WorkerConcurrency,
	})
	w.run(ctx)
	return nil
}

type worker struct {
	consumer    queue.Consumer
	processor   workerproc.Processor
	depth       func(ctx context.Context) (int64, error)
	queueName   string
	concurrency int
	pollTimeout time.Duration
}

// run receives messages until ctx is cancelled, then waits for in-flight
// jobs up to shutdownTimeout.
func (w *worker) run(ctx context.Context) {
	queueName := w.queueName
	if queueName == "" {
		queueName = defaultQueueName
	}
	sem := make(chan struct{}, max(1, w.concurrency))
	var wg sync.WaitGroup
	lastDepth := time.Time{}

pollLoop:
	for {
		select {
		case <-ctx.Done():
			break pollLoop
		case sem <- struct{}{}:
		}

		if w.depth != nil && time.Since(lastDepth) > depthSampleWindow {
			if n, err := w.depth(ctx); err == nil {
				metrics.SetQueueDepth(queueName, n)
			}
			lastDepth = time.Now()
		}

		body, err := w.consumer.Receive(ctx, w.pollTimeout)
		if err != nil {
			<-sem
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				break pollLoop
			}
			if errors.Is(err, queue.ErrNoMessage) {
				continue
			}
			telemetry.Error("worker.receive_failed", map[string]any{"queue": queueName, "err": err})
			select {
			case <-ctx.Done():
				break pollLoop
			case <-time.After(errorBackoff):
			}
			continue
		}

		wg.Add(1)
		go func(body string) {
			defer wg.Done()
			defer func() { <-sem }()
			// Popped messages are never redelivered.
			handleMessage(context.WithoutCancel(ctx), w.processor, body)
		}(body)
	}

	telemetry.Info("worker.shutdown", map[string]any{"timeout": shutdownTimeout.String()})
	waitDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
	case <-time.After(shutdownTimeout):
		telemetry.Warn("worker.shutdown_timeout", nil)
	}
}

// handleMessage decodes and processes one message body and reports the outcome.
func handleMessage(ctx context.Context, processor workerproc.Processor, body string) string {
	decoded, meta, err := workerproc.ParseMessage(body)
	if err != nil {
		fields := map[string]any{
			"body_len": meta.BodyLen,
			"error":    err.Error(),
		}
		if meta.BodySHA != "" {
			fields["body_sha256"] = meta.BodySHA
		}
		var msgErr *workerproc.MessageError
		if errors.As(err, &msgErr) && msgErr.RequestID != "" {
			fields["request_id"] = msgErr.RequestID
		}
		telemetry.Error("worker.analysis.decode_failed", fields)
		metrics.WorkerJobDropped(taskType)
		return outcomeDropped
	}

	fields := map[string]any{
		"analysis_id": decoded.AnalysisID,
		"request_id":  decoded.RequestID,
		"enqueued_at": decoded.EnqueuedAt,
	}
	telemetry.Info("worker.analysis.received", fields)
	metrics.WorkerJobStarted(taskType)

	ctxWithParsed := workerproc.WithParsedMessage(ctx, decoded)
	if err := workerproc.HandleMessage(ctxWithParsed, processor, body); err != nil {
		fields["error"] = err.Error()
		telemetry.Error("worker.analysis.failed", fields)
		metrics.WorkerJobFailed(taskType, errorCode(err))
		return outcomeFailed
	}

	telemetry.Info("worker.analysis.completed", fields)
	metrics.WorkerJobCompleted(taskType)
	return outcomeCompleted
}

func errorCode(err error) string {
	var failure *analyses.FailureError
	if errors.As(err, &failure) {
		return failure.Code
	}
	return "UNKNOWN"
}
