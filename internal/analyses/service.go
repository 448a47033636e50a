package analyses

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"ats-backend/internal/ats"
	"ats-backend/internal/documents"
	"ats-backend/internal/extract"
	"ats-backend/internal/queue"
	"ats-backend/internal/resumeparser"
	"ats-backend/internal/schemas"
	"ats-backend/internal/shared/metrics"
	"ats-backend/internal/shared/storage/object"
	"ats-backend/internal/shared/telemetry"
)

const defaultParserTimeout = 60 * time.Second

// DocumentSource is what analyses need from the documents service.
type DocumentSource interface {
	Get(ctx context.Context, userID, documentID string) (documents.Document, error)
	Text(ctx context.Context, doc documents.Document) (string, error)
}

// Service contains business logic for analyses.
type Service struct {
	Repo      Repo
	Documents DocumentSource
	Parser    resumeparser.Parser
	JobQueue  queue.Client
	// ProcessInline runs document analyses in a goroutine of this process
	// when no JobQueue is configured.
	ProcessInline bool
	Evaluator     *ats.Evaluator
	ParserTimeout time.Duration
	Now           func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) evaluator() *ats.Evaluator {
	if s.Evaluator != nil {
		return s.Evaluator
	}
	return ats.NewEvaluator()
}

// Evaluate scores record without persisting anything.
func (s *Service) Evaluate(record *ats.ResumeRecord) ats.ScoreReport {
	return s.evaluator().Evaluate(record)
}

// ScoreRecord evaluates record and stores it as a completed analysis.
func (s *Service) ScoreRecord(ctx context.Context, userID string, record *ats.ResumeRecord) (Analysis, error) {
	if strings.TrimSpace(userID) == "" {
		return Analysis{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if record == nil {
		record = &ats.ResumeRecord{}
	}

	start := time.Now()
	metrics.IncAnalysisStarted()
	report := s.Evaluate(record)
	now := s.now()
	analysis := Analysis{
		ID:          uuid.NewString(),
		UserID:      userID,
		Source:      SourceRecord,
		Status:      StatusCompleted,
		Record:      record,
		Report:      &report,
		CreatedAt:   now,
		UpdatedAt:   now,
		StartedAt:   &now,
		CompletedAt: &now,
	}
	if err := s.Repo.Create(ctx, analysis); err != nil {
		metrics.IncAnalysisFailed(ErrorCodeStorage)
		return Analysis{}, fmt.Errorf("record analysis: %w", err)
	}

	metrics.IncAnalysisCompleted()
	metrics.ObserveAnalysisDuration(start)
	metrics.ObserveScore(report.Total, string(report.Rating))
	telemetry.Info("analysis.scored", map[string]any{
		"request_id":  requestIDFromContext(ctx),
		"user_id":     userID,
		"analysis_id": analysis.ID,
		"total":       report.Total,
		"rating":      string(report.Rating),
	})
	return analysis, nil
}

// StartFromDocument queues an analysis of one of the user's documents.
func (s *Service) StartFromDocument(ctx context.Context, userID, documentID string) (Analysis, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(documentID) == "" {
		return Analysis{}, fmt.Errorf("%w: user id and document id are required", ErrInvalidInput)
	}
	if s.Documents == nil {
		return Analysis{}, errors.New("documents not configured")
	}
	if s.JobQueue == nil && !s.ProcessInline {
		return Analysis{}, ErrJobQueueNotConfigured
	}

	doc, err := s.Documents.Get(ctx, userID, documentID)
	if err != nil {
		return Analysis{}, err
	}

	now := s.now()
	analysis := Analysis{
		ID:         uuid.NewString(),
		UserID:     userID,
		DocumentID: doc.ID,
		Source:     SourceDocument,
		Status:     StatusQueued,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Repo.Create(ctx, analysis); err != nil {
		return Analysis{}, fmt.Errorf("record analysis: %w", err)
	}

	requestID := requestIDFromContext(ctx)
	if s.JobQueue != nil {
		if err := s.JobQueue.Send(ctx, queue.NewMessage(analysis.ID, requestID, now)); err != nil {
			s.fail(ctx, analysis, ErrorCodeInternal, fmt.Errorf("enqueue: %w", err), nil)
			return Analysis{}, fmt.Errorf("enqueue analysis: %w", err)
		}
	} else {
		go s.processAsync(detached(ctx), analysis.ID)
	}

	telemetry.Info("analysis.status", map[string]any{
		"request_id":        requestID,
		"user_id":           userID,
		"document_id":       doc.ID,
		"analysis_id":       analysis.ID,
		"status":            StatusQueued,
		"status_transition": "->queued",
	})
	return analysis, nil
}

func (s *Service) processAsync(ctx context.Context, analysisID string) {
	if err := s.ProcessAnalysis(ctx, analysisID); err != nil {
		telemetry.Error("analysis.process_failed", map[string]any{
			"request_id":  requestIDFromContext(ctx),
			"analysis_id": analysisID,
			"err":         err,
		})
	}
}

// ProcessAnalysis runs a queued document analysis: extract, parse,
// evaluate, persist. Analyses that are already claimed or finished are
// skipped. A failed analysis is persisted with its error code and the
// cause is also returned.
func (s *Service) ProcessAnalysis(ctx context.Context, analysisID string) (err error) {
	analysis, err := s.Repo.GetByID(ctx, analysisID)
	if err != nil {
		return fmt.Errorf("analysis lookup: %w", err)
	}
	if analysis.Status != StatusQueued {
		telemetry.Info("analysis.skip", map[string]any{
			"request_id":  requestIDFromContext(ctx),
			"analysis_id": analysisID,
			"status":      analysis.Status,
		})
		return nil
	}

	start := time.Now()
	startedAt := s.now()
	if err := s.Repo.MarkProcessing(ctx, analysisID, startedAt); err != nil {
		if errors.Is(err, ErrNotQueued) {
			return nil
		}
		return fmt.Errorf("set processing: %w", err)
	}
	metrics.IncAnalysisStarted()
	s.logTransition(ctx, analysis, StatusProcessing, "queued->processing", nil)

	defer func() {
		if r := recover(); r != nil {
			panicErr := fmt.Errorf("panic: %v", r)
			s.fail(ctx, analysis, ErrorCodeInternal, panicErr, &start)
			err = &FailureError{AnalysisID: analysisID, Code: ErrorCodeInternal, Err: panicErr}
		}
	}()

	record, report, runErr := s.run(ctx, analysis)
	if runErr != nil {
		code := classifyFailure(runErr)
		s.fail(ctx, analysis, code, runErr, &start)
		return &FailureError{AnalysisID: analysisID, Code: code, Err: runErr}
	}

	completedAt := s.now()
	if err := s.Repo.Complete(ctx, analysisID, &record, report, completedAt); err != nil {
		s.fail(ctx, analysis, ErrorCodeStorage, err, &start)
		return &FailureError{AnalysisID: analysisID, Code: ErrorCodeStorage, Err: fmt.Errorf("%w: set analysis result: %w", errStorage, err)}
	}

	metrics.IncAnalysisCompleted()
	metrics.ObserveAnalysisDuration(start)
	metrics.ObserveScore(report.Total, string(report.Rating))
	s.logTransition(ctx, analysis, StatusCompleted, "processing->completed", map[string]any{
		"duration_ms": float64(time.Since(start).Microseconds()) / 1000.0,
		"total":       report.Total,
		"rating":      string(report.Rating),
	})
	return nil
}

func (s *Service) run(ctx context.Context, analysis Analysis) (ats.ResumeRecord, ats.ScoreReport, error) {
	if s.Documents == nil {
		return ats.ResumeRecord{}, ats.ScoreReport{}, errors.New("documents not configured")
	}
	doc, err := s.Documents.Get(ctx, analysis.UserID, analysis.DocumentID)
	if err != nil {
		return ats.ResumeRecord{}, ats.ScoreReport{}, fmt.Errorf("%w: document lookup id=%s: %w", errStorage, analysis.DocumentID, err)
	}

	text, err := s.Documents.Text(ctx, doc)
	if err != nil {
		if errors.Is(err, extract.ErrNoText) || errors.Is(err, extract.ErrUnsupportedType) {
			return ats.ResumeRecord{}, ats.ScoreReport{}, fmt.Errorf("document %s: %w", doc.ID, err)
		}
		return ats.ResumeRecord{}, ats.ScoreReport{}, fmt.Errorf("%w: document %s text: %w", errStorage, doc.ID, err)
	}

	parser := s.Parser
	if parser == nil {
		parser = resumeparser.PlaceholderParser{}
	}
	timeout := s.ParserTimeout
	if timeout <= 0 {
		timeout = defaultParserTimeout
	}
	parseCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	record, err := parser.ParseResume(parseCtx, text)
	if err != nil {
		if errors.Is(parseCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
		}
		return ats.ResumeRecord{}, ats.ScoreReport{}, fmt.Errorf("parse resume: %w", err)
	}

	report := s.Evaluate(&record)
	return record, report, nil
}

func (s *Service) fail(ctx context.Context, analysis Analysis, code string, cause error, start *time.Time) {
	msg := sanitizeError(cause)
	if err := s.Repo.Fail(context.WithoutCancel(ctx), analysis.ID, code, msg, s.now()); err != nil {
		telemetry.Error("analysis.fail_update", map[string]any{
			"analysis_id": analysis.ID,
			"err":         err,
			"cause":       msg,
		})
	}
	metrics.IncAnalysisFailed(code)
	fields := map[string]any{
		"error_code":    code,
		"error_message": msg,
	}
	if start != nil {
		metrics.ObserveAnalysisDuration(*start)
		fields["duration_ms"] = float64(time.Since(*start).Microseconds()) / 1000.0
	}
	from := analysis.Status
	if from == StatusQueued && start != nil {
		from = StatusProcessing
	}
	s.logTransition(ctx, analysis, StatusFailed, from+"->failed", fields)
}

func (s *Service) logTransition(ctx context.Context, analysis Analysis, status, transition string, extra map[string]any) {
	fields := map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"user_id":           analysis.UserID,
		"document_id":       analysis.DocumentID,
		"analysis_id":       analysis.ID,
		"status":            status,
		"status_transition": transition,
	}
	for k, v := range extra {
		fields[k] = v
	}
	telemetry.Info("analysis.status", fields)
}

// Get returns one of the user's analyses.
func (s *Service) Get(ctx context.Context, userID, analysisID string) (Analysis, error) {
	if strings.TrimSpace(userID) == "" {
		return Analysis{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if _, err := uuid.Parse(analysisID); err != nil {
		return Analysis{}, ErrNotFound
	}
	analysis, err := s.Repo.GetByID(ctx, analysisID)
	if err != nil {
		return Analysis{}, err
	}
	if analysis.UserID != userID {
		return Analysis{}, ErrNotFound
	}
	return analysis, nil
}

// List returns analyses for a user ordered newest-first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Analysis, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// Latest returns the user's most recently completed analysis.
func (s *Service) Latest(ctx context.Context, userID string) (Analysis, error) {
	if strings.TrimSpace(userID) == "" {
		return Analysis{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return s.Repo.LatestByUser(ctx, userID)
}

// Export returns the download envelope of a completed analysis.
func (s *Service) Export(ctx context.Context, userID, analysisID string) (ExportEnvelope, error) {
	analysis, err := s.Get(ctx, userID, analysisID)
	if err != nil {
		return ExportEnvelope{}, err
	}
	return ExportFromAnalysis(analysis)
}

func classifyFailure(err error) string {
	if err == nil {
		return ErrorCodeInternal
	}
	var validationErr *schemas.ValidationError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorCodeParserTimeout
	case errors.Is(err, resumeparser.ErrOutputInvalid), errors.As(err, &validationErr):
		return ErrorCodeParserOutputInvalid
	case errors.Is(err, extract.ErrNoText), errors.Is(err, extract.ErrUnsupportedType), errors.Is(err, ErrInvalidInput):
		return ErrorCodeValidation
	case errors.Is(err, errStorage), errors.Is(err, documents.ErrNotFound), errors.Is(err, object.ErrNotFound):
		return ErrorCodeStorage
	default:
		return ErrorCodeInternal
	}
}

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	const maxLen = 500
	if len(msg) > maxLen {
		msg = strings.ToValidUTF8(msg[:maxLen], "")
	}
	return msg
}
