package analyses

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"ats-backend/internal/analyses/recommendations"
	"ats-backend/internal/ats"
	"ats-backend/internal/documents"
	"ats-backend/internal/schemas"
	"ats-backend/internal/shared/server/middleware"
	"ats-backend/internal/shared/server/respond"
)

// maxRecordBytes caps a posted ResumeRecord.
const maxRecordBytes = 1 << 20

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/ats/evaluate", h.evaluate)
	rg.POST("/ats/score", h.score)
	rg.POST("/documents/:id/analyze", h.startAnalysis)
	rg.GET("/analyses", h.listAnalyses)
	rg.GET("/analyses/latest", h.latest)
	rg.GET("/analyses/:id", h.getAnalysis)
	rg.GET("/analyses/:id/export", h.export)
}

// AnalysisResponse is the wire form of an analysis.
type AnalysisResponse struct {
	AnalysisID   string                           `json:"analysisId"`
	DocumentID   string                           `json:"documentId,omitempty"`
	Source       string                           `json:"source"`
	Status       string                           `json:"status"`
	Record       *ats.ResumeRecord                `json:"record,omitempty"`
	Report       *ats.ScoreReport                 `json:"report,omitempty"`
	ActionItems  []recommendations.Recommendation `json:"actionItems,omitempty"`
	ErrorCode    string                           `json:"errorCode,omitempty"`
	ErrorMessage string                           `json:"errorMessage,omitempty"`
	CreatedAt    time.Time                        `json:"createdAt"`
	CompletedAt  *time.Time                       `json:"completedAt,omitempty"`
}

func toResponse(a Analysis, withRecord bool) AnalysisResponse {
	resp := AnalysisResponse{
		AnalysisID:  a.ID,
		DocumentID:  a.DocumentID,
		Source:      a.Source,
		Status:      a.Status,
		CreatedAt:   a.CreatedAt,
		CompletedAt: a.CompletedAt,
	}
	switch a.Status {
	case StatusCompleted:
		if a.Report != nil {
			report := a.Report.Normalize()
			resp.Report = &report
			resp.ActionItems = recommendations.FromReport(report)
		}
		if withRecord {
			resp.Record = a.Record
		}
	case StatusFailed:
		resp.ErrorCode = a.ErrorCode
		resp.ErrorMessage = a.ErrorMessage
	}
	return resp
}

func (h *Handler) readRecord(c *gin.Context) (*ats.ResumeRecord, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxRecordBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "record exceeds 1 MiB", nil)
			return nil, false
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read body", nil)
		return nil, false
	}

	record, err := schemas.DecodeResumeRecord(body)
	if err != nil {
		var validationErr *schemas.ValidationError
		switch {
		case errors.As(err, &validationErr):
			respond.Error(c, http.StatusBadRequest, "validation_error", "record does not match schema", validationErr.Errors)
		case errors.Is(err, schemas.ErrMalformedJSON):
			respond.Error(c, http.StatusBadRequest, "invalid_json", "body is not valid JSON", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to validate record", nil)
		}
		return nil, false
	}
	return record, true
}

func (h *Handler) evaluate(c *gin.Context) {
	record, ok := h.readRecord(c)
	if !ok {
		return
	}
	respond.OK(c, h.Svc.Evaluate(record))
}

func (h *Handler) score(c *gin.Context) {
	record, ok := h.readRecord(c)
	if !ok {
		return
	}
	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	analysis, err := h.Svc.ScoreRecord(ctx, middleware.UserIDFromContext(c), record)
	if err != nil {
		h.writeError(c, err, "failed to score record")
		return
	}
	c.Set("analysisId", analysis.ID)
	respond.JSON(c, http.StatusCreated, toResponse(analysis, false))
}

func (h *Handler) startAnalysis(c *gin.Context) {
	documentID := c.Param("id")
	c.Set("documentId", documentID)

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	analysis, err := h.Svc.StartFromDocument(ctx, middleware.UserIDFromContext(c), documentID)
	if err != nil {
		h.writeError(c, err, "failed to start analysis")
		return
	}
	c.Set("analysisId", analysis.ID)
	c.Set("statusTransition", "->queued")

	respond.JSON(c, http.StatusAccepted, gin.H{
		"analysisId": analysis.ID,
		"status":     analysis.Status,
	})
}

func (h *Handler) getAnalysis(c *gin.Context) {
	analysisID := c.Param("id")
	c.Set("analysisId", analysisID)

	analysis, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), analysisID)
	if err != nil {
		h.writeError(c, err, "failed to fetch analysis")
		return
	}
	respond.OK(c, toResponse(analysis, true))
}

func (h *Handler) latest(c *gin.Context) {
	analysis, err := h.Svc.Latest(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		h.writeError(c, err, "failed to fetch analysis")
		return
	}
	c.Set("analysisId", analysis.ID)
	respond.OK(c, toResponse(analysis, true))
}

func (h *Handler) export(c *gin.Context) {
	analysisID := c.Param("id")
	c.Set("analysisId", analysisID)

	envelope, err := h.Svc.Export(c.Request.Context(), middleware.UserIDFromContext(c), analysisID)
	if err != nil {
		h.writeError(c, err, "failed to export analysis")
		return
	}
	payload, err := envelope.MarshalIndent()
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to export analysis", nil)
		return
	}
	respond.Attachment(c, envelope.Filename(analysisID), payload)
}

// ListItem is one row of the history listing.
type ListItem struct {
	AnalysisID string     `json:"analysisId"`
	DocumentID string     `json:"documentId,omitempty"`
	Source     string     `json:"source"`
	Status     string     `json:"status"`
	Total      *int       `json:"total,omitempty"`
	Rating     ats.Rating `json:"rating,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

func (h *Handler) listAnalyses(c *gin.Context) {
	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 1 {
		limit = 1
	}
	if limit > 50 {
		limit = 50
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	analyses, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), limit, offset)
	if err != nil {
		h.writeError(c, err, "failed to list analyses")
		return
	}

	resp := make([]ListItem, 0, len(analyses))
	for _, a := range analyses {
		item := ListItem{
			AnalysisID: a.ID,
			DocumentID: a.DocumentID,
			Source:     a.Source,
			Status:     a.Status,
			CreatedAt:  a.CreatedAt,
		}
		if a.Status == StatusCompleted && a.Report != nil {
			total := a.Report.Total
			item.Total = &total
			item.Rating = a.Report.Rating
		}
		resp = append(resp, item)
	}
	respond.OK(c, resp)
}

func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
	case errors.Is(err, documents.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
	case errors.Is(err, ErrInvalidInput), errors.Is(err, documents.ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrNotReady):
		respond.Error(c, http.StatusConflict, "not_ready", "analysis has not completed", nil)
	case errors.Is(err, ErrJobQueueNotConfigured):
		respond.Error(c, http.StatusServiceUnavailable, "queue_unavailable", "analysis queue is not configured", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
