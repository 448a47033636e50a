package analyses

import (
	"encoding/json"
	"time"

	"ats-backend/internal/ats"
)

// ExportEnvelope is the downloadable form of a finished analysis.
type ExportEnvelope struct {
	ResumeAnalysis *ats.ResumeRecord `json:"resumeAnalysis"`
	AtsScore       ats.ScoreReport   `json:"atsScore"`
	Timestamp      string            `json:"timestamp"`
}

// BuildExport assembles an envelope stamped with at in RFC 3339 UTC.
func BuildExport(record *ats.ResumeRecord, report ats.ScoreReport, at time.Time) ExportEnvelope {
	if record == nil {
		record = &ats.ResumeRecord{}
	}
	return ExportEnvelope{
		ResumeAnalysis: record,
		AtsScore:       report.Normalize(),
		Timestamp:      at.UTC().Format(time.RFC3339),
	}
}

// ExportFromAnalysis builds the envelope of a completed analysis, stamped
// with its completion time.
func ExportFromAnalysis(a Analysis) (ExportEnvelope, error) {
	if a.Status != StatusCompleted || a.Report == nil || a.CompletedAt == nil {
		return ExportEnvelope{}, ErrNotReady
	}
	return BuildExport(a.Record, *a.Report, *a.CompletedAt), nil
}

// Filename is the suggested download name for an export.
func (e ExportEnvelope) Filename(analysisID string) string {
	return "ats-analysis-" + analysisID + ".json"
}

// MarshalIndent renders the envelope the way downloads are served.
func (e ExportEnvelope) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(e, "", "  ")
}
