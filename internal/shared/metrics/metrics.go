package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AnalysisStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ats_analysis_started_total",
		Help: "Total analyses started",
	})

	AnalysisCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ats_analysis_completed_total",
		Help: "Total analyses completed",
	})

	AnalysisFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ats_analysis_failed_total",
			Help: "Total analyses failed",
		},
		[]string{"error_code"},
	)

	AnalysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ats_analysis_duration_ms",
		Help:    "Analysis duration in milliseconds",
		Buckets: []float64{1, 5, 25, 100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000},
	})

	ScoreTotal = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ats_score_total",
		Help:    "Distribution of total ATS scores",
		Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 85, 90, 100},
	})

	RatingTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ats_rating_total",
			Help: "Evaluations by rating",
		},
		[]string{"rating"},
	)

	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	QueueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ats_queue_depth",
			Help: "Pending analysis messages per queue",
		},
		[]string{"queue"},
	)

	RateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ats_http_rate_limited_total",
			Help: "Requests rejected with 429 per rate group",
		},
		[]string{"group"},
	)
)

// IncAnalysisStarted increments the started counter.
func IncAnalysisStarted() {
	AnalysisStarted.Inc()
}

// IncAnalysisCompleted increments the completed counter.
func IncAnalysisCompleted() {
	AnalysisCompleted.Inc()
}

// IncAnalysisFailed increments the failed counter for an error code.
func IncAnalysisFailed(code string) {
	if code == "" {
		code = "UNKNOWN"
	}
	AnalysisFailed.WithLabelValues(code).Inc()
}

// ObserveAnalysisDuration records the time elapsed since start.
func ObserveAnalysisDuration(start time.Time) {
	ms := float64(time.Since(start)) / float64(time.Millisecond)
	if ms < 0 {
		ms = 0
	}
	AnalysisDuration.Observe(ms)
}

// ObserveScore records one evaluation outcome.
func ObserveScore(total int, rating string) {
	ScoreTotal.Observe(float64(total))
	RatingTotal.WithLabelValues(rating).Inc()
}

// Handler exposes the default registry in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// WorkerJobStarted marks one job of taskType as in flight.
func WorkerJobStarted(taskType string) {
	WorkerJobsActive.WithLabelValues(taskType).Inc()
}

// WorkerJobCompleted records a successful job and clears it from the gauge.
func WorkerJobCompleted(taskType string) {
	WorkerJobsActive.WithLabelValues(taskType).Dec()
	WorkerJobsCompleted.WithLabelValues(taskType).Inc()
}

// WorkerJobFailed records a failed job and clears it from the gauge.
func WorkerJobFailed(taskType, code string) {
	if code == "" {
		code = "UNKNOWN"
	}
	WorkerJobsActive.WithLabelValues(taskType).Dec()
	WorkerJobsFailed.WithLabelValues(taskType, code).Inc()
}

// WorkerJobDropped counts a message that could not be decoded.
func WorkerJobDropped(taskType string) {
	WorkerJobsFailed.WithLabelValues(taskType, "DECODE_ERROR").Inc()
}

// SetQueueDepth records the number of pending messages.
func SetQueueDepth(queueName string, depth int64) {
	QueueDepth.WithLabelValues(queueName).Set(float64(depth))
}

// IncRateLimited counts one request rejected by the limiter.
func IncRateLimited(group string) {
	RateLimited.WithLabelValues(group).Inc()
}
