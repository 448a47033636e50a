package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ats-backend/internal/analyses"
	"ats-backend/internal/documents"
	"ats-backend/internal/services/health"
	"ats-backend/internal/shared/config"
	"ats-backend/internal/shared/metrics"
	"ats-backend/internal/shared/server/middleware"
	"ats-backend/internal/shared/server/respond"
)

const (
	rateGroupScoring = "SCORING"
	rateGroupPolling = "POLLING"
)

// RouterDeps carries the handlers mounted by NewRouter.
type RouterDeps struct {
	Config          config.Config
	DocumentHandler *documents.Handler
	AnalysisHandler *analyses.Handler
	Health          *health.Service
	Limiter         *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	cfg := deps.Config
	scoreRule := middleware.RateLimitRule{Rate: cfg.RateLimitScoreRPS, Burst: cfg.RateLimitScoreBurst}
	if scoreRule.Rate <= 0 {
		scoreRule.Rate = 2
	}
	if scoreRule.Burst <= 0 {
		scoreRule.Burst = 5
	}

	r.Use(
		middleware.RequestID(),
		middleware.Logging("/health", "/metrics"),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.Identity("/health", "/metrics", "/api/v1/health"),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				rateGroupScoring: scoreRule,
				rateGroupPolling: {Rate: 5, Burst: 10},
			},
			GroupFor: rateGroupFor,
			Limiter:  deps.Limiter,
		}),
	)

	healthHandler := func(c *gin.Context) {
		report := deps.Health.Status(c.Request.Context())
		status := http.StatusOK
		if !report.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, report)
	}
	r.GET("/health", healthHandler)
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", healthHandler)
	registerMeRoutes(api)
	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(api)
	}
	if deps.AnalysisHandler != nil {
		deps.AnalysisHandler.RegisterRoutes(api)
	}

	return r
}

// rateGroupFor buckets the routes that evaluate résumés apart from status polling.
func rateGroupFor(c *gin.Context) string {
	switch c.FullPath() {
	case "/api/v1/ats/evaluate", "/api/v1/ats/score", "/api/v1/documents/:id/analyze":
		return rateGroupScoring
	case "/api/v1/analyses/:id":
		return rateGroupPolling
	default:
		return ""
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
