package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"ats-backend/internal/analyses"
	"ats-backend/internal/ats"
	"ats-backend/internal/documents"
	"ats-backend/internal/queue"
	"ats-backend/internal/resumeparser"
	"ats-backend/internal/resumeparser/gemini"
	"ats-backend/internal/resumeparser/openai"
	"ats-backend/internal/services/health"
	"ats-backend/internal/shared/config"
	"ats-backend/internal/shared/server"
	"ats-backend/internal/shared/storage/db"
	"ats-backend/internal/shared/storage/object"
	localstore "ats-backend/internal/shared/storage/object/local"
	s3store "ats-backend/internal/shared/storage/object/s3"
	"ats-backend/internal/shared/telemetry"
)

// App holds shared dependencies.
type App struct {
	Config            config.Config
	Router            *gin.Engine
	DB                *sql.DB
	Redis             *redis.Client
	Store             object.ObjectStore
	Queue             *queue.RedisQueue
	Parser            resumeparser.Parser
	DocumentsRepo     documents.DocumentsRepo
	AnalysesRepo      analyses.Repo
	DocumentsService  *documents.Service
	AnalysesService   *analyses.Service
	AnalysisProcessor AnalysisProcessor
	DocumentsHandler  *documents.Handler
	AnalysisHandler   *analyses.Handler
	Health            *health.Service
}

// AnalysisProcessor allows callers to override analysis processing for tests.
type AnalysisProcessor interface {
	ProcessAnalysis(ctx context.Context, analysisID string) error
}

// Build prepares shared dependencies and the HTTP router. Without
// DATABASE_URL (dev only) repositories live in memory; without REDIS_URL
// document analyses run inside the API process.
func Build(cfg config.Config) (*App, error) {
	return BuildWithOptions(cfg, db.OptionsFromEnv(db.DefaultServerOptions()))
}

// BuildWithOptions is Build with explicit database pool options.
func BuildWithOptions(cfg config.Config, dbOpts db.Options) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	if strings.TrimSpace(cfg.QueueName) == "" {
		cfg.QueueName = "ats:analyses"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg, dbOpts)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	redisClient, jobQueue, err := buildQueue(ctx, cfg)
	if err != nil {
		return nil, err
	}

	parser, err := buildParser(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Redis:  redisClient,
		Store:  store,
		Queue:  jobQueue,
		Parser: parser,
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          app.Config,
		DocumentHandler: app.DocumentsHandler,
		AnalysisHandler: app.AnalysisHandler,
		Health:          app.Health,
	})

	return app, nil
}

// Close releases the database and Redis connections.
func (a *App) Close() error {
	var errs []error
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	return errors.Join(errs...)
}

func buildDB(ctx context.Context, cfg config.Config, opts db.Options) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.db.memory", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.GetSingleton(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.db.memory", map[string]any{"reason": "connect failed", "err": err})
			return nil, nil
		}
		return nil, err
	}

	if isDevLike(cfg.Env) {
		if _, err := db.RunMigrations(ctx, sqlDB); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context, cfg config.Config) (*redis.Client, *queue.RedisQueue, error) {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		telemetry.Info("bootstrap.queue.inline", map[string]any{"reason": "REDIS_URL empty"})
		return nil, nil, nil
	}
	client, err := queue.NewRedisClient(cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	q := queue.NewRedisQueue(client, cfg.QueueName)
	if err := q.Ping(ctx); err != nil {
		_ = client.Close()
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.queue.inline", map[string]any{"reason": "redis ping failed", "err": err})
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, q, nil
}

func buildParser(ctx context.Context, cfg config.Config) (resumeparser.Parser, error) {
	switch cfg.ParserProvider {
	case "openai":
		return openai.NewParser(openai.Options{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.ParserModel,
			BaseURL: cfg.OpenAIBaseURL,
			Timeout: cfg.ParserTimeout,
		})
	case "gemini":
		return gemini.NewParser(ctx, cfg.GeminiAPIKey, cfg.ParserModel)
	default:
		return resumeparser.PlaceholderParser{}, nil
	}
}

func buildServices(app *App) error {
	var docRepo documents.DocumentsRepo
	var analysisRepo analyses.Repo
	if app.DB != nil {
		docRepo = &documents.PGRepo{DB: app.DB}
		analysisRepo = &analyses.PGRepo{DB: app.DB}
	} else {
		docRepo = documents.NewMemoryRepo()
		analysisRepo = analyses.NewMemoryRepo()
	}

	mode, err := ats.ParseKeywordMatch(app.Config.KeywordMatch)
	if err != nil {
		return err
	}

	docSvc := &documents.Service{
		Store: app.Store,
		Repo:  docRepo,
	}

	analysisSvc := &analyses.Service{
		Repo:          analysisRepo,
		Documents:     docSvc,
		Parser:        app.Parser,
		Evaluator:     ats.NewEvaluator(ats.WithKeywordMatch(mode)),
		ParserTimeout: app.Config.ParserTimeout,
	}
	checks := map[string]health.Pinger{}
	if app.DB != nil {
		checks["database"] = app.DB
	}
	if app.Queue != nil {
		analysisSvc.JobQueue = app.Queue
		checks["redis"] = health.PingFunc(app.Queue.Ping)
	} else {
		analysisSvc.ProcessInline = true
	}

	app.DocumentsRepo = docRepo
	app.AnalysesRepo = analysisRepo
	app.DocumentsService = docSvc
	app.AnalysesService = analysisSvc
	app.AnalysisProcessor = analysisSvc
	app.DocumentsHandler = documents.NewHandler(docSvc)
	app.AnalysisHandler = analyses.NewHandler(analysisSvc)
	app.Health = health.NewService(checks)

	if app.DocumentsHandler == nil || app.AnalysisHandler == nil {
		return errors.New("failed to initialize handlers")
	}
	return nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
