package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds application configuration.
type Config struct {
	Port            string   `validate:"required,numeric"`
	Env             string   `validate:"oneof=dev local staging production"`
	CORSAllowOrigin []string `validate:"dive,required"`

	DatabaseURL string

	ObjectStoreType string `validate:"oneof=local s3"`
	LocalStoreDir   string `validate:"required_if=ObjectStoreType local"`
	AWSRegion       string
	S3Bucket        string `validate:"required_if=ObjectStoreType s3"`
	S3Prefix        string
	SSEKMSKeyID     string

	RedisURL  string
	QueueName string `validate:"required"`

	ParserProvider string        `validate:"oneof=openai gemini none"`
	ParserModel    string
	OpenAIAPIKey   string        `validate:"required_if=ParserProvider openai"`
	OpenAIBaseURL  string        `validate:"omitempty,url"`
	GeminiAPIKey   string        `validate:"required_if=ParserProvider gemini"`
	ParserTimeout  time.Duration `validate:"gt=0"`

	KeywordMatch string `validate:"oneof=substring word"`

	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=json console"`

	RateLimitScoreRPS   float64 `validate:"gt=0"`
	RateLimitScoreBurst int     `validate:"gte=1"`
	WorkerConcurrency   int     `validate:"gte=1"`
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	return Config{
		Port:                getEnv("PORT", "8080"),
		Env:                 env,
		CORSAllowOrigin:     splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		DatabaseURL:         dbURL,
		ObjectStoreType:     normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:       getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:           getEnv("AWS_REGION", ""),
		S3Bucket:            getEnv("S3_BUCKET", ""),
		S3Prefix:            getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:         getEnv("SSE_KMS_KEY_ID", ""),
		RedisURL:            getEnv("REDIS_URL", ""),
		QueueName:           getEnv("QUEUE_NAME", "ats:analyses"),
		ParserProvider:      normalizeProvider(getEnv("PARSER_PROVIDER", "none")),
		ParserModel:         getEnv("PARSER_MODEL", ""),
		OpenAIAPIKey:        getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:       getEnv("OPENAI_BASE_URL", ""),
		GeminiAPIKey:        getEnv("GEMINI_API_KEY", ""),
		ParserTimeout:       time.Duration(getInt("PARSER_TIMEOUT_SECONDS", 60)) * time.Second,
		KeywordMatch:        normalizeKeywordMatch(getEnv("ATS_KEYWORD_MATCH", "substring")),
		LogLevel:            strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:           normalizeLogFormat(getEnv("LOG_FORMAT", "json")),
		RateLimitScoreRPS:   getFloat("RATE_LIMIT_SCORE_RPS", 2),
		RateLimitScoreBurst: getInt("RATE_LIMIT_SCORE_BURST", 5),
		WorkerConcurrency:   getInt("WORKER_CONCURRENCY", 4),
	}
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Production reports whether the service runs in production.
func (c Config) Production() bool {
	return c.Env == "production"
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("config: %s=%q is not an integer, using %d", key, raw, def)
		return def
	}
	return v
}

func getFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("config: %s=%q is not a number, using %g", key, raw, def)
		return def
	}
	return v
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "openai", "azure":
		return "openai"
	case "gemini", "google":
		return "gemini"
	default:
		return "none"
	}
}

func normalizeKeywordMatch(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "word", "wholeword", "whole_word", "whole-word":
		return "word"
	default:
		return "substring"
	}
}

func normalizeLogFormat(raw string) string {
	if strings.ToLower(strings.TrimSpace(raw)) == "console" {
		return "console"
	}
	return "json"
}
