package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // embedded zoneinfo for PIPELINE_TIMEZONE in slim images

	"github.com/joho/godotenv"
)

// DealsMode controls how a recommendation run treats rows generated earlier
// on the same snapshot date.
type DealsMode string

const (
	// DealsModeSupersede replaces same-day rows for a (product, deal type).
	DealsModeSupersede DealsMode = "supersede"
	// DealsModeAppend keeps every generated row.
	DealsModeAppend DealsMode = "append"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port         string
	Env          string
	JWTSecret    string
	AuthDisabled bool

	DB       DatabaseConfig
	Redis    RedisConfig
	Pipeline PipelineConfig
	Worker   WorkerConfig
	Metrics  MetricsConfig

	MigrationsPath   string
	CORSAllowedHosts []string
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig contains Redis connection parameters. An empty Host disables
// the snapshot cache.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	// TTL caps cache entries; zero means "until the end of the snapshot day".
	TTL time.Duration
}

// Enabled reports whether a Redis host was configured.
func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

// PipelineConfig tunes the batch computations.
type PipelineConfig struct {
	Concurrency   int
	Location      *time.Location
	FailureSample int
	DealsMode     DealsMode
}

// WorkerConfig contains the schedule of the optional pipeline worker.
type WorkerConfig struct {
	PipelineInterval time.Duration
	BusinessID       string
	VerticalID       string
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Prefix string
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Load .env if present; production relies on real environment variables.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.AuthDisabled = getEnvBool("AUTH_DISABLED", false)
	cfg.MigrationsPath = getEnv("MIGRATIONS_PATH", "file://migrations")
	cfg.CORSAllowedHosts = getEnvList("CORS_ALLOWED_HOSTS", "localhost:3000,127.0.0.1:3000")

	// Database
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", ""),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	var err error
	if cfg.Redis.TTL, err = parseDurationEnv("CACHE_TTL", "0s"); err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}

	// Pipeline
	cfg.Pipeline = PipelineConfig{
		Concurrency:   getEnvInt("PIPELINE_CONCURRENCY", 8),
		FailureSample: getEnvInt("PIPELINE_FAILURE_SAMPLE", 20),
		DealsMode:     DealsMode(strings.ToLower(getEnv("DEALS_MODE", string(DealsModeSupersede)))),
	}
	if cfg.Pipeline.Concurrency < 1 {
		return nil, errors.New("PIPELINE_CONCURRENCY must be >= 1")
	}
	if cfg.Pipeline.FailureSample < 0 {
		return nil, errors.New("PIPELINE_FAILURE_SAMPLE must be >= 0")
	}
	if cfg.Pipeline.DealsMode != DealsModeSupersede && cfg.Pipeline.DealsMode != DealsModeAppend {
		return nil, fmt.Errorf("invalid DEALS_MODE %q: expected supersede or append", cfg.Pipeline.DealsMode)
	}
	if cfg.Pipeline.Location, err = time.LoadLocation(getEnv("PIPELINE_TIMEZONE", "UTC")); err != nil {
		return nil, fmt.Errorf("invalid PIPELINE_TIMEZONE: %w", err)
	}

	// Worker
	if cfg.Worker.PipelineInterval, err = parseDurationEnv("PIPELINE_INTERVAL", "0s"); err != nil {
		return nil, fmt.Errorf("invalid PIPELINE_INTERVAL: %w", err)
	}
	cfg.Worker.BusinessID = getEnv("PIPELINE_BUSINESS_ID", "")
	cfg.Worker.VerticalID = getEnv("PIPELINE_VERTICAL_ID", "")

	// Metrics
	cfg.Metrics.Prefix = getEnv("METRICS_PREFIX", "revenue")

	// DB parameters are required
	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}

	if cfg.JWTSecret == "" && !cfg.AuthDisabled {
		return nil, errors.New("JWT_SECRET must be set for authentication (or AUTH_DISABLED=true)")
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// getEnvList splits a comma separated variable, dropping empty items.
func getEnvList(key, def string) []string {
	items := make([]string, 0)
	for _, item := range strings.Split(getEnv(key, def), ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, strings.ToLower(item))
		}
	}
	return items
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}
