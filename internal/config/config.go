package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/viper"

	"github.com/oks-citadel/applyflow/internal/logger"
)

// Queue backend identifiers accepted by QUEUE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// Config holds the application's configuration values.
type Config struct {
	ServerPort string
	Logging    logger.Config

	// QueueBackend selects the backing store: "memory" or "postgres".
	QueueBackend    string
	Database        *DBConfig
	StarvationBound int

	// Worker pool sizing and pacing.
	MaxWorkers        int
	VisibilityTimeout time.Duration
	PollInterval      time.Duration
	ExecutionTimeout  time.Duration

	// Retry policy.
	MaxAttempts        int
	BackoffBase        time.Duration
	BackoffMax         time.Duration
	AmbiguityThreshold int

	// Field mapping.
	ConfidenceFloor float64

	// External collaborators.
	StrategiesPath    string
	DriverURL         string
	ProfileServiceURL string
	CaptchaSolverURL  string
	OutcomeWebhookURL string
}

// DBConfig holds Postgres connection settings.
type DBConfig struct {
	Host            string
	Port            int
	Username        string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// LoadConfig reads configuration from environment variables and a .env file,
// sets sensible defaults, and validates required fields. It uses the Viper
// library to handle configuration loading and precedence.
func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")
	viper.SetDefault("LOG_OUTPUT", "stdout")
	viper.SetDefault("LOG_FILE", "applyflow.log")
	viper.SetDefault("QUEUE_BACKEND", "postgres")
	viper.SetDefault("STARVATION_BOUND", 10)
	viper.SetDefault("MAX_WORKERS", 4)
	viper.SetDefault("VISIBILITY_TIMEOUT", "5m")
	viper.SetDefault("POLL_INTERVAL", "2s")
	viper.SetDefault("EXECUTION_TIMEOUT", "90s")
	viper.SetDefault("MAX_ATTEMPTS", 5)
	viper.SetDefault("BACKOFF_BASE", "30s")
	viper.SetDefault("BACKOFF_MAX", "30m")
	viper.SetDefault("AMBIGUITY_THRESHOLD", 10)
	viper.SetDefault("CONFIDENCE_FLOOR", 0.7)
	viper.SetDefault("STRATEGIES_PATH", "strategies.yaml")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_USER", "applyflow")
	viper.SetDefault("DB_NAME", "applyflow")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 16)
	viper.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	viper.SetDefault("DB_CONN_MAX_IDLE_TIME", "5m")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Error("failed to read config file", "error", err)
		}
	}

	if viper.GetString("DRIVER_URL") == "" {
		return nil, fmt.Errorf("DRIVER_URL must be set")
	}
	if viper.GetString("PROFILE_SERVICE_URL") == "" {
		return nil, fmt.Errorf("PROFILE_SERVICE_URL must be set")
	}

	backend := viper.GetString("QUEUE_BACKEND")
	if backend != BackendMemory && backend != BackendPostgres {
		return nil, fmt.Errorf("unsupported queue backend: %s", backend)
	}

	floor := viper.GetFloat64("CONFIDENCE_FLOOR")
	if floor <= 0 || floor >= 1 {
		return nil, fmt.Errorf("CONFIDENCE_FLOOR must be between 0 and 1, got %v", floor)
	}

	return &Config{
		ServerPort: viper.GetString("SERVER_PORT"),
		Logging: logger.Config{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
			Output: viper.GetString("LOG_OUTPUT"),
			File:   viper.GetString("LOG_FILE"),
		},
		QueueBackend:    backend,
		StarvationBound: viper.GetInt("STARVATION_BOUND"),
		Database: &DBConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			Username:        viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			Database:        viper.GetString("DB_NAME"),
			SSLMode:         viper.GetString("DB_SSLMODE"),
			MaxOpenConns:    viper.GetInt("DB_MAX_OPEN_CONNS"),
			ConnMaxLifetime: viper.GetDuration("DB_CONN_MAX_LIFETIME"),
			ConnMaxIdleTime: viper.GetDuration("DB_CONN_MAX_IDLE_TIME"),
		},
		MaxWorkers:         viper.GetInt("MAX_WORKERS"),
		VisibilityTimeout:  viper.GetDuration("VISIBILITY_TIMEOUT"),
		PollInterval:       viper.GetDuration("POLL_INTERVAL"),
		ExecutionTimeout:   viper.GetDuration("EXECUTION_TIMEOUT"),
		MaxAttempts:        viper.GetInt("MAX_ATTEMPTS"),
		BackoffBase:        viper.GetDuration("BACKOFF_BASE"),
		BackoffMax:         viper.GetDuration("BACKOFF_MAX"),
		AmbiguityThreshold: viper.GetInt("AMBIGUITY_THRESHOLD"),
		ConfidenceFloor:    floor,
		StrategiesPath:     viper.GetString("STRATEGIES_PATH"),
		DriverURL:          viper.GetString("DRIVER_URL"),
		ProfileServiceURL:  viper.GetString("PROFILE_SERVICE_URL"),
		CaptchaSolverURL:   viper.GetString("CAPTCHA_SOLVER_URL"),
		OutcomeWebhookURL:  viper.GetString("OUTCOME_WEBHOOK_URL"),
	}, nil
}
