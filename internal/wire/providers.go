package wire

import (
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/oks-citadel/applyflow/internal/adapter"
	"github.com/oks-citadel/applyflow/internal/app"
	"github.com/oks-citadel/applyflow/internal/config"
	"github.com/oks-citadel/applyflow/internal/core"
	"github.com/oks-citadel/applyflow/internal/db"
	"github.com/oks-citadel/applyflow/internal/driver"
	"github.com/oks-citadel/applyflow/internal/engine"
	"github.com/oks-citadel/applyflow/internal/logger"
	"github.com/oks-citadel/applyflow/internal/mapper"
	"github.com/oks-citadel/applyflow/internal/observability"
	"github.com/oks-citadel/applyflow/internal/profile"
	"github.com/oks-citadel/applyflow/internal/queue"
	"github.com/oks-citadel/applyflow/internal/recorder"
	"github.com/oks-citadel/applyflow/internal/registry"
	"github.com/oks-citadel/applyflow/internal/server"
	"github.com/oks-citadel/applyflow/internal/storage"
)

var AppSet = wire.NewSet(
	app.NewApp,
	server.NewServer,
	logger.NewLogger,
	config.LoadConfig,
	recorder.New,
	engine.NewPool,
	provideMetrics,
	provideRetryController,
	provideDatabase,
	provideQueue,
	provideOutcomeStore,
	provideRegistry,
	provideMapper,
	provideAdapterSet,
	provideDriverFactory,
	provideProfileService,
	provideCaptchaSolver,
	provideOutcomeSink,
	providePoolConfig,
	providePrometheusRegistry,
	provideLoggerConfig,
	provideLogWriter,
)

// newExternalHTTPClient creates the HTTP client shared by the automation
// driver, profile service, and webhook clients. Driver calls can block on
// page navigation, so the timeout is generous.
func newExternalHTTPClient() *http.Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxConnsPerHost:     10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DisableKeepAlives:   false,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   2 * time.Minute,
	}
}

// provideDatabase connects to Postgres only when the queue backend needs it.
// The memory backend runs without a database.
func provideDatabase(cfg *config.Config) (*db.DB, func(), error) {
	if cfg.QueueBackend != config.BackendPostgres {
		return nil, func() {}, nil
	}
	return db.NewDatabase(cfg.Database)
}

func provideQueue(cfg *config.Config, dbConn *db.DB) queue.Queue {
	if cfg.QueueBackend == config.BackendPostgres {
		return queue.NewPostgresQueue(dbConn.DB, cfg.StarvationBound)
	}
	return queue.NewMemoryQueue(cfg.StarvationBound)
}

func provideOutcomeStore(cfg *config.Config, dbConn *db.DB) storage.OutcomeStore {
	if cfg.QueueBackend == config.BackendPostgres {
		return storage.NewStore(dbConn.DB)
	}
	return storage.NewMemoryStore()
}

func provideRegistry(cfg *config.Config) (*registry.Registry, error) {
	if cfg.StrategiesPath == "" {
		return registry.New(nil)
	}
	return registry.LoadFile(cfg.StrategiesPath)
}

func provideMapper(cfg *config.Config) *mapper.Mapper {
	return mapper.New(cfg.ConfidenceFloor)
}

func provideAdapterSet(m *mapper.Mapper, solver core.CaptchaSolver, l *slog.Logger) *adapter.Set {
	return adapter.NewSet(
		adapter.NewGeneric(m, solver, l),
		adapter.NewGreenhouse(m, solver, l),
		adapter.NewLever(m, solver, l),
		adapter.NewWorkday(m, solver, l),
	)
}

func provideDriverFactory(cfg *config.Config, l *slog.Logger) core.DriverFactory {
	return driver.NewFactory(cfg.DriverURL, newExternalHTTPClient(), l)
}

func provideProfileService(cfg *config.Config) core.ProfileService {
	return profile.NewClient(cfg.ProfileServiceURL, newExternalHTTPClient())
}

func provideCaptchaSolver(cfg *config.Config) core.CaptchaSolver {
	if cfg.CaptchaSolverURL == "" {
		return nil
	}
	return driver.NewCaptchaClient(cfg.CaptchaSolverURL, newExternalHTTPClient())
}

func provideOutcomeSink(cfg *config.Config, l *slog.Logger) core.OutcomeSink {
	if cfg.OutcomeWebhookURL != "" {
		return recorder.NewWebhookSink(cfg.OutcomeWebhookURL, newExternalHTTPClient())
	}
	return &recorder.LogSink{Logger: l}
}

func provideRetryController(cfg *config.Config, metrics *observability.Metrics, l *slog.Logger) *engine.RetryController {
	return engine.NewRetryController(provideRetryConfig(cfg), cfg.AmbiguityThreshold, metrics, l)
}

func provideRetryConfig(cfg *config.Config) engine.RetryConfig {
	rc := engine.DefaultRetryConfig()
	if cfg.BackoffBase > 0 {
		rc.BaseDelay = cfg.BackoffBase
	}
	if cfg.BackoffMax > 0 {
		rc.MaxDelay = cfg.BackoffMax
	}
	if cfg.MaxAttempts > 0 {
		rc.MaxAttempts = cfg.MaxAttempts
	}
	return rc
}

func providePoolConfig(cfg *config.Config) engine.PoolConfig {
	pc := engine.DefaultPoolConfig()
	if cfg.MaxWorkers > 0 {
		pc.PoolSize = cfg.MaxWorkers
	}
	if cfg.VisibilityTimeout > 0 {
		pc.Visibility = cfg.VisibilityTimeout
	}
	if cfg.PollInterval > 0 {
		pc.PollInterval = cfg.PollInterval
	}
	if cfg.ExecutionTimeout > 0 {
		pc.DefaultTimeout = cfg.ExecutionTimeout
	}
	return pc
}

func providePrometheusRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

func provideMetrics(reg *prometheus.Registry) *observability.Metrics {
	return observability.NewMetrics(reg)
}

func provideLoggerConfig(cfg *config.Config) logger.Config {
	return cfg.Logging
}

func provideLogWriter() io.Writer {
	return os.Stdout
}
