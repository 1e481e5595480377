// Code generated manually. DO NOT EDIT.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package wire

import (
	"context"
	"fmt"

	"github.com/oks-citadel/applyflow/internal/app"
	"github.com/oks-citadel/applyflow/internal/config"
	"github.com/oks-citadel/applyflow/internal/engine"
	"github.com/oks-citadel/applyflow/internal/logger"
	"github.com/oks-citadel/applyflow/internal/recorder"
	"github.com/oks-citadel/applyflow/internal/server"
)

// InitializeApp creates and wires all application dependencies.
func InitializeApp(ctx context.Context) (*app.App, func(), error) {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	slogLogger := logger.NewLogger(provideLoggerConfig(cfg), provideLogWriter())

	// Database (only for the postgres backend)
	dbConn, dbCleanup, err := provideDatabase(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up database: %w", err)
	}

	// Queue and outcome storage
	taskQueue := provideQueue(cfg, dbConn)
	outcomeStore := provideOutcomeStore(cfg, dbConn)

	// Metrics
	promRegistry := providePrometheusRegistry()
	metrics := provideMetrics(promRegistry)

	// Target strategy registry
	strategyRegistry, err := provideRegistry(cfg)
	if err != nil {
		dbCleanup()
		return nil, nil, fmt.Errorf("failed to load target strategies: %w", err)
	}

	// Field mapping and adapters
	fieldMapper := provideMapper(cfg)
	captchaSolver := provideCaptchaSolver(cfg)
	adapters := provideAdapterSet(fieldMapper, captchaSolver, slogLogger)

	// External collaborators
	driverFactory := provideDriverFactory(cfg, slogLogger)
	profileService := provideProfileService(cfg)

	// Outcome recording
	outcomeSink := provideOutcomeSink(cfg, slogLogger)
	outcomeRecorder := recorder.New(outcomeStore, outcomeSink, metrics, slogLogger)

	// Retry policy and worker pool
	retryController := provideRetryController(cfg, metrics, slogLogger)
	pool := engine.NewPool(providePoolConfig(cfg), taskQueue, strategyRegistry, adapters,
		driverFactory, profileService, retryController, outcomeRecorder, metrics, slogLogger)

	// Server
	srv := server.NewServer(ctx, cfg, taskQueue, metrics, promRegistry, slogLogger)

	// App
	application := app.NewApp(ctx, cfg, srv, pool, slogLogger)

	cleanup := func() {
		dbCleanup()
	}

	return application, cleanup, nil
}
