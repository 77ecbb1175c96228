package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/gzizouseif24/tarot-reader/internal/adapters/clients"
	"github.com/gzizouseif24/tarot-reader/internal/adapters/clients/acl"
	"github.com/gzizouseif24/tarot-reader/internal/adapters/http"
	"github.com/gzizouseif24/tarot-reader/internal/adapters/http/handlers"
	"github.com/gzizouseif24/tarot-reader/internal/app"
	"github.com/gzizouseif24/tarot-reader/internal/platform/config"
	"github.com/gzizouseif24/tarot-reader/internal/platform/logging"
	"github.com/gzizouseif24/tarot-reader/internal/platform/telemetry"
	"github.com/gzizouseif24/tarot-reader/internal/ports"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "run the HTTP service until SIGINT or SIGTERM",
		Action: serve,
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	version := Version
	if version == "dev" {
		version = cfg.App.Version
	}

	// 1. Logging
	logger := logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	logging.SetDefault(logger)

	logger.Info("starting service",
		slog.String("version", version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
		slog.String("provider", cfg.LLM.Provider),
		slog.String("model", cfg.LLM.Model),
		slog.Bool("api_key_configured", cfg.LLM.HasAPIKey()),
	)

	if !cfg.LLM.HasAPIKey() {
		logger.Warn("model credential not set; readings will fail until it is configured",
			slog.String("env", cfg.LLM.CredentialVar()),
		)
	}

	// 2. Telemetry (noop if disabled)
	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
		Insecure:     cfg.Telemetry.Insecure,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if shutdownErr := telProvider.Shutdown(context.WithoutCancel(ctx)); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	// 3. Upstream HTTP client and provider adapter
	httpClient, err := clients.New(&clients.Config{
		ServiceName: cfg.LLM.Provider,
		Timeout:     cfg.Client.Timeout,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("creating HTTP client: %w", err)
	}

	generator, err := acl.NewGenerator(acl.CompletionClientConfig{
		Client: httpClient,
		LLM:    cfg.LLM,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("creating %s client: %w", cfg.LLM.Provider, err)
	}

	healthRegistry := ports.NewHealthRegistry()
	if err := healthRegistry.Register(generator); err != nil {
		return fmt.Errorf("registering provider health check: %w", err)
	}

	// 4. Application layer
	readingService := app.NewReadingService(app.ReadingServiceConfig{
		Generator: generator,
		Pool:      app.NewWorkerPool(cfg.LLM.MaxConcurrent),
		Logger:    logger,
	})

	// 5. Handlers, server and routes
	buildInfo := handlers.NewBuildInfo(version, Commit, BuildTime)

	server := http.New(&cfg.Server, logger)
	http.SetupRouter(server.Engine(), http.RouterConfig{
		AppConfig:      &cfg.App,
		CORSConfig:     &cfg.CORS,
		HealthHandler:  handlers.NewHealthHandler(healthRegistry, generator, buildInfo),
		ReadingHandler: handlers.NewReadingHandler(readingService),
		ZodiacHandler:  handlers.NewZodiacHandler(),
		Timeout:        cfg.Server.RequestTimeout,
		MaxRequestSize: cfg.Server.MaxRequestSize,
	})

	// 6. Serve until SIGINT/SIGTERM, then drain
	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("server: %w", err)
	}

	logger.Info("shutdown complete")

	return nil
}

// loadConfig loads and validates the profile named by --profile.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("profile"))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
