package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skillsenselab/voicenotes/auth"
	"github.com/skillsenselab/voicenotes/config"
	"github.com/skillsenselab/voicenotes/ingest"
	"github.com/skillsenselab/voicenotes/logger"
	"github.com/skillsenselab/voicenotes/observability"
	"github.com/skillsenselab/voicenotes/server"
	"github.com/skillsenselab/voicenotes/server/middleware"
	"github.com/skillsenselab/voicenotes/store"
	"github.com/skillsenselab/voicenotes/transcriber"
	"github.com/skillsenselab/voicenotes/transcription"
	"github.com/skillsenselab/voicenotes/transcription/deepgram"
)

const serviceName = "transcriber"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "transcriber: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	var cfg transcriber.Config
	if err := config.LoadConfig(serviceName, &cfg); err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.New(&cfg.Logging, cfg.Name)
	logger.SetGlobalLogger(log)
	log.Info("Starting service", map[string]interface{}{
		"environment": cfg.Environment,
		"version":     cfg.Version,
		"ingest_mode": cfg.Ingest.Mode,
	})

	var metrics *observability.IngestMetrics
	if cfg.Observability.Enabled {
		tp, err := observability.InitTracer(ctx, cfg.Name, cfg.Environment, cfg.Observability)
		if err != nil {
			return fmt.Errorf("initializing tracer: %w", err)
		}
		defer shutdownProvider(tp.Shutdown, log, "tracer")

		mp, err := observability.InitMeter(ctx, cfg.Name, cfg.Environment, cfg.Observability)
		if err != nil {
			return fmt.Errorf("initializing meter: %w", err)
		}
		defer shutdownProvider(mp.Shutdown, log, "meter")

		metrics, err = observability.NewIngestMetrics(observability.Meter(cfg.Name))
		if err != nil {
			return fmt.Errorf("initializing metrics: %w", err)
		}
	}

	db, err := store.Open(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	entries := store.NewEntryStore(db, log)

	provider := deepgram.NewProvider(cfg.Deepgram)
	gateway := transcription.NewGateway(provider, log)
	coord := ingest.NewCoordinator(cfg.Ingest, entries, gateway, metrics, log)

	srv := server.New(cfg.Server, log)
	srv.ApplyMiddleware()
	srv.RegisterHealthEndpoint(cfg.Name, healthChecker(db))

	if cfg.Auth.Enabled {
		svc, err := auth.NewService(cfg.Auth)
		if err != nil {
			return fmt.Errorf("initializing auth: %w", err)
		}
		srv.GinEngine().Use(middleware.Auth(middleware.AuthConfig{
			TokenValidator: svc.ValidatorFunc(),
			SkipPaths:      []string{"/health"},
		}))
	}

	handler := transcriber.NewHandler(coord, log)
	handler.Register(srv.GinEngine())

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}

	waitForSignal(log)

	stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Stop(stopCtx)
}

func healthChecker(db *store.DB) server.HealthChecker {
	return func(ctx context.Context) []server.ComponentHealth {
		health := server.ComponentHealth{Name: "database", Status: server.StatusHealthy}
		if err := db.PingContext(ctx); err != nil {
			health.Status = server.StatusUnhealthy
			health.Message = err.Error()
		}
		return []server.ComponentHealth{health}
	}
}

func waitForSignal(log *logger.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	sig := <-sigCh
	log.Info("Received shutdown signal", map[string]interface{}{
		"signal": sig.String(),
	})
}

func shutdownProvider(shutdown func(context.Context) error, log *logger.Logger, name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		log.Warn("Telemetry shutdown failed", map[string]interface{}{
			"provider": name,
			"error":    err.Error(),
		})
	}
}
