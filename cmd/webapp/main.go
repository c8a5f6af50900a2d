package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skillsenselab/voicenotes/auth"
	"github.com/skillsenselab/voicenotes/blobstore"
	"github.com/skillsenselab/voicenotes/config"
	"github.com/skillsenselab/voicenotes/httpclient"
	"github.com/skillsenselab/voicenotes/logger"
	"github.com/skillsenselab/voicenotes/observability"
	"github.com/skillsenselab/voicenotes/server"
	"github.com/skillsenselab/voicenotes/store"
	"github.com/skillsenselab/voicenotes/webapp"
)

const serviceName = "webapp"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "webapp: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	var cfg webapp.Config
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
	})

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
	}

	db, err := store.Open(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	entries := store.NewEntryStore(db, log)

	blobs, err := blobstore.NewLocal(cfg.UploadDir)
	if err != nil {
		return fmt.Errorf("preparing upload directory: %w", err)
	}

	var transcriber webapp.TranscriberClient
	client, err := newTranscriberClient(cfg)
	if err != nil {
		return err
	}
	transcriber = client

	srv := server.New(cfg.Server, log)
	srv.ApplyMiddleware()
	srv.RegisterHealthEndpoint(cfg.Name, healthChecker(db))

	handler := webapp.NewHandler(entries, blobs, transcriber, log)
	handler.Register(srv.GinEngine())

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}

	waitForSignal(log)

	stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Stop(stopCtx)
}

// newTranscriberClient builds the HTTP client for the transcriber service,
// attaching a token source when service auth is enabled.
func newTranscriberClient(cfg webapp.Config) (*webapp.RemoteTranscriber, error) {
	var opts []httpclient.Option
	if cfg.Auth.Enabled {
		svc, err := auth.NewService(cfg.Auth)
		if err != nil {
			return nil, fmt.Errorf("initializing auth: %w", err)
		}
		opts = append(opts, httpclient.WithTokenSource(httpclient.TokenFunc(func() (string, error) {
			return svc.Issue(serviceName)
		})))
	}

	client, err := httpclient.New(cfg.Transcriber, opts...)
	if err != nil {
		return nil, fmt.Errorf("initializing transcriber client: %w", err)
	}
	return webapp.NewRemoteTranscriber(client), nil
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
