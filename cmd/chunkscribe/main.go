// Command chunkscribe serves the transcription pipeline over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/kbukum/chunkscribe/api"
	"github.com/kbukum/chunkscribe/audio"
	"github.com/kbukum/chunkscribe/bootstrap"
	"github.com/kbukum/chunkscribe/config"
	"github.com/kbukum/chunkscribe/enrich"
	"github.com/kbukum/chunkscribe/jobs"
	"github.com/kbukum/chunkscribe/logger"
	"github.com/kbukum/chunkscribe/observability"
	"github.com/kbukum/chunkscribe/pipeline"
	"github.com/kbukum/chunkscribe/process"
	"github.com/kbukum/chunkscribe/resilience"
	"github.com/kbukum/chunkscribe/server"
	"github.com/kbukum/chunkscribe/sse"
	"github.com/kbukum/chunkscribe/transcription"
	"github.com/kbukum/chunkscribe/transcription/whisper"
	"github.com/kbukum/chunkscribe/version"
	"github.com/kbukum/chunkscribe/workspace"
)

const serviceName = "chunkscribe"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var cfg Config
	if err := config.LoadConfig(serviceName, &cfg); err != nil {
		return err
	}
	if cfg.Version == "" {
		cfg.Version = version.GetShortVersion()
	}
	app, err := bootstrap.NewApp(&cfg)
	if err != nil {
		return err
	}
	app.OnConfigure(wire)
	return app.Run(context.Background())
}

// wire builds every collaborator from the loaded config and registers the
// start and stop hooks.
func wire(ctx context.Context, app *bootstrap.App[*Config]) error {
	cfg := app.Cfg
	log := app.Logger

	telemetry, err := observability.Setup(ctx, app.Name, app.Version, cfg.Observability)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	app.OnStop(telemetry.Shutdown)

	metrics, err := observability.NewMetrics(observability.Meter(serviceName))
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	gateCfg := cfg.Gate
	gateCfg.OnAcquire = func(name string, waited time.Duration) {
		metrics.RecordGateWait(context.Background(), name, waited)
	}
	gate := resilience.NewGate(gateCfg)
	if err := metrics.RegisterGate(gate); err != nil {
		return fmt.Errorf("gate metrics: %w", err)
	}

	ws, err := workspace.New(cfg.Workspace.Root)
	if err != nil {
		return err
	}
	if cfg.Workspace.SweepOnStart {
		n, err := ws.Sweep()
		if err != nil {
			return fmt.Errorf("workspace sweep: %w", err)
		}
		if n > 0 {
			log.Warn("Removed leftover job directories", logger.Fields(logger.FieldPath, ws.Root(), "count", n))
		}
	}

	ffmpeg := process.NewAdapter(process.Config{
		Name:        "ffmpeg",
		Binary:      cfg.Audio.Binary,
		GracePeriod: cfg.Audio.GracePeriod,
	})
	if !ffmpeg.IsAvailable(ctx) {
		log.Warn("ffmpeg not found on PATH; every job will fail to decode", logger.Fields("binary", cfg.Audio.Binary))
	}
	decoder := audio.NewFFmpegDecoder(cfg.Audio, ffmpeg, log)

	router, err := newRouter(cfg, log)
	if err != nil {
		return err
	}

	var enricher *enrich.Enricher
	if cfg.Enrich.Enabled() {
		if enricher, err = enrich.New(cfg.Enrich, log); err != nil {
			return fmt.Errorf("enrich: %w", err)
		}
	}

	hub := sse.NewHub(log)
	tracker := jobs.NewTracker(log,
		jobs.WithRetain(cfg.Jobs.Retain),
		jobs.WithObserver(api.PublishJob(hub, log)))
	pipe, err := pipeline.New(pipeline.Deps{
		Gate:      gate,
		Decoder:   decoder,
		Engines:   router,
		Workspace: ws,
		Tracker:   tracker,
		Enricher:  enricher,
		Metrics:   metrics,
		Logger:    log,
	}, cfg.Pipeline)
	if err != nil {
		return err
	}

	srv := server.New(cfg.Server, log)
	srv.ApplyMiddleware(metrics)
	srv.RegisterDefaultEndpoints(app.Name, api.HealthChecker(gate, router.Manager()))
	api.NewHandler(pipe, tracker, log, api.WithEvents(hub)).Register(srv.GinEngine())

	// Registered before the server so it runs after the server has drained.
	app.OnStop(func(ctx context.Context) error {
		if err := router.ReleaseAll(ctx); err != nil {
			log.Warn("engine cache release failed", logger.MergeWithError(nil, err))
		}
		return nil
	})
	app.OnStart(srv.Start)
	app.OnReady(func(context.Context) error {
		srv.LogRoutes()
		return nil
	})
	app.OnStop(srv.Stop)
	// Stops run in reverse, so open event streams close before the server
	// waits on its connections.
	app.OnStop(func(context.Context) error {
		hub.Stop()
		return nil
	})
	return nil
}

// newRouter creates one whisper provider per configured engine and routes
// languages across them.
func newRouter(cfg *Config, log *logger.Logger) (*transcription.Router, error) {
	manager := transcription.NewManager(log)
	for _, ec := range cfg.Engines {
		p, err := whisper.NewProvider(ec)
		if err != nil {
			return nil, fmt.Errorf("engine %s: %w", ec.Name, err)
		}
		if err := manager.Add(ec.Name, p); err != nil {
			return nil, err
		}
	}
	if err := manager.SetDefault(cfg.DefaultEngine); err != nil {
		return nil, err
	}
	return transcription.NewRouter(manager, cfg.Routes), nil
}
