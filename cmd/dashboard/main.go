// Package main is the entry point for the runboard dashboard daemon.
// It serves the automation catalog over HTTP, launches automation scripts
// as subprocesses, and keeps a bounded in-memory table of their jobs.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"runboard/internal/archive"
	"runboard/internal/catalog"
	"runboard/internal/config"
	"runboard/internal/logger"
	"runboard/internal/observability"
	"runboard/internal/registry"
	"runboard/internal/runner"
	"runboard/internal/server"
	"runboard/internal/server/handlers"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Path to config file (default: runboard.yaml in current directory)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logger.New(cfg.Debug)

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		log.Fatalf("Failed to load automation catalog: %v", err)
	}

	ctx := context.Background()

	// Archive for terminal jobs evicted from the registry
	var arc *archive.Archive
	if cfg.ArchivePath != "" {
		arc, err = archive.Open(cfg.ArchivePath)
		if err != nil {
			log.Fatalf("Failed to open archive: %v", err)
		}
		defer arc.Close()
	}

	// Tracing
	if cfg.OTELEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(ctx, "runboard", cfg.OTELEndpoint)
		if err != nil {
			log.Fatalf("Failed to init tracing: %v", err)
		}
		defer func() {
			if err := shutdownTracer(context.Background()); err != nil {
				log.Printf("Failed to shutdown tracer: %v", err)
			}
		}()
	}

	// Metrics
	metricsHandler, shutdownMetrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to init metrics: %v", err)
	}
	defer func() {
		if err := shutdownMetrics(context.Background()); err != nil {
			log.Printf("Failed to shutdown metrics: %v", err)
		}
	}()

	metrics, err := observability.NewMetrics()
	if err != nil {
		log.Fatalf("Failed to create metrics: %v", err)
	}

	reg := registry.New(registry.Options{
		Capacity: cfg.RegistryCapacity,
		OnEvict: func(v registry.JobView) {
			if arc == nil {
				return
			}
			saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			rec := archive.Record{
				JobID:        v.ID,
				AutomationID: v.AutomationID,
				Name:         v.Name,
				Status:       string(v.Status),
				StartedAt:    v.StartedAt,
				EndedAt:      v.EndedAt,
				Log:          v.Log,
			}
			if err := arc.Save(saveCtx, rec); err != nil {
				logger.Error("failed to archive evicted job", "job_id", v.ID, "error", err)
			}
		},
		OnTerminal: func(v registry.JobView) {
			if v.EndedAt == nil {
				return
			}
			metrics.JobFinished(context.Background(), string(v.Status), v.EndedAt.Sub(v.StartedAt))
		},
	})

	// Observable gauges read the registry only when scraped.
	meter := otel.Meter("runboard")
	_, err = meter.Int64ObservableGauge("runboard.jobs.running",
		metric.WithDescription("Jobs currently running"),
		metric.WithInt64Callback(func(_ context.Context, obs metric.Int64Observer) error {
			obs.Observe(int64(reg.RunningCount()))
			return nil
		}),
	)
	if err != nil {
		log.Printf("Failed to register running jobs gauge: %v", err)
	}
	_, err = meter.Int64ObservableGauge("runboard.registry.size",
		metric.WithDescription("Jobs held in the in-memory registry"),
		metric.WithInt64Callback(func(_ context.Context, obs metric.Int64Observer) error {
			obs.Observe(int64(reg.Len()))
			return nil
		}),
	)
	if err != nil {
		log.Printf("Failed to register registry size gauge: %v", err)
	}

	run := runner.New(reg, runner.Options{
		Interpreter: cfg.Interpreter,
		WorkDir:     cfg.ScriptsDir,
		ModuleDir:   cfg.ModuleDir,
	}, logger)

	purgeCtx, stopPurge := context.WithCancel(ctx)
	defer stopPurge()
	if arc != nil && cfg.ArchiveRetention > 0 {
		go purgeLoop(purgeCtx, arc, cfg.ArchiveRetention, logger)
	}

	deps := handlers.Deps{
		Registry: reg,
		Catalog:  cat,
		Runner:   run,
		Metrics:  metrics,
		Logger:   logger,
	}
	// Keep the interface nil when archiving is off so handlers can tell.
	if arc != nil {
		deps.Archive = arc
	}

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	srv := server.New(deps, server.Options{
		Addr:           addr,
		APIToken:       cfg.APIToken,
		RateLimit:      cfg.RateLimit,
		MetricsHandler: metricsHandler,
		Logger:         logger,
	})

	go func() {
		log.Printf("Runboard dashboard starting on %s with %d automations", addr, cat.Len())
		if err := srv.Run(ctx); err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down dashboard...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	// Kill whatever is still running and wait for the exits to be recorded.
	run.Shutdown(shutdownCtx)
	log.Println("Server exited properly")
}

// purgeLoop trims old archive rows once at startup and then hourly.
func purgeLoop(ctx context.Context, arc *archive.Archive, retention time.Duration, logger *slog.Logger) {
	purge := func() {
		n, err := arc.Purge(ctx, retention)
		if err != nil {
			logger.Error("archive purge failed", "error", err)
			return
		}
		if n > 0 {
			logger.Info("purged archived jobs", "count", n, "older_than", retention.String())
		}
	}

	purge()

	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purge()
		}
	}
}
