// Command server runs the offboarding service: the HTTP API, the export
// worker, the notification dispatcher, and the retention scheduler.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"offboard/internal/audit"
	"offboard/internal/audit/cleanup"
	"offboard/internal/audit/export"
	"offboard/internal/audit/stream"
	"offboard/internal/directory"
	"offboard/internal/hrplatform"
	"offboard/internal/notify"
	"offboard/internal/offboarding"
	"offboard/internal/platform/config"
	"offboard/internal/platform/httpserver"
	"offboard/internal/platform/logger"
	"offboard/internal/platform/metrics"
	"offboard/internal/platform/middleware"
	"offboard/internal/platform/redis"
	"offboard/internal/turnstile"
	httptransport "offboard/internal/transport/http"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx := context.Background()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	auditStore := audit.NewPostgresStore(db)
	if err := auditStore.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure audit schema: %w", err)
	}
	offboardingStore := offboarding.NewPostgresStore(db)
	if err := offboardingStore.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure offboarding schema: %w", err)
	}

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	m := metrics.New()

	mirror, err := stream.New(cfg.Kafka, log)
	if err != nil {
		return fmt.Errorf("connect kafka: %w", err)
	}
	defer mirror.Close()

	// A nil *Publisher must become a nil Mirror, not a typed-nil interface.
	var auditMirror audit.Mirror
	if mirror != nil {
		auditMirror = mirror
	}
	recorder := audit.NewRecorder(auditStore, auditMirror, log, m)

	if err := os.MkdirAll(cfg.ExportDir, 0o750); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	resolver, err := export.NewResolver(cfg.ExportDir)
	if err != nil {
		return fmt.Errorf("resolve export dir: %w", err)
	}
	runner := export.NewRunner(auditStore, cfg.ExportDir, log, m)
	runner.Start(ctx)

	purger := cleanup.NewPurger(auditStore, cfg.ExportDir, log, m)
	scheduler := cleanup.NewScheduler(purger, redisClient, log)
	if err := scheduler.Start(cfg.CleanupSchedule); err != nil {
		return fmt.Errorf("start cleanup scheduler: %w", err)
	}

	dispatcher := notify.NewDispatcher(notify.NewSMTPSender(cfg.SMTP), log)
	dispatcher.Start(ctx)

	service := offboarding.NewService(
		directory.NewClient(cfg.Directory, log),
		hrplatform.NewClient(cfg.HRPlatform, log),
		turnstile.NewClient(cfg.Turnstiles, log),
		offboardingStore,
		recorder,
		dispatcher,
		log,
		m,
		cfg.StepTimeout,
	)

	handler := httptransport.NewHandler(
		log, recorder, service, runner, resolver,
		middleware.NewHMACValidator(cfg.JWTSigningKey),
	)
	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(handler))

	recorder.Record(ctx, audit.Entry{
		Action:  audit.ActionSystemStart,
		Status:  audit.StatusSuccess,
		Message: "Offboarding service started",
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "error", err)
	}

	scheduler.Stop()
	runner.Drain(shutdownCtx)
	dispatcher.Drain(shutdownCtx)

	recorder.Record(context.WithoutCancel(shutdownCtx), audit.Entry{
		Action:  audit.ActionSystemStop,
		Status:  audit.StatusSuccess,
		Message: "Offboarding service stopped",
	})

	return nil
}
