package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meetup-go-app/backend/internal/app"
	"meetup-go-app/backend/internal/bootstrap"
	"meetup-go-app/backend/internal/config"
	appLogger "meetup-go-app/backend/internal/infra/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadRuntime()
	if err != nil {
		log.Fatalf("load runtime config failed: %v", err)
	}

	if _, err := appLogger.Init(); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer func() { _ = appLogger.L().Sync() }()
	logger := appLogger.S().With("component", "main")

	resources, err := app.Bootstrap(ctx)
	if err != nil {
		logger.Fatalw("bootstrap failed", "error", err)
	}
	defer func() {
		if err := resources.Close(); err != nil {
			logger.Warnw("resource cleanup error", "error", err)
		}
	}()

	if err := bootstrap.Migrate(resources.DB()); err != nil {
		logger.Fatalw("migrate failed", "error", err)
	}

	application, err := bootstrap.BuildApplication(ctx, logger, resources, cfg)
	if err != nil {
		logger.Fatalw("build application failed", "error", err)
	}

	if err := application.KpiScheduler.Start(); err != nil {
		logger.Fatalw("start kpi scheduler failed", "error", err)
	}
	defer application.KpiScheduler.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           application.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infow("server listening", "addr", srv.Addr, "timezone", cfg.Timezone.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalw("server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Infow("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnw("server shutdown error", "error", err)
	}
}
