// @title TechTrends API
// @version 1.0
// @description 云原生资讯发布站点的 JSON 接口
// @BasePath /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"github.com/d60-Lab/techtrends/config"
	"github.com/d60-Lab/techtrends/internal/api"
	"github.com/d60-Lab/techtrends/internal/api/handler"
	"github.com/d60-Lab/techtrends/internal/metrics"
	"github.com/d60-Lab/techtrends/internal/repository"
	"github.com/d60-Lab/techtrends/internal/service"
	"github.com/d60-Lab/techtrends/pkg/database"
	"github.com/d60-Lab/techtrends/pkg/logger"
	"github.com/d60-Lab/techtrends/pkg/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	var logOpts []logger.Option
	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN, Environment: cfg.Sentry.Environment}); err != nil {
			panic(err)
		}
		defer sentry.Flush(2 * time.Second)
		logOpts = append(logOpts, logger.WithSentry())
	}
	if err := logger.Init(cfg.Log, logOpts...); err != nil {
		panic(err)
	}
	defer logger.Sync()

	shutdownTracing, err := tracing.Init(context.Background(), cfg.Tracing)
	if err != nil {
		logger.Error("failed to init tracing", zap.Error(err))
		os.Exit(1)
	}

	counters := metrics.NewCounters()
	gw := database.NewGateway(cfg.Database.Path, counters)
	if !gw.Exists() {
		logger.Warn("database file not found, run initdb first", zap.String("path", gw.Path()))
	}

	h := handler.NewHandler(
		repository.NewPostRepository(gw, counters),
		service.NewHealthService(gw),
		counters,
	)
	r, err := api.NewRouter(cfg, h, metrics.NewPrometheus(counters))
	if err != nil {
		logger.Error("failed to build router", zap.Error(err))
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr), zap.String("mode", cfg.Server.Mode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped unexpectedly", zap.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	if err := shutdownTracing(ctx); err != nil {
		logger.Warn("tracing shutdown", zap.Error(err))
	}
	logger.Info("server exited")
}
