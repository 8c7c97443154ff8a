package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"calc-engine/internal/calculator"
	"calc-engine/internal/observability"
	"calc-engine/internal/server"

	"go.uber.org/zap"
)

func main() {

	ctx := context.Background()

	if err := loadDotEnv(); err != nil {
		panic(err)
	}

	cfg, err := loadConfig()
	if err != nil {
		panic(err)
	}

	// Logger
	if err := observability.InitLogger(cfg.LogLevel); err != nil {
		panic(err)
	}
	defer observability.SyncLogger()

	// Tracing, logs and metrics export
	if cfg.Telemetry {
		shutdown, err := initTelemetry(ctx)
		if err != nil {
			observability.Logger.Fatal("telemetry init failed", zap.Error(err))
		}
		defer shutdown(ctx)
	}

	store := calculator.NewStore(cfg.MaxSessions)
	if err := initMetrics(store); err != nil {
		observability.Logger.Fatal("metrics init failed", zap.Error(err))
	}

	// Router
	router := server.NewRouter(calculator.NewHandler(store, cfg.MaxExpression))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		observability.Logger.Info("server started",
			zap.String("addr", cfg.Addr),
			zap.Int("max_sessions", cfg.MaxSessions),
			zap.Bool("telemetry", cfg.Telemetry),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			observability.Logger.Fatal("server failed", zap.Error(err))
		}
	}()

	waitForShutdown(srv, cfg.ShutdownTimeout)
}

func waitForShutdown(srv *http.Server, timeout time.Duration) {

	stop := make(chan os.Signal, 1)

	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		observability.Logger.Warn("server shutdown", zap.Error(err))
	}
}
