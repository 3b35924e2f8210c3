// Command server runs the crypto news publisher: the generation pipeline,
// its interval scheduler and the HTTP API in a single process. Settings
// mutations restart the in-process scheduler, so everything lives together.
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

	"github.com/joho/godotenv"

	"cryptopress/internal/config"
	"cryptopress/internal/infra/adapter/persistence/postgres"
	"cryptopress/internal/infra/collector"
	"cryptopress/internal/infra/db"
	"cryptopress/internal/infra/rewriter"
	"cryptopress/internal/infra/scraper"
	"cryptopress/internal/observability/logging"
	"cryptopress/internal/observability/tracing"
	"cryptopress/internal/repository"
	"cryptopress/internal/scheduler"
	"cryptopress/internal/usecase/generate"

	hhttp "cryptopress/internal/handler/http"
	hgeneration "cryptopress/internal/handler/http/generation"
	hruns "cryptopress/internal/handler/http/runs"
	hsettings "cryptopress/internal/handler/http/settings"
)

func main() {
	// .env is a development convenience; absence is fine.
	_ = godotenv.Load()

	logger := logging.NewLogger()
	slog.SetDefault(logger)

	cfg := config.LoadServerConfig()

	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	articleRepo := postgres.NewArticleRepo(database)
	runRepo := postgres.NewGenerationRunRepo(database)
	settingsRepo := postgres.NewSettingsRepo(database)

	httpClient := &http.Client{Timeout: 30 * time.Second}

	svc := generate.NewService(
		collector.NewRSSCollector(config.LoadFeedSources(), httpClient),
		scraper.New(httpClient, scraper.DefaultConfig()),
		rewriter.NewFromEnv(),
		articleRepo,
		runRepo,
		generate.DefaultConfig(),
	)

	sched := scheduler.New(svc, settingsRepo, runRepo)
	if err := sched.Start(context.Background()); err != nil {
		logger.Error("scheduler start failed", slog.Any("error", err))
		os.Exit(1)
	}
	go sched.RunStartupCheck(context.Background())

	handler := buildHandler(logger, database, cfg, svc, sched, runRepo, settingsRepo)

	runServer(logger, handler, cfg, sched)
}

// initDatabase opens the database connection and runs migrations.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// buildHandler wires all routes and the middleware chain.
func buildHandler(
	logger *slog.Logger,
	database *sql.DB,
	cfg config.ServerConfig,
	svc *generate.Service,
	sched *scheduler.Scheduler,
	runRepo repository.GenerationRunRepository,
	settingsRepo repository.SettingsRepository,
) http.Handler {
	mux := http.NewServeMux()

	hgeneration.Register(mux, svc, cfg.CronSecret)
	hruns.Register(mux, runRepo)
	hsettings.Register(mux, settingsRepo, sched)

	mux.Handle("GET /health", &hhttp.HealthHandler{DB: database, Scheduler: sched, Version: cfg.Version})
	mux.Handle("GET /health/ready", &hhttp.ReadyHandler{DB: database})
	mux.Handle("GET /health/live", &hhttp.LiveHandler{})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())

	// Applied in reverse order: recover outermost, metrics innermost.
	var handler http.Handler = mux
	handler = hhttp.MetricsMiddleware(handler)
	handler = hhttp.LimitRequestBody(1 << 20)(handler)
	handler = hhttp.Logging(logger)(handler)
	handler = tracing.Middleware(handler)
	handler = hhttp.Recover(logger)(handler)

	return handler
}

// runServer starts the HTTP server and handles graceful shutdown.
func runServer(logger *slog.Logger, handler http.Handler, cfg config.ServerConfig, sched *scheduler.Scheduler) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", slog.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", slog.Any("error", err))
	}

	logger.Info("server stopped")
}
