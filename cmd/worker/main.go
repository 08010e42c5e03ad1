package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"earnings-radar/internal/config"
	"earnings-radar/internal/handler/http/respond"
	"earnings-radar/internal/infra/notifier"
	earningsProvider "earnings-radar/internal/infra/provider/earnings"
	"earnings-radar/internal/infra/store"
	workerPkg "earnings-radar/internal/infra/worker"
	"earnings-radar/internal/observability/logging"
	"earnings-radar/internal/observability/metrics"
	"earnings-radar/internal/observability/tracing"
	eventUC "earnings-radar/internal/usecase/event"
	"earnings-radar/internal/usecase/refresh"
	"earnings-radar/internal/usecase/resolve"
	pkgconfig "earnings-radar/pkg/config"
)

func main() {
	_ = godotenv.Load()

	logger := initLogger()
	shutdownTracing := tracing.Setup("earnings-radar-worker", pkgconfig.GetEnvString("VERSION", "dev"))
	defer func() { _ = shutdownTracing(context.Background()) }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load worker configuration (fail-open strategy)
	workerMetrics := workerPkg.NewMetrics()
	workerConfig := workerPkg.LoadConfig(logger, workerMetrics)
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Int("refresh_concurrency", workerConfig.RefreshConcurrency),
		slog.Duration("run_timeout", workerConfig.RunTimeout),
		slog.Int("health_port", workerConfig.HealthPort))

	providers := config.LoadProviders()
	storeCfg, err := config.LoadStore()
	if err != nil {
		logger.Error("invalid store configuration", slog.Any("error", err))
		os.Exit(1)
	}
	if !storeCfg.Configured() {
		logger.Error("event store is not configured, nothing to refresh",
			slog.String("backend", string(storeCfg.Backend)))
		os.Exit(1)
	}

	opened, err := store.Open(ctx, storeCfg, providers.Timeout)
	if err != nil {
		logger.Error("failed to open event store", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := opened.Close(); err != nil {
			logger.Error("failed to close event store", slog.Any("error", err))
		}
	}()

	earningsChain := resolve.NewEarningsChain(
		earningsProvider.DefaultChain(providers),
		resolve.WithTimeout(providers.Timeout),
		resolve.WithLogger(logger),
	)
	refresher := &refresh.Refresher{
		Events:      &eventUC.Service{Store: opened.Store, MaxConflictRetries: storeCfg.MaxConflictRetries},
		Resolver:    earningsChain,
		Concurrency: workerConfig.RefreshConcurrency,
		Location:    workerConfig.Location(),
		Logger:      logger,
		Notifier:    notifier.LoadFromEnv(logger),
	}

	startMetricsServer(ctx, logger, workerConfig.MetricsPort, earningsChain.Providers())

	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	runCronWorker(ctx, logger, refresher, workerConfig, workerMetrics, healthServer)
}

// initLogger installs the JSON logger as the process default.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// runCronWorker schedules the refresh job and blocks until ctx ends, then
// waits for a running job to finish.
func runCronWorker(ctx context.Context, logger *slog.Logger, r *refresh.Refresher, cfg workerPkg.Config, m *workerPkg.Metrics, hs *workerPkg.HealthServer) {
	c := cron.New(cron.WithLocation(cfg.Location()))

	_, err := c.AddFunc(cfg.CronSchedule, func() {
		runRefreshJob(ctx, logger, r, cfg, m, hs)
	})
	if err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	hs.SetReady(true)
	logger.Info("worker started",
		slog.String("schedule", cfg.CronSchedule),
		slog.String("timezone", cfg.Timezone))

	<-ctx.Done()
	logger.Info("shutting down worker...")
	hs.SetReady(false)

	// Stop returns a context that is done once running jobs complete.
	<-c.Stop().Done()
	logger.Info("worker stopped")
}

// runRefreshJob executes one refresh pass under the configured timeout.
func runRefreshJob(ctx context.Context, logger *slog.Logger, r *refresh.Refresher, cfg workerPkg.Config, m *workerPkg.Metrics, hs *workerPkg.HealthServer) {
	start := time.Now()
	logger.Info("refresh started")

	runCtx, cancel := context.WithTimeout(ctx, cfg.RunTimeout)
	defer cancel()

	stats, err := r.Run(runCtx)
	metrics.RecordRefreshRun(err == nil, time.Since(start))
	hs.RecordRun(workerPkg.RunStatus{FinishedAt: time.Now(), Success: err == nil, Added: stats.Added})
	if err != nil {
		logger.Error("refresh failed", slog.String("error", respond.SanitizeError(err)))
		return
	}

	m.RecordLastSuccess()
	logger.Info("refresh completed",
		slog.Int("stale", stats.Stale),
		slog.Int("added", stats.Added),
		slog.Int("unchanged", stats.Unchanged),
		slog.Int("not_found", stats.NotFound),
		slog.Int("failed", stats.Failed),
		slog.Duration("duration", stats.Duration))
}
