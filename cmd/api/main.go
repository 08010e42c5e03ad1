package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"earnings-radar/internal/config"
	hhttp "earnings-radar/internal/handler/http"
	hearnings "earnings-radar/internal/handler/http/earnings"
	hevent "earnings-radar/internal/handler/http/event"
	"earnings-radar/internal/handler/http/middleware"
	hnews "earnings-radar/internal/handler/http/news"
	"earnings-radar/internal/handler/http/requestid"
	earningsProvider "earnings-radar/internal/infra/provider/earnings"
	newsProvider "earnings-radar/internal/infra/provider/news"
	"earnings-radar/internal/infra/store"
	"earnings-radar/internal/observability/logging"
	"earnings-radar/internal/observability/tracing"
	eventUC "earnings-radar/internal/usecase/event"
	"earnings-radar/internal/usecase/resolve"
	"earnings-radar/internal/usecase/sentiment"
	pkgconfig "earnings-radar/pkg/config"
)

func main() {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	logger := initLogger()
	version := pkgconfig.GetEnvString("VERSION", "dev")

	shutdownTracing := tracing.Setup("earnings-radar-api", version)
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("failed to stop tracer provider", slog.Any("error", err))
		}
	}()

	providers := config.LoadProviders()
	storeCfg, err := config.LoadStore()
	if err != nil {
		logger.Error("invalid store configuration", slog.Any("error", err))
		os.Exit(1)
	}

	opened := openStore(logger, storeCfg, providers.Timeout)
	defer func() {
		if err := opened.Close(); err != nil {
			logger.Error("failed to close event store", slog.Any("error", err))
		}
	}()

	handler := setupServer(logger, providers, storeCfg, opened, version)
	runServer(logger, handler, version)
}

// initLogger installs the JSON logger as the process default.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// openStore connects the configured backend, exiting when the backend is
// reachable in principle but the connection fails.
func openStore(logger *slog.Logger, cfg config.Store, timeout time.Duration) store.Opened {
	ctx, cancel := context.WithTimeout(context.Background(), pkgconfig.GetEnvDuration("STORE_CONNECT_TIMEOUT", 15*time.Second))
	defer cancel()

	opened, err := store.Open(ctx, cfg, timeout)
	if err != nil {
		logger.Error("failed to open event store",
			slog.String("backend", string(cfg.Backend)),
			slog.Any("error", err))
		os.Exit(1)
	}
	return opened
}

// newScorer loads the lexicon named by SENTIMENT_LEXICON_PATH, or the
// built-in one when unset.
func newScorer(logger *slog.Logger) *sentiment.Scorer {
	path := pkgconfig.GetEnvString("SENTIMENT_LEXICON_PATH", "")
	if path == "" {
		return sentiment.NewDefaultScorer()
	}

	lex, err := sentiment.LoadLexicon(path)
	if err != nil {
		logger.Error("failed to load sentiment lexicon", slog.String("path", path), slog.Any("error", err))
		os.Exit(1)
	}
	scorer, err := sentiment.NewScorer(lex)
	if err != nil {
		logger.Error("invalid sentiment lexicon", slog.String("path", path), slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("sentiment lexicon loaded", slog.String("path", path))
	return scorer
}

// setupServer builds the routes and wraps them in the middleware chain.
func setupServer(logger *slog.Logger, providers config.Providers, storeCfg config.Store, opened store.Opened, version string) http.Handler {
	chainOpts := []resolve.Option{
		resolve.WithTimeout(providers.Timeout),
		resolve.WithLogger(logger),
	}
	earningsChain := resolve.NewEarningsChain(earningsProvider.DefaultChain(providers), chainOpts...)
	newsChain := resolve.NewNewsChain(newsProvider.DefaultChain(providers, newScorer(logger)), chainOpts...)
	eventSvc := &eventUC.Service{Store: opened.Store, MaxConflictRetries: storeCfg.MaxConflictRetries}

	logger.Info("provider chains ready",
		slog.Any("earnings", earningsChain.Providers()),
		slog.Any("news", newsChain.Providers()),
		slog.Duration("provider_timeout", providers.Timeout),
		slog.Bool("breakers", providers.BreakerEnabled))

	mux := http.NewServeMux()
	hevent.Register(mux, eventSvc)
	hearnings.Register(mux, earningsChain)
	hnews.Register(mux, newsChain)

	mux.Handle("GET /api/health", &hhttp.HealthHandler{
		Providers:    providers,
		Store:        storeCfg,
		DebugEnabled: config.DebugEnabled(),
		Version:      version,
	})
	mux.Handle("GET /ready", &hhttp.ReadyHandler{Store: opened.Store})
	mux.Handle("GET /live", &hhttp.LiveHandler{})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())

	return applyMiddleware(logger, mux)
}

// applyMiddleware wraps the handler with the middleware chain.
// Order, outermost first: Recover → Request ID → Logging → CORS →
// Input validation → Rate limit → Timeout → Tracing → Metrics → mux.
// Tracing and Metrics sit directly on the mux so they see the matched
// route pattern.
func applyMiddleware(logger *slog.Logger, handler http.Handler) http.Handler {
	corsConfig, err := middleware.LoadCORSConfig()
	if err != nil {
		logger.Error("failed to load CORS configuration", slog.Any("error", err))
		os.Exit(1)
	}
	corsConfig.Logger = logger
	logger.Info("CORS configured",
		slog.Any("allowed_origins", corsConfig.AllowedOrigins),
		slog.Any("allowed_methods", corsConfig.AllowedMethods),
		slog.Int("max_age", corsConfig.MaxAge))

	chain := handler
	chain = hhttp.MetricsMiddleware(chain)
	chain = tracing.Middleware(chain)
	chain = hhttp.Timeout(pkgconfig.GetEnvDuration("REQUEST_TIMEOUT", 60*time.Second))(chain)

	if rpm := pkgconfig.GetEnvInt("API_RATE_LIMIT_RPM", 0); rpm > 0 {
		chain = hhttp.NewRateLimiter(rpm, time.Minute).Limit(chain)
		logger.Info("rate limiting enabled", slog.Int("requests_per_minute", rpm))
	} else {
		logger.Info("rate limiting disabled")
	}

	chain = hhttp.InputValidation()(chain)
	chain = middleware.CORS(corsConfig)(chain)
	chain = hhttp.Logging(logger)(chain)
	chain = requestid.Middleware(chain)
	chain = hhttp.Recover(logger)(chain)
	return chain
}

// runServer serves until SIGINT or SIGTERM, then drains in-flight requests.
func runServer(logger *slog.Logger, handler http.Handler, version string) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := pkgconfig.GetEnvString("HTTP_ADDR", ":8080")
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("version", version))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
		return
	case <-ctx.Done():
	}
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
