package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/coder/quartz"
	_ "github.com/lib/pq" // postgres driver
	"github.com/soheilhy/cmux"

	"github.com/nyashahama/balance-cup-backend/internal/ai"
	"github.com/nyashahama/balance-cup-backend/internal/api"
	"github.com/nyashahama/balance-cup-backend/internal/cache"
	"github.com/nyashahama/balance-cup-backend/internal/config"
	"github.com/nyashahama/balance-cup-backend/internal/db"
	"github.com/nyashahama/balance-cup-backend/internal/imagesearch"
	"github.com/nyashahama/balance-cup-backend/internal/round"
	"github.com/nyashahama/balance-cup-backend/internal/store"
	"github.com/nyashahama/balance-cup-backend/internal/worker"
)

func main() {
	// ── Logger ────────────────────────────────────────────────────────────────
	// JSON in production, pretty text in development.
	var logger *slog.Logger
	if os.Getenv("ENV") == "production" {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	} else {
		logger = slog.New(charmlog.NewWithOptions(os.Stdout, charmlog.Options{
			Level:           charmlog.DebugLevel,
			ReportTimestamp: true,
			TimeFormat:      time.Kitchen,
		}))
	}
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	// Root context cancelled by OS signal. Every background loop respects it.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Config ────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger.Info("config loaded", "env", cfg.Env, "port", cfg.Port, "topics", len(cfg.Topics))

	// ── Text upstream ─────────────────────────────────────────────────────────
	text, err := buildTextGenerator(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("ai: %w", err)
	}

	// ── Images ────────────────────────────────────────────────────────────────
	var searcher imagesearch.Searcher
	if cfg.UnsplashAccessKey != "" {
		searcher = imagesearch.NewUnsplashClient(cfg.UnsplashAccessKey, cfg.UnsplashBaseURL)
	} else {
		logger.Warn("images: UNSPLASH_ACCESS_KEY not set, every image is the placeholder")
	}
	resolver := imagesearch.NewResolver(searcher, imagesearch.ResolverConfig{
		Attempts:       cfg.ImageAttempts,
		AttemptTimeout: cfg.ImageAttemptTimeout,
		Placeholder:    cfg.PlaceholderImageURL,
	}, logger)

	opts := round.Options{
		Policy: round.SourcingPolicy{
			LowWatermark:  cfg.StoreLowWatermark,
			HighWatermark: cfg.StoreHighWatermark,
		},
		MaxCount:         cfg.MaxRoundSize,
		ImageConcurrency: cfg.ImageConcurrency,
	}

	// ── Cache ─────────────────────────────────────────────────────────────────
	if cfg.RedisURL != "" {
		client, err := cache.Dial(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer client.Close()
		opts.Cache = cache.NewRedis(client, cfg.CacheTTL)
		logger.Info("cache: redis")
	} else {
		opts.Cache = cache.NewMemory(cfg.CacheTTL)
		logger.Info("cache: in-memory")
	}

	// ── Question store + worker (optional) ────────────────────────────────────
	var (
		runner *worker.Runner
		st     *store.Store
	)
	if cfg.DatabaseURL != "" {
		pool, queries, err := openDB(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer pool.Close()
		defer queries.Close()
		logger.Info("database connected")

		st = store.New(pool, queries)
		runner = worker.NewRunner(worker.NewJob(st, logger), worker.RunnerConfig{
			Workers:    cfg.WorkerCount,
			QueueSize:  cfg.PersistQueueSize,
			MaxRetries: cfg.MaxRetries,
		}, quartz.NewReal(), logger)

		opts.Store = st
		opts.Persister = runner
	} else {
		logger.Warn("database: DATABASE_URL not set, generated questions are not persisted")
	}

	generator := round.NewGenerator(text, resolver, opts, logger)

	// ── HTTP + gRPC on one port ───────────────────────────────────────────────
	handler := api.NewServer(generator, api.Config{
		Env:           cfg.Env,
		AllowedOrigin: cfg.AllowedOrigin,
		Topics:        cfg.Topics,
	}, logger)

	srv := &http.Server{
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // a cold generate can take two text attempts
		IdleTimeout:  120 * time.Second,
	}
	grpcSrv, health := api.NewGRPCServer()

	lis, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	mux := cmux.New(lis)
	grpcL := mux.MatchWithWriters(cmux.HTTP2MatchHeaderFieldSendSettings("content-type", "application/grpc"))
	httpL := mux.Match(cmux.Any())

	// ── Background work ───────────────────────────────────────────────────────
	var bg []<-chan struct{}
	if runner != nil {
		bg = append(bg, goDone(func() { runner.Start(ctx) }))
		if len(cfg.WarmTopics) > 0 {
			warmer := worker.NewWarmer(generator, st, worker.WarmerConfig{
				Topics:   cfg.WarmTopics,
				Interval: cfg.WarmInterval,
				Batch:    cfg.WarmBatch,
				Target:   cfg.StoreHighWatermark,
			}, quartz.NewReal(), logger)
			bg = append(bg, goDone(func() { warmer.Start(ctx) }))
		}
	}

	serverErr := make(chan error, 3)
	go func() {
		if err := grpcSrv.Serve(grpcL); err != nil && !isClosed(err) {
			serverErr <- fmt.Errorf("grpc: %w", err)
		}
	}()
	go func() {
		if err := srv.Serve(httpL); err != nil && !errors.Is(err, http.ErrServerClosed) && !isClosed(err) {
			serverErr <- fmt.Errorf("http: %w", err)
		}
	}()
	go func() {
		logger.Info("server listening", "addr", lis.Addr().String())
		if err := mux.Serve(); err != nil && !isClosed(err) {
			serverErr <- fmt.Errorf("cmux: %w", err)
		}
	}()

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	// Report NOT_SERVING first so health-checking balancers stop routing.
	health.Shutdown()

	// Give in-flight HTTP requests up to 20 seconds to finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	grpcSrv.GracefulStop()
	_ = lis.Close()

	for _, done := range bg {
		<-done
	}
	logger.Info("shutdown complete")
	return nil
}

// buildTextGenerator wires Gemini as primary and the OpenAI-compatible
// endpoint as secondary. Each provider gets its own retry budget.
func buildTextGenerator(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ai.TextGenerator, error) {
	policy := ai.RetryPolicy{Attempts: cfg.TextAttempts, AttemptTimeout: cfg.TextAttemptTimeout}

	var primary, secondary ai.TextGenerator
	if cfg.GeminiAPIKey != "" {
		g, err := ai.NewGeminiClient(ctx, ai.GeminiOptions{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel})
		if err != nil {
			return nil, err
		}
		primary = ai.NewRetrying(g, "gemini", policy, logger)
	}
	if cfg.OpenAIAPIKey != "" {
		o := ai.NewOpenAIClient(ai.OpenAIOptions{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
		})
		secondary = ai.NewRetrying(o, "openai", policy, logger)
	}

	switch {
	case primary != nil && secondary != nil:
		logger.Info("ai: using Gemini with OpenAI fallback")
		return ai.NewFallback(primary, secondary, logger), nil
	case primary != nil:
		logger.Info("ai: using Gemini only")
		return primary, nil
	case secondary != nil:
		logger.Info("ai: using OpenAI only")
		return secondary, nil
	}
	return nil, config.ErrMissingCredential
}

// openDB opens the connection pool and prepares all sqlc statements.
// Using db.Prepare (rather than db.New) means every query is validated against
// the database schema at startup — the server refuses to start if the schema
// is out of sync.
func openDB(dsn string) (*sql.DB, *db.Queries, error) {
	pool, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open: %w", err)
	}

	pool.SetMaxOpenConns(25)
	pool.SetMaxIdleConns(10)
	pool.SetConnMaxLifetime(5 * time.Minute)
	pool.SetConnMaxIdleTime(2 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}

	queries, err := db.Prepare(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("prepare statements: %w", err)
	}

	return pool, queries, nil
}

// goDone runs fn in a goroutine and returns a channel closed when it returns.
func goDone(fn func()) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	return done
}

func isClosed(err error) bool {
	return errors.Is(err, cmux.ErrListenerClosed) || errors.Is(err, net.ErrClosed)
}
