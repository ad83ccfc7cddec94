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
	"github.com/redis/go-redis/v9"

	"jeopardy-trainer-go/internal/config"
	"jeopardy-trainer-go/internal/coryat"
	"jeopardy-trainer-go/internal/db"
	httpapi "jeopardy-trainer-go/internal/http"
	"jeopardy-trainer-go/internal/migrations"
	"jeopardy-trainer-go/internal/notify"
	"jeopardy-trainer-go/internal/quiz"
	"jeopardy-trainer-go/internal/services"
	"jeopardy-trainer-go/internal/stats"
	"jeopardy-trainer-go/internal/store"
	"jeopardy-trainer-go/internal/study"
)

const sessionPurgeInterval = time.Hour

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger, closeLogs := setupLogger(ctx, cfg.LogDir, cfg.LogRetentionDays, cfg.LogLevel)
	defer closeLogs()
	slog.SetDefault(logger)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		closeLogs()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer database.Close()
	// Schema changes are applied out of band by cmd/migrate.
	pending, err := migrations.Pending(ctx, database)
	if err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	if len(pending) > 0 {
		logger.Warn("schema has pending migrations", "pending", pending)
	}

	st := store.New(database)

	counts, closeCache, err := countCache(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeCache()
	selector := quiz.NewSelector(st, counts, nil, logger)

	var sender notify.Sender = notify.LogSender{Logger: logger}
	if cfg.EmailEnabled() {
		sender = notify.NewResendSender(cfg.ResendAPIKey, cfg.EmailFrom)
	}
	dispatcher := notify.NewDispatcher(sender, 2, 64, logger)
	notifier := notify.NewNotifier(dispatcher, cfg.AdminEmail, cfg.AppBaseURL)

	events := services.NewEventHub(logger)
	go events.Run(ctx)

	tokens := services.TokenService{
		Secret:     []byte(cfg.JWTSecret),
		Issuer:     cfg.JWTIssuer,
		AccessTTL:  time.Duration(cfg.AccessTTLSeconds) * time.Second,
		SessionTTL: time.Duration(cfg.SessionTTLSeconds) * time.Second,
	}
	accounts := services.NewAccounts(st, tokens, time.Duration(cfg.SessionRefreshSeconds)*time.Second, notifier, events, logger)
	if err := accounts.EnsureAdmin(ctx, cfg.BootstrapAdminEmail); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	var analyzer study.Analyzer
	if cfg.StudyEnabled() {
		analyzer = study.NewOpenAIAnalyzer(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	} else {
		logger.Warn("study recommendations disabled", "reason", "OPENAI_API_KEY not set")
	}

	server := &httpapi.Server{
		Config:   cfg,
		Logger:   logger,
		DB:       st,
		Accounts: accounts,
		Selector: selector,
		Quiz:     quiz.NewService(st, logger, nil),
		Catalog:  quiz.NewCatalog(st, selector),
		Coryat:   coryat.NewService(st, coryat.NewGenerator(st, nil), logger),
		Study:    study.NewService(st, analyzer, time.Duration(cfg.LLMTimeoutSeconds)*time.Second, logger),
		Stats:    stats.NewService(st),
		Metrics:  st,
		Events:   events,
	}

	go metricsLoop(ctx, st, events, cfg, logger)
	go sessionPurgeLoop(ctx, st, logger)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// study generation waits on the LLM
		WriteTimeout: time.Duration(cfg.LLMTimeoutSeconds)*time.Second + 30*time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)
	select {
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	case err := <-serveErr:
		return fmt.Errorf("server: %w", err)
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		logger.Warn("email queue not drained", "error", err)
	}
	logger.Info("shutdown complete")
	return nil
}

// countCache prefers Redis so every instance shares the same counts.
func countCache(ctx context.Context, cfg config.Config, logger *slog.Logger) (quiz.CountCache, func(), error) {
	ttl := time.Duration(cfg.CountCacheTTLSeconds) * time.Second
	if cfg.RedisURL == "" {
		return quiz.NewMemoryCountCache(ttl, nil), func() {}, nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("redis url: %w", err)
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		logger.Warn("redis unavailable, using in-process count cache", "error", err)
		return quiz.NewMemoryCountCache(ttl, nil), func() {}, nil
	}
	logger.Info("count cache", "backend", "redis", "addr", opts.Addr)
	return quiz.NewRedisCountCache(client, ttl), func() { _ = client.Close() }, nil
}

func metricsLoop(ctx context.Context, st *store.Store, hub *services.EventHub, cfg config.Config, logger *slog.Logger) {
	interval := time.Duration(cfg.MetricsSampleSeconds) * time.Second
	if interval <= 0 {
		interval = 15 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if _, err := services.RecordMetrics(ctx, st, hub, cfg.MetricsDiskPath); err != nil {
				logger.Warn("metrics capture", "error", err)
				continue
			}
			if _, err := st.PruneMetricSamples(ctx, services.MaxMetricHistory); err != nil {
				logger.Warn("metrics prune", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

func sessionPurgeLoop(ctx context.Context, st *store.Store, logger *slog.Logger) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			n, err := st.PurgeExpiredSessions(ctx, time.Now().UTC())
			if err != nil {
				logger.Warn("session purge", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("expired sessions purged", "count", n)
			}
		case <-ctx.Done():
			return
		}
	}
}
