package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"screener-engine/internal/config"
	"screener-engine/internal/delivery/websocket"
	"screener-engine/internal/domain"
	"screener-engine/internal/infrastructure/cache"
	"screener-engine/internal/infrastructure/db"
	"screener-engine/internal/infrastructure/fcm"
	"screener-engine/internal/infrastructure/okx"
	"screener-engine/internal/repository"
	"screener-engine/internal/scheduler"
	"screener-engine/internal/usecase"

	httpdelivery "screener-engine/internal/delivery/http"
)

const (
	cycleTimeout    = 10 * time.Minute
	shutdownTimeout = 15 * time.Second
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	engine, err := usecase.NewEngine(cfg.Engine)
	if err != nil {
		return err
	}
	pipeline, err := usecase.NewRankingPipeline(engine, cfg.Engine, logger)
	if err != nil {
		return err
	}

	market := okx.NewClient(cfg.OKX.BaseURL, cfg.OKX.RequestsPerSecond, cfg.OKX.Timeout)
	repo := repository.NewInMemoryScreenerRepository()

	var opts []usecase.ScreenerOption
	var tokenStore repository.TokenStore

	if cfg.Database.URL != "" {
		pool, err := db.NewPool(ctx, cfg.Database.URL, db.PoolConfigFromEnv())
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := db.Migrate(ctx, pool); err != nil {
			return err
		}
		opts = append(opts, usecase.WithHistory(repository.NewPostgresCycleRepository(pool)))
		tokenStore = repository.NewPostgresTokenRepository(pool)
		logger.Info("postgres history enabled")
	}

	if cfg.Redis.Addr != "" {
		rc := cache.NewRankingCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
		defer rc.Close()
		if err := rc.Ping(ctx); err != nil {
			logger.Warn("redis unavailable, running without cache", "error", err)
		} else {
			opts = append(opts, usecase.WithCache(rc))
			logger.Info("redis cache enabled", "addr", cfg.Redis.Addr)
		}
	}

	tokens := repository.NewTokenRepository(tokenStore)
	if err := tokens.Load(ctx); err != nil {
		logger.Warn("load device tokens", "error", err)
	}

	push, err := fcm.NewClient(ctx, logger)
	if err != nil {
		return err
	}
	notifier := usecase.NewNotifier(push, tokens, cfg.Firebase.NotifyMinScore, cfg.Firebase.Cooldown, logger)
	opts = append(opts, usecase.WithNotifier(notifier))

	screener := usecase.NewScreenerUsecase(market, pipeline, cfg.Engine.Filters, repo, usecase.ScreenerSettings{
		Timeframe:      cfg.OKX.Timeframe,
		CandleLimit:    cfg.OKX.CandleLimit,
		MaxInstruments: cfg.OKX.MaxInstruments,
		BatchSize:      cfg.OKX.BatchSize,
	}, logger, opts...)

	if err := screener.WarmFromCache(ctx); err != nil && !errors.Is(err, domain.ErrNotFound) {
		logger.Warn("warm from cache", "error", err)
	}

	sched := scheduler.New(ctx, screener, cycleTimeout, logger)
	if err := sched.Register(cfg.Schedule.AnalysisCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()
	if cfg.Schedule.RunOnStart {
		sched.Trigger()
	}

	ws := websocket.NewHandler(repo, logger)
	api := httpdelivery.NewHandler(repo, screener, engine, tokens, push, logger)
	router := api.Routes(func(r *gin.Engine) {
		r.GET("/ws", gin.WrapF(ws.Handle))
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", cfg.Server.Addr,
			"simulated", cfg.Engine.SimulatedMode, "minScore", cfg.Engine.Ranking.MinScore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
