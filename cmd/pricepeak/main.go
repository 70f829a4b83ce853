package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"pricepeak/internal/api"
	"pricepeak/internal/collector"
	"pricepeak/internal/config"
	"pricepeak/internal/generator"
	"pricepeak/internal/logging"
	"pricepeak/internal/model"
	"pricepeak/internal/notifier"
	"pricepeak/internal/portfolio"
	"pricepeak/internal/random"
	"pricepeak/internal/recorder"
	"pricepeak/internal/scheduler"
	"pricepeak/internal/strategy"
	"pricepeak/internal/summary"
)

func main() {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		panic("load config: " + err.Error())
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		panic("init logger: " + err.Error())
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("config validation", zap.Error(err))
	}
	logger.Info("pricepeak starting", zap.String("config", cfgPath))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	kind, err := strategy.Parse(cfg.Backtest.Strategy)
	if err != nil {
		logger.Fatal("backtest strategy", zap.Error(err))
	}

	// Pipeline
	genOpts := []generator.Option{generator.WithStrictOHLC(cfg.Simulation.StrictOHLC)}
	fetcher := collector.NewSyntheticFetcher(genOpts...)
	logger.Info("data source", zap.String("fetcher", fetcher.Name()))
	col := collector.NewCollector(fetcher, random.New(cfg.Simulation.Seed), logger)
	base := collector.Request{
		Instruments: cfg.Simulation.Instruments,
		Days:        cfg.Simulation.Days,
		Strategy:    kind,
		Lookback:    cfg.Backtest.Lookback,
		Horizon:     cfg.Simulation.Horizon,
		Paths:       cfg.Simulation.Paths,
		Draws:       cfg.Simulation.Draws,
		Workers:     cfg.Simulation.Workers,
	}

	// Portfolio
	store, closeStore := newStore(ctx, cfg, logger)
	defer closeStore()
	pm, err := portfolio.NewManager(ctx, store, model.Portfolio(cfg.Portfolio.Weights), logger)
	if err != nil {
		logger.Fatal("init portfolio", zap.Error(err))
	}

	// Recorder
	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, logger)
		if err != nil {
			logger.Warn("init sqlite recorder failed, using noop", zap.Error(err))
		} else {
			rec = sr
			defer sr.Close()
		}
	}

	// Summary
	var sum summary.Summarizer = summary.NoopSummarizer{}
	if cfg.Summary.APIKey != "" {
		gs, err := summary.NewGeminiSummarizer(ctx, cfg.Summary.APIKey, cfg.Summary.Model)
		if err != nil {
			logger.Warn("init gemini summarizer failed, summaries disabled", zap.Error(err))
		} else {
			sum = gs
		}
	}

	// Notifier
	var n notifier.Notifier = notifier.LogNotifier{Logger: logger}
	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, logger)
		n = tn
	}

	sched := scheduler.NewScheduler(ctx, col, pm, n, rec, sum, base, logger)
	if _, err := sched.Refresh(ctx); err != nil {
		logger.Fatal("initial snapshot", zap.Error(err))
	}
	if err := sched.RegisterAll(cfg.Schedule.RefreshCron, cfg.Schedule.ReportCron); err != nil {
		logger.Fatal("register cron tasks", zap.Error(err))
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		logger.Info("telegram polling started")
	}
	if os.Getenv("RUN_ON_START") == "true" {
		logger.Info("RUN_ON_START enabled, sending report now")
		go sched.RunReportNow()
	}

	// HTTP API
	h := api.NewHandler(sched, pm, sum, api.Defaults{
		Days:     cfg.Simulation.Days,
		Horizon:  cfg.Simulation.Horizon,
		Paths:    cfg.Simulation.Paths,
		Draws:    cfg.Simulation.Draws,
		Workers:  cfg.Simulation.Workers,
		Lookback: cfg.Backtest.Lookback,
		Strategy: kind,
	}, logger, genOpts...)
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.NewRouter(h),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", zap.Error(err))
			cancel()
		}
	}()
	logger.Info("pricepeak is running", zap.String("addr", cfg.Server.Addr))

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	logger.Info("shutdown signal received, stopping")
	shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	cancel()
	logger.Info("pricepeak stopped")
}

// newStore builds the configured portfolio store and its cleanup.
func newStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (portfolio.Store, func()) {
	switch cfg.Portfolio.Store {
	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Fatal("connect redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		logger.Info("portfolio store: redis", zap.String("addr", cfg.Redis.Addr))
		return portfolio.NewRedisStore(client, cfg.Redis.Key), func() { _ = client.Close() }
	case config.StoreMemory:
		return &portfolio.MemoryStore{}, func() {}
	default:
		logger.Info("portfolio store: file", zap.String("path", cfg.Portfolio.StateFile))
		return portfolio.NewFileStore(cfg.Portfolio.StateFile), func() {}
	}
}
