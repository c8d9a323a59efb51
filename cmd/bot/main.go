package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"BistSentinel/internal/collector"
	"BistSentinel/internal/config"
	"BistSentinel/internal/logger"
	"BistSentinel/internal/notifier"
	"BistSentinel/internal/recorder"
	"BistSentinel/internal/scanner"
	"BistSentinel/internal/scheduler"
	"BistSentinel/internal/symbols"
)

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Fatal("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("config validation: %v", err)
	}
	logger.Init(cfg.Logging.Level)
	logger.Info("BistSentinel starting...")

	// Init fetcher
	var fetcher collector.Fetcher
	if cfg.DataSource.BaseURL != "" {
		fetcher = collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	} else {
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	if cfg.Cache.RedisAddr != "" {
		store := collector.NewRedisStore(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
		if err := store.Ping(context.Background()); err != nil {
			logger.Warn("redis unavailable, caching disabled: %v", err)
			store.Close()
		} else {
			defer store.Close()
			fetcher = collector.NewCachedFetcher(fetcher, store, cfg.Cache.TTL)
		}
	}
	logger.Info("data source: %s", fetcher.Name())

	// Instrument universe
	universe, err := symbols.Load(cfg.Scan.SymbolsFile)
	if err != nil {
		logger.Fatal("load symbols: %v", err)
	}
	logger.Info("loaded %d symbols", len(universe))

	sc := scanner.New(fetcher,
		scanner.WithGate(scanner.NewGate(cfg.Scan.Concurrency)),
		scanner.WithPacing(cfg.Scan.Pacing),
	)

	// Init Telegram notifier
	tn, err := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	if err != nil {
		logger.Fatal("init telegram: %v", err)
	}

	// Init recorder
	rec := openRecorder(cfg)
	defer rec.Close()

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, sc, tn, rec, universe, cfg.Scan.Interval, cfg.Scan.Period, cfg.Scan.TopN)
	if err := sched.RegisterAll(cfg.Schedule.ScanCron); err != nil {
		logger.Fatal("register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	go tn.StartPolling(ctx, sched.HandleCommand)
	logger.Info("telegram polling started")

	if os.Getenv("RUN_ON_START") == "true" {
		logger.Info("RUN_ON_START enabled, executing scan now")
		go sched.RunScanNow()
	}

	logger.Info("BistSentinel is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutdown signal received, stopping...")
	cancel()
}

func openRecorder(cfg *config.Config) recorder.Recorder {
	if cfg.Database.PostgresDSN != "" {
		pr, err := recorder.NewPostgresRecorder(cfg.Database.PostgresDSN)
		if err == nil {
			return pr
		}
		logger.Warn("init postgres recorder failed: %v", err)
	}
	if cfg.Database.SQLitePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.SQLitePath), 0o755); err != nil {
			logger.Warn("create database directory: %v", err)
		}
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err == nil {
			return sr
		}
		logger.Warn("init sqlite recorder failed, using noop: %v", err)
	}
	return recorder.NewNoopRecorder()
}
