package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"StockArchive/internal/collector"
	"StockArchive/internal/config"
	"StockArchive/internal/logging"
	"StockArchive/internal/notifier"
	"StockArchive/internal/pipeline"
	"StockArchive/internal/recorder"
	"StockArchive/internal/store"
	"StockArchive/internal/watchlist"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup runs before exit.
func run() int {
	_ = godotenv.Load(".env")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		zap.NewExample().Error("load config", zap.Error(err))
		return 1
	}

	logger := logging.New(cfg.LogLevel)
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Error("config validation", zap.Error(err))
		return 1
	}

	symbols, err := watchlist.Load(cfg.WatchlistFile, cfg.DefaultSymbol)
	if err != nil {
		logger.Error("load watchlist", zap.Error(err))
		return 1
	}
	logger.Info("watchlist loaded", zap.String("path", cfg.WatchlistFile), zap.Strings("symbols", symbols))

	// Init fetcher
	var fetcher collector.Fetcher
	switch cfg.Provider.Name {
	case config.ProviderTable:
		fetcher = collector.NewTableFetcher(cfg.Provider.BaseURL, cfg.Provider.APIKey, cfg.Proxy, cfg.Provider.Timeout)
	default:
		fetcher = collector.NewYahooFetcher(cfg.Provider.BaseURL, cfg.Proxy, cfg.Provider.Timeout)
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, logger)
		if err != nil {
			logger.Warn("init sqlite recorder failed, using noop", zap.Error(err))
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	if cfg.MetadataEnabled() {
		if prev, err := store.LoadMetadata(cfg.Metadata.Path); err != nil {
			logger.Warn("read previous metadata", zap.Error(err))
		} else if prev != nil {
			logger.Info("previous run", zap.String("last_updated", prev.LastUpdated), zap.Int("stocks", len(prev.Stocks)))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := pipeline.New(fetcher, rec, logger, pipeline.Options{
		OutputDir:     cfg.OutputDir,
		MetadataPath:  cfg.Metadata.Path,
		WriteMetadata: cfg.MetadataEnabled(),
	})
	report, err := p.Run(ctx, symbols)
	if err != nil {
		logger.Error("run aborted", zap.Error(err))
		return 1
	}

	tn := notifier.NewTelegramNotifier("", cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, logger)
	if tn.Enabled() {
		if err := tn.SendWithRetry(ctx, notifier.FormatRunSummary(report), 3); err != nil {
			logger.Error("send notification", zap.Error(err))
		}
	}

	logger.Info("all tasks complete", zap.Strings("succeeded", report.Succeeded()))
	return 0
}
