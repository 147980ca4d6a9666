package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"market-advisor/internal/analyzer"
	"market-advisor/internal/api"
	"market-advisor/internal/cache"
	"market-advisor/internal/collector"
	"market-advisor/internal/config"
	"market-advisor/internal/predictor"
	"market-advisor/internal/provider"
	"market-advisor/internal/storage"
	"market-advisor/pkg/types"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		cfg = config.Default()
	}

	log := newLogger(cfg.Logging)
	log.Info().Msg("market advisor starting")

	store := storage.NewMemoryStorage(cfg.Storage.MaxQuotesInMemory)
	resultCache := cache.NewMemory(nil)

	engine := predictor.NewEngine(&cfg, resultCache)
	dataProvider := provider.NewClient(cfg.DataSource, log)
	analysis := analyzer.New(&cfg, dataProvider, engine, resultCache, log)

	var stream *collector.StreamCollector
	if cfg.DataSource.StreamURL != "" {
		stream = collector.NewStreamCollector(store, cfg.DataSource, cfg.DataSource.StreamSymbols, log)
		stream.Start()
	} else {
		log.Info().Msg("no stream URL configured, live collector disabled")
	}

	go backgroundPurge(resultCache, store, cfg, log)

	server := api.NewServer(engine, analysis, store, cfg.API, log)
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal().Err(err).Msg("API server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	log.Info().Int("port", cfg.API.Port).Msg("system ready")
	<-quit

	log.Info().Msg("shutting down")
	if stream != nil {
		stream.Stop()
	}
	if err := server.Shutdown(); err != nil {
		log.Warn().Err(err).Msg("error during shutdown")
	}
}

// backgroundPurge sweeps expired cache entries and stale symbol
// histories on the configured interval
func backgroundPurge(resultCache *cache.Memory, store *storage.MemoryStorage, cfg types.Config, log zerolog.Logger) {
	interval := time.Duration(cfg.Cache.PurgeIntervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		resultCache.Purge()
		store.Cleanup(24 * time.Hour)
		log.Debug().Int("cached", resultCache.Len()).Msg("cache purge completed")
	}
}

func newLogger(cfg types.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Console {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Logger()
}
