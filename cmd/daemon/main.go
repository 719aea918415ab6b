package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"StockPulse/internal/config"
	"StockPulse/internal/notifier"
	"StockPulse/internal/provider"
	"StockPulse/internal/scheduler"
	"StockPulse/internal/store"
)

func main() {
	// Credentials live in .env in development; absence is fine.
	_ = godotenv.Load()

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	bootLog := zerolog.New(os.Stderr)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		bootLog.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		bootLog.Fatal().Err(err).Msg("config validation")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	logger.Info().Msg("StockPulse starting")

	st, err := store.Open(cfg.Database.SQLitePath, cfg.Symbols, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open store")
	}
	defer st.Close()
	if err := st.SeedReference("resources"); err != nil {
		logger.Warn().Err(err).Msg("seed reference tables")
	}

	prov := provider.Select(cfg.Proxy, logger)

	var notif notifier.Notifier
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		notif = notifier.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, logger)
	} else {
		logger.Warn().Msg("no telegram credentials, alerts disabled")
		notif = notifier.Noop{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.New(ctx, cfg, st, prov, notif, logger)
	if err := sched.Register(); err != nil {
		logger.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()

	if tg, ok := notif.(*notifier.Telegram); ok {
		startupCtx, startupCancel := context.WithTimeout(ctx, time.Minute)
		if err := tg.NotifyWithRetry(startupCtx, "StockPulse", "ingestion daemon started", 3); err != nil {
			logger.Warn().Err(err).Msg("startup notification failed")
		}
		startupCancel()
	}

	logger.Info().Str("provider", prov.Name()).Msg("StockPulse is running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info().Msg("shutdown signal received, stopping")
	cancel()
	sched.Stop()
	logger.Info().Msg("StockPulse stopped")
}
