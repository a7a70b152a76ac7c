package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/StudioPredictor/internal/analyze"
	"github.com/Alias1177/StudioPredictor/internal/config"
	"github.com/Alias1177/StudioPredictor/internal/database"
	"github.com/Alias1177/StudioPredictor/internal/metrics"
	"github.com/Alias1177/StudioPredictor/internal/platform/telegram"
	"github.com/Alias1177/StudioPredictor/internal/session"
	"github.com/Alias1177/StudioPredictor/models"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	config.SetupLogger(cfg.LogLevel, os.Stderr)

	if cfg.TelegramToken == "" {
		log.Fatal().Msg("TELEGRAM_BOT_TOKEN not set in environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores := session.FileStores(cfg.DataDir)
	if cfg.DB.Enabled() {
		db, err := database.New(ctx, database.ParamsFromConfig(cfg.DB))
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize database")
		}
		defer db.Close()
		stores = func(sessionID string) models.SnapshotStore { return db.Store(sessionID) }
		log.Info().Str("host", cfg.DB.Host).Msg("Storing sessions in PostgreSQL")
	} else {
		log.Info().Str("dir", cfg.DataDir).Msg("Storing sessions as JSON files")
	}

	collector := metrics.NewCollector()
	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.MetricsAddr, collector.Handler())
	}

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Telegram bot")
	}
	log.Info().Str("username", api.Self.UserName).Msg("Authorized on Telegram")

	bot := &Bot{
		client:   telegram.NewClient(api, telegram.ClientOptions{MessagesPerSec: cfg.TelegramRate}),
		sessions: session.NewRegistry(stores, analyze.WithRecorder(collector)),
		cfg:      cfg,
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = cfg.TelegramTimeout
	updates := api.GetUpdatesChan(updateConfig)

	// Updates are handled one at a time so each session sees its results in order.
	for {
		select {
		case <-ctx.Done():
			api.StopReceivingUpdates()
			log.Info().Msg("Shutting down")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil {
				bot.HandleMessage(ctx, update.Message)
			}
		}
	}
}

func serveMetrics(ctx context.Context, addr string, handler http.Handler) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", addr).Msg("Serving metrics")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("Metrics server stopped")
	}
}
