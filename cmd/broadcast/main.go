package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/StudioPredictor/internal/config"
	"github.com/Alias1177/StudioPredictor/internal/database"
	"github.com/Alias1177/StudioPredictor/internal/platform/telegram"
	"github.com/Alias1177/StudioPredictor/internal/session"
)

// broadcast sends an announcement to every chat that has a stored session.
// The text is taken from the arguments, or from stdin when there are none.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	config.SetupLogger(cfg.LogLevel, os.Stderr)

	message, err := announcement(os.Args[1:], os.Stdin)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read announcement")
	}

	if cfg.TelegramToken == "" {
		log.Fatal().Msg("TELEGRAM_BOT_TOKEN not set in environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ids, err := sessionIDs(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list sessions")
	}
	log.Info().Int("sessions", len(ids)).Msg("Found sessions")

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Telegram bot")
	}
	client := telegram.NewClient(api, telegram.ClientOptions{MessagesPerSec: cfg.TelegramRate})

	sent, failed := 0, 0
	for i, id := range ids {
		chatID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			log.Warn().Str("session_id", id).Msg("Skipping session that is not a chat ID")
			continue
		}

		if _, err := client.Send(ctx, tgbotapi.NewMessage(chatID, message)); err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
			failed++
			continue
		}
		log.Debug().Int64("chat_id", chatID).Msgf("Message sent [%d/%d]", i+1, len(ids))
		sent++
	}

	log.Info().Int("sent", sent).Int("failed", failed).Int("total", len(ids)).Msg("Broadcast completed")
	fmt.Printf("Broadcast completed: %d sent, %d failed out of %d sessions\n", sent, failed, len(ids))
}

func announcement(args []string, stdin io.Reader) (string, error) {
	text := strings.Join(args, " ")
	if text == "" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", err
		}
		text = string(data)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("empty announcement")
	}
	return text, nil
}

func sessionIDs(ctx context.Context, cfg *config.Config) ([]string, error) {
	if !cfg.DB.Enabled() {
		return session.FileSessionIDs(cfg.DataDir)
	}
	db, err := database.New(ctx, database.ParamsFromConfig(cfg.DB))
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return db.SessionIDs(ctx)
}
