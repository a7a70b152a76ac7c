package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/StudioPredictor/internal/analyze"
	"github.com/Alias1177/StudioPredictor/internal/baktest"
	"github.com/Alias1177/StudioPredictor/internal/config"
	"github.com/Alias1177/StudioPredictor/internal/session"
	"github.com/Alias1177/StudioPredictor/internal/view"
	"github.com/Alias1177/StudioPredictor/models"
)

// Keyboard labels
const (
	buttonHome   = "🔴 Home"
	buttonAway   = "🔵 Away"
	buttonTie    = "🟡 Tie"
	buttonUndo   = "↩️ Undo"
	buttonClear  = "🗑 Clear"
	buttonStatus = "📊 Status"
)

const helpText = `Tap Home, Away or Tie after every game. I keep your history, suggest the next result from known patterns and track how often the suggestions were right.

/status shows the dashboard
/undo removes the last result
/clear erases everything
/forget deletes your stored history
/backtest HAHTH... replays a sequence without touching your history`

// messageSender is implemented by *telegram.Client
type messageSender interface {
	Send(ctx context.Context, msg tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot turns chat messages into engine operations, one session per chat.
type Bot struct {
	client   messageSender
	sessions *session.Registry
	cfg      *config.Config
}

// HandleMessage processes incoming text messages
func (b *Bot) HandleMessage(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	logger := log.With().Int64("chat_id", chatID).Logger()

	sessionID := strconv.FormatInt(chatID, 10)

	if message.IsCommand() && message.Command() == "forget" {
		if err := b.sessions.Forget(ctx, sessionID); err != nil {
			logger.Error().Err(err).Msg("Error deleting session")
			b.reply(ctx, chatID, "Sorry, your history could not be deleted right now. Please try again later.")
			return
		}
		logger.Info().Msg("Session deleted")
		b.reply(ctx, chatID, "Your stored history has been deleted.")
		return
	}

	engine, opened, err := b.sessions.Get(ctx, sessionID)
	if err != nil {
		logger.Error().Err(err).Msg("Error opening session")
		b.reply(ctx, chatID, "Sorry, your history could not be loaded right now. Please try again later.")
		return
	}
	if opened && engine.LoadWarning() != nil {
		b.reply(ctx, chatID, "Your saved history was unreadable and has been reset.")
	}

	text, err := b.dispatch(ctx, engine, message)
	if err != nil {
		logger.Error().Err(err).Str("text", message.Text).Msg("Error handling message")
		text = "Your last action was applied but could not be saved: " + err.Error()
	}
	b.reply(ctx, chatID, text)
}

func (b *Bot) dispatch(ctx context.Context, engine *analyze.Engine, message *tgbotapi.Message) (string, error) {
	if message.IsCommand() {
		switch message.Command() {
		case "start", "help":
			return helpText + "\n\n" + b.dashboard(engine), nil
		case "status":
			return b.dashboard(engine), nil
		case "undo":
			return b.undo(ctx, engine)
		case "clear":
			return b.clear(ctx, engine)
		case "backtest":
			return backtest(ctx, message.CommandArguments()), nil
		default:
			return "Unknown command.\n\n" + helpText, nil
		}
	}

	switch strings.TrimSpace(message.Text) {
	case buttonHome:
		return b.submit(ctx, engine, models.Home)
	case buttonAway:
		return b.submit(ctx, engine, models.Away)
	case buttonTie:
		return b.submit(ctx, engine, models.Tie)
	case buttonUndo:
		return b.undo(ctx, engine)
	case buttonClear:
		return b.clear(ctx, engine)
	case buttonStatus:
		return b.dashboard(engine), nil
	}

	outcome, err := models.ParseOutcome(message.Text)
	if err != nil {
		return "Please use the buttons below, or send H, A or T.", nil
	}
	return b.submit(ctx, engine, outcome)
}

func (b *Bot) submit(ctx context.Context, engine *analyze.Engine, outcome models.Outcome) (string, error) {
	ev, err := engine.Submit(ctx, outcome)
	if err != nil {
		return "", err
	}
	return view.Event(ev) + "\n\n" + b.dashboard(engine), nil
}

func (b *Bot) undo(ctx context.Context, engine *analyze.Engine) (string, error) {
	removed, err := engine.Undo(ctx)
	if err != nil {
		return "", err
	}
	if !removed {
		return "Nothing to undo.", nil
	}
	return "Last result removed.\n\n" + b.dashboard(engine), nil
}

func (b *Bot) clear(ctx context.Context, engine *analyze.Engine) (string, error) {
	if err := engine.Clear(ctx); err != nil {
		return "", err
	}
	return "History cleared.", nil
}

func (b *Bot) dashboard(engine *analyze.Engine) string {
	return view.Dashboard(engine, b.cfg.HistoryLimit, b.cfg.SignalsLimit)
}

func backtest(ctx context.Context, args string) string {
	outcomes, err := baktest.ParseSequence(args)
	if err != nil {
		return "Could not read that sequence: use H, A and T, for example /backtest HAHHTA"
	}
	if len(outcomes) == 0 {
		return "Usage: /backtest HAHHTA"
	}
	results, err := baktest.RunBacktest(ctx, outcomes)
	if err != nil {
		return "Backtest failed: " + err.Error()
	}
	return fmt.Sprintf("Replayed %d results.\n%s\nLongest streaks: %d hits, %d misses",
		results.Outcomes,
		view.Metrics(models.Performance{Total: results.Total, Hits: results.Hits, Misses: results.Misses}),
		results.MaxConsecutive.Hits, results.MaxConsecutive.Misses)
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = mainKeyboard()
	if _, err := b.client.Send(ctx, msg); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("Error sending message")
	}
}

// mainKeyboard returns the result entry keyboard
func mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonHome),
			tgbotapi.NewKeyboardButton(buttonAway),
			tgbotapi.NewKeyboardButton(buttonTie),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonUndo),
			tgbotapi.NewKeyboardButton(buttonClear),
			tgbotapi.NewKeyboardButton(buttonStatus),
		),
	)
}
