package main

import (
	"context"
	"path/filepath"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/StudioPredictor/internal/config"
	"github.com/Alias1177/StudioPredictor/internal/session"
	"github.com/Alias1177/StudioPredictor/internal/storage"
	"github.com/Alias1177/StudioPredictor/models"
)

type recordingSender struct {
	sent []tgbotapi.MessageConfig
}

func (r *recordingSender) Send(_ context.Context, msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	r.sent = append(r.sent, msg.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func (r *recordingSender) last() string {
	return r.sent[len(r.sent)-1].Text
}

func newTestBot() (*Bot, *recordingSender, map[string]*storage.MemoryStore) {
	return newTestBotWithStores(nil)
}

// newTestBotWithStores uses factory when given, otherwise a fresh memory store per chat.
func newTestBotWithStores(factory session.StoreFactory) (*Bot, *recordingSender, map[string]*storage.MemoryStore) {
	stores := make(map[string]*storage.MemoryStore)
	sender := &recordingSender{}
	if factory == nil {
		factory = func(id string) models.SnapshotStore {
			s := storage.NewMemoryStore(nil)
			stores[id] = s
			return s
		}
	}
	bot := &Bot{
		client:   sender,
		sessions: session.NewRegistry(factory),
		cfg:      &config.Config{HistoryLimit: 72, SignalsLimit: 5},
	}
	return bot, sender, stores
}

func textMessage(chatID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}, Text: text}
}

func commandMessage(chatID int64, text string, length int) *tgbotapi.Message {
	msg := textMessage(chatID, text)
	msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}}
	return msg
}

func TestButtonsDriveTheSession(t *testing.T) {
	ctx := context.Background()
	bot, sender, stores := newTestBot()

	bot.HandleMessage(ctx, textMessage(1, buttonHome))
	bot.HandleMessage(ctx, textMessage(1, buttonAway))
	assert.Contains(t, sender.last(), "Recorded 🔵 AWAY")
	assert.Contains(t, sender.last(), "Next: 🔵 AWAY (pattern 31)")

	bot.HandleMessage(ctx, textMessage(1, buttonAway))
	assert.Contains(t, sender.last(), "Previous suggestion: ✅")

	snap, err := stores["1"].Load(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.History, 3)
	assert.Equal(t, models.Performance{Total: 1, Hits: 1}, snap.Performance)

	bot.HandleMessage(ctx, textMessage(1, buttonUndo))
	assert.Contains(t, sender.last(), "Last result removed.")

	bot.HandleMessage(ctx, textMessage(1, buttonClear))
	assert.Equal(t, "History cleared.", sender.last())

	bot.HandleMessage(ctx, textMessage(1, buttonUndo))
	assert.Equal(t, "Nothing to undo.", sender.last())
}

func TestChatsAreIndependent(t *testing.T) {
	ctx := context.Background()
	bot, _, stores := newTestBot()

	bot.HandleMessage(ctx, textMessage(1, "h"))
	bot.HandleMessage(ctx, textMessage(2, "a"))
	bot.HandleMessage(ctx, textMessage(2, "t"))

	one, err := stores["1"].Load(ctx)
	require.NoError(t, err)
	two, err := stores["2"].Load(ctx)
	require.NoError(t, err)
	assert.Len(t, one.History, 1)
	assert.Len(t, two.History, 2)
}

func TestCommands(t *testing.T) {
	ctx := context.Background()
	bot, sender, _ := newTestBot()

	bot.HandleMessage(ctx, commandMessage(5, "/start", 6))
	assert.Contains(t, sender.last(), "Tap Home, Away or Tie")
	assert.Contains(t, sender.last(), "Record at least 2 results")

	bot.HandleMessage(ctx, commandMessage(5, "/backtest HAAHAT", 9))
	assert.Contains(t, sender.last(), "Replayed 6 results.")
	assert.Contains(t, sender.last(), "Predictions: 3 | Hits: 2")

	bot.HandleMessage(ctx, commandMessage(5, "/backtest", 9))
	assert.Equal(t, "Usage: /backtest HAHHTA", sender.last())

	bot.HandleMessage(ctx, commandMessage(5, "/nope", 5))
	assert.Contains(t, sender.last(), "Unknown command.")
}

func TestUnknownTextIsRejected(t *testing.T) {
	bot, sender, stores := newTestBot()

	bot.HandleMessage(context.Background(), textMessage(3, "maybe"))

	assert.Equal(t, "Please use the buttons below, or send H, A or T.", sender.last())
	assert.Equal(t, 1, stores["3"].Saves, "only the initial save on open")
}

func TestRepliesCarryKeyboard(t *testing.T) {
	bot, sender, _ := newTestBot()

	bot.HandleMessage(context.Background(), textMessage(4, buttonStatus))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, mainKeyboard(), sender.sent[0].ReplyMarkup)
}

func TestForgetDeletesStoredHistory(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	bot, sender, _ := newTestBotWithStores(session.FileStores(dir))

	bot.HandleMessage(ctx, textMessage(8, buttonHome))
	bot.HandleMessage(ctx, textMessage(8, buttonAway))
	require.FileExists(t, filepath.Join(dir, "8.json"))

	bot.HandleMessage(ctx, commandMessage(8, "/forget", 7))
	assert.Equal(t, "Your stored history has been deleted.", sender.last())
	assert.NoFileExists(t, filepath.Join(dir, "8.json"))

	bot.HandleMessage(ctx, textMessage(8, buttonStatus))
	assert.Contains(t, sender.last(), "Record at least 2 results")
	assert.Contains(t, sender.last(), "No results recorded yet.")
}

func TestStatusWhenNoPatternFits(t *testing.T) {
	ctx := context.Background()
	bot, sender, _ := newTestBot()

	bot.HandleMessage(ctx, textMessage(9, buttonHome))
	bot.HandleMessage(ctx, textMessage(9, buttonHome))

	assert.Contains(t, sender.last(), "No known pattern in the latest results")
}
