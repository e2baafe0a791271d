package telegram_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dewakar-s/procflow/internal/runtime"
	"github.com/dewakar-s/procflow/pkg/adapters/memory"
	"github.com/dewakar-s/procflow/pkg/adapters/telegram"
	"github.com/dewakar-s/procflow/pkg/domain"
	"github.com/dewakar-s/procflow/pkg/registry"
	"github.com/dewakar-s/procflow/pkg/session"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBot struct {
	updates chan tgbotapi.Update
	mu      sync.Mutex
	sent    []tgbotapi.MessageConfig
}

func newFakeBot() *fakeBot {
	return &fakeBot{updates: make(chan tgbotapi.Update, 10)}
}

func (b *fakeBot) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return b.updates
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		b.sent = append(b.sent, m)
	}
	return tgbotapi.Message{}, nil
}

func (b *fakeBot) StopReceivingUpdates() {}

func (b *fakeBot) texts() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.sent))
	for i, m := range b.sent {
		out[i] = m.Text
	}
	return out
}

func message(updateID int, chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: updateID,
		Message:  &tgbotapi.Message{Text: text, Chat: &tgbotapi.Chat{ID: chatID}},
	}
}

var proc = domain.Procedure{Steps: []domain.Step{
	{Type: domain.StepAskUser, Action: "ask_name", Message: "What is your name?"},
	{Type: domain.StepRespondFinal, Message: "Hello {{ .answers.ask_name }}!"},
}}

func newGateway(bot *fakeBot) *telegram.Gateway {
	ctrl := session.NewController(session.NewManager(memory.NewStore()), runtime.NewEngine(registry.NewRegistry()))
	return telegram.NewGateway(bot, ctrl, proc)
}

func TestGateway_Conversation(t *testing.T) {
	bot := newFakeBot()
	g := newGateway(bot)
	ctx := context.Background()

	require.NoError(t, g.Handle(ctx, message(1, 99, "/start")))
	require.NoError(t, g.Handle(ctx, message(2, 99, "Ada")))
	// Redelivered update is replayed, not applied to a finished session.
	require.NoError(t, g.Handle(ctx, message(2, 99, "Ada")))
	require.NoError(t, g.Handle(ctx, message(3, 99, "again?")))

	assert.Equal(t, []string{
		"What is your name?",
		"Hello Ada!",
		"Hello Ada!",
		"This conversation is finished. Send /start to begin again.",
	}, bot.texts())

	require.NoError(t, g.Handle(ctx, message(4, 99, "/start")))
	assert.Equal(t, "What is your name?", bot.texts()[4])
}

func TestGateway_FirstMessageStartsSession(t *testing.T) {
	bot := newFakeBot()
	g := newGateway(bot)

	require.NoError(t, g.Handle(context.Background(), message(1, 5, "hi")))
	assert.Equal(t, []string{"What is your name?"}, bot.texts())
	assert.Equal(t, "tg-5", telegram.SessionID(5))
}

func TestGateway_Run(t *testing.T) {
	bot := newFakeBot()
	g := newGateway(bot)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error)
	go func() { done <- g.Run(ctx) }()

	bot.updates <- message(1, 7, "/start")
	bot.updates <- tgbotapi.Update{UpdateID: 2}
	bot.updates <- message(3, 7, "Grace")

	assert.Eventually(t, func() bool { return len(bot.texts()) == 2 }, time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, "Hello Grace!", bot.texts()[1])
}
