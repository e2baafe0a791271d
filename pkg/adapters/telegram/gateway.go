// Package telegram runs procedures as Telegram conversations, one session per chat.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/dewakar-s/procflow/internal/logging"
	"github.com/dewakar-s/procflow/pkg/domain"
	"github.com/dewakar-s/procflow/pkg/runner"
	"github.com/dewakar-s/procflow/pkg/session"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Bot is the part of *tgbotapi.BotAPI the gateway uses.
type Bot interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	StopReceivingUpdates()
}

// Sessions is the controller surface the gateway drives.
type Sessions interface {
	Start(ctx context.Context, sessionID string, proc domain.Procedure) (domain.Outcome, error)
	Resume(ctx context.Context, sessionID string, req session.ResumeRequest) (domain.Outcome, error)
	Delete(ctx context.Context, sessionID string) error
}

// Gateway maps chat messages to start and resume calls.
type Gateway struct {
	bot       Bot
	sessions  Sessions
	procedure domain.Procedure
	logger    *slog.Logger
}

// Option configures the Gateway.
type Option func(*Gateway)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gateway) { g.logger = l }
}

// NewGateway creates a gateway that runs proc for every chat.
func NewGateway(bot Bot, sessions Sessions, proc domain.Procedure, opts ...Option) *Gateway {
	g := &Gateway{
		bot:       bot,
		sessions:  sessions,
		procedure: proc,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Connect authorizes token against the Telegram API.
func Connect(token string) (*tgbotapi.BotAPI, error) {
	return tgbotapi.NewBotAPI(token)
}

// SessionID is the session used for a chat.
func SessionID(chatID int64) string {
	return "tg-" + strconv.FormatInt(chatID, 10)
}

// Run long-polls for updates until ctx is cancelled.
func (g *Gateway) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := g.bot.GetUpdatesChan(u)
	defer g.bot.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.Chat == nil {
				continue
			}
			if err := g.Handle(ctx, update); err != nil {
				g.logger.Error("telegram: failed to handle update", "update_id", update.UpdateID, "error", err)
			}
		}
	}
}

// Handle processes a single update and replies in its chat.
func (g *Gateway) Handle(ctx context.Context, update tgbotapi.Update) error {
	chatID := update.Message.Chat.ID
	id := SessionID(chatID)
	text := strings.TrimSpace(update.Message.Text)
	g.logger.Debug("telegram: message", "chat_id", chatID, "update_id", update.UpdateID)

	var (
		out domain.Outcome
		err error
	)
	if text == "/start" {
		if err := g.sessions.Delete(ctx, id); err != nil {
			return err
		}
		out, err = g.sessions.Start(ctx, id, g.procedure)
	} else {
		out, err = g.resume(ctx, id, text, update.UpdateID)
	}

	switch {
	case errors.Is(err, domain.ErrSessionNotSuspended):
		return g.send(chatID, "This conversation is finished. Send /start to begin again.")
	case err != nil:
		_ = g.send(chatID, "Something went wrong, please try again later.")
		return err
	}
	return g.reply(chatID, out)
}

func (g *Gateway) resume(ctx context.Context, id, text string, updateID int) (domain.Outcome, error) {
	answer, err := runner.SanitizeInput(text)
	if err != nil {
		return domain.Outcome{}, err
	}
	// Telegram may redeliver an update; its ID makes the resume idempotent.
	out, err := g.sessions.Resume(ctx, id, session.ResumeRequest{
		Answer: answer,
		Token:  fmt.Sprintf("tg-update-%d", updateID),
	})
	if errors.Is(err, domain.ErrSessionNotFound) {
		return g.sessions.Start(ctx, id, g.procedure)
	}
	return out, err
}

func (g *Gateway) reply(chatID int64, out domain.Outcome) error {
	text := out.Question
	if out.Status == domain.OutcomeDone {
		text = out.FinalResponse
	}
	if text == "" {
		text = "Done."
	}
	return g.send(chatID, runner.StripMarkup(text))
}

func (g *Gateway) send(chatID int64, text string) error {
	_, err := g.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}
