// internal/bot/telegram.go
package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// Bound on connection retries against the Bot API.
	connectMaxElapsed = 15 * time.Second
	// Buffered events between the poller and the dispatch workers.
	eventBuffer = 100
)

// Transport owns the Telegram connection. It long-polls raw updates into
// classified events and pushes replies back through a shared rate-limited
// send path.
type Transport struct {
	api      *tgbotapi.BotAPI
	limiter  *rate.Limiter
	timeout  int
	stopOnce sync.Once
	logger   *zap.Logger
}

// NewTransport authorizes against the Bot API, retrying transient failures
// with exponential backoff.
func NewTransport(ctx context.Context, token string, pollTimeout int, sendRate float64, logger *zap.Logger) (*Transport, error) {
	api, err := backoff.Retry(
		ctx,
		func() (*tgbotapi.BotAPI, error) {
			return tgbotapi.NewBotAPI(token)
		},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(connectMaxElapsed),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to authorize bot: %w", err)
	}

	log := logger.Named("telegram")
	log.Info("✅ Authorized on Telegram", zap.String("username", api.Self.UserName))

	return &Transport{
		api:     api,
		limiter: rate.NewLimiter(rate.Limit(sendRate), int(sendRate)),
		timeout: pollTimeout,
		logger:  log,
	}, nil
}

// Updates starts long polling and classifies raw updates into events. The
// returned channel closes once ctx is cancelled and polling has stopped.
func (t *Transport) Updates(ctx context.Context) (<-chan Event, error) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = t.timeout

	updates, err := t.api.GetUpdatesChan(u)
	if err != nil {
		return nil, fmt.Errorf("failed to open update channel: %w", err)
	}

	events := make(chan Event, eventBuffer)
	go func() {
		defer close(events)
		for {
			select {
			case <-ctx.Done():
				_ = t.Close()
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				ev, ok := t.classify(update)
				if !ok {
					continue
				}
				select {
				case events <- ev:
				case <-ctx.Done():
					_ = t.Close()
					return
				}
			}
		}
	}()
	return events, nil
}

// classify maps one raw update onto a typed event. Callback presses are
// acknowledged here so the client stops showing its spinner.
func (t *Transport) classify(update tgbotapi.Update) (Event, bool) {
	now := time.Now()

	if update.CallbackQuery != nil {
		query := update.CallbackQuery
		if _, err := t.api.AnswerCallbackQuery(tgbotapi.NewCallback(query.ID, "")); err != nil {
			t.logger.Warn("Failed to answer callback query", zap.Error(err))
		}
		if query.Message == nil {
			return nil, false
		}
		return ButtonEvent{
			UserID:    query.Message.Chat.ID,
			Token:     query.Data,
			Timestamp: now,
		}, true
	}

	if update.Message == nil || update.Message.Text == "" {
		return nil, false
	}

	chatID := update.Message.Chat.ID
	if update.Message.IsCommand() {
		return CommandEvent{
			UserID:    chatID,
			Name:      update.Message.Command(),
			Args:      strings.Fields(update.Message.CommandArguments()),
			Timestamp: now,
		}, true
	}

	text := strings.TrimSpace(update.Message.Text)
	if text == "" {
		return nil, false
	}
	return TextEvent{UserID: chatID, Text: text, Timestamp: now}, true
}

// Send delivers one reply, waiting on the shared rate limit first.
func (t *Transport) Send(ctx context.Context, userID int64, reply Reply) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}

	if reply.PhotoURL != "" {
		photo := tgbotapi.NewPhotoShare(userID, reply.PhotoURL)
		if _, err := t.api.Send(photo); err != nil {
			return fmt.Errorf("failed to send photo: %w", err)
		}
		return nil
	}

	msg := tgbotapi.NewMessage(userID, reply.Text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if len(reply.Keyboard) > 0 {
		msg.ReplyMarkup = keyboardMarkup(reply.Keyboard)
	}
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// Close stops the update poller. Safe to call more than once.
func (t *Transport) Close() error {
	t.stopOnce.Do(t.api.StopReceivingUpdates)
	return nil
}

func keyboardMarkup(rows [][]Button) tgbotapi.InlineKeyboardMarkup {
	markup := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Token))
		}
		markup = append(markup, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(markup...)
}
