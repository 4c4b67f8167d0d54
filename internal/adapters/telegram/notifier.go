// Package telegram pushes velocity alert digests to a configured channel.
// Delivery is one-way: the service sends digests, it never polls for updates.
package telegram

import (
	"context"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"barometer/internal/adapters/config"
	"barometer/pkg/errors"
	"barometer/pkg/logger"
)

// Notifier sends alert digests to one chat.
type Notifier struct {
	api     *tgbotapi.BotAPI
	chatID  int64
	limiter *rate.Limiter
	log     *logger.Logger
}

// NewNotifier creates a notifier for the configured chat.
func NewNotifier(cfg config.TelegramConfig, log *logger.Logger) (*Notifier, error) {
	if cfg.BotToken == "" {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "telegram bot token is required")
	}
	if cfg.ChatID == 0 {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "telegram chat id is required")
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	api, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, tgbotapi.APIEndpoint, httpClient)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create telegram bot")
	}

	log.Infof("Telegram notifier authorized on account %s", api.Self.UserName)

	// Telegram allows ~20 messages/min to the same chat; one digest per
	// report cycle sits far under that, the limiter just guards retries.
	limiter := rate.NewLimiter(rate.Every(3*time.Second), 1)

	return &Notifier{
		api:     api,
		chatID:  cfg.ChatID,
		limiter: limiter,
		log:     log.With("component", "telegram_notifier"),
	}, nil
}

// Send delivers one digest message to the configured chat.
func (n *Notifier) Send(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}

	if err := n.limiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "rate limiter wait")
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true

	if _, err := n.api.Send(msg); err != nil {
		return errors.Wrap(err, "failed to send telegram message")
	}

	n.log.Debug("Digest sent", "chat_id", n.chatID, "length", len(text))
	return nil
}
