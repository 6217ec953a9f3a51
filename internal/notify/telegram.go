package notify

import (
	"context"
	"errors"
	"time"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/flowchartsman/retry"
	"go.uber.org/zap"
)

// TelegramSender delivers a single Telegram message.
type TelegramSender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// NewTelegramSender returns a Bot-API-backed sender, or a log-only one
// when no bot token is configured.
func NewTelegramSender(token string, limiter *RateLimiter, logger *zap.Logger) (TelegramSender, error) {
	if token == "" {
		logger.Warn("NOTIFY_TELEGRAM_BOT_TOKEN not provided; telegram messages will only be logged")
		return &logTelegramSender{logger: logger}, nil
	}

	bot, err := gotgbot.NewBot(token, nil)
	if err != nil {
		return nil, err
	}
	return &botSender{bot: bot, limiter: limiter, logger: logger}, nil
}

type botSender struct {
	bot     *gotgbot.Bot
	limiter *RateLimiter
	logger  *zap.Logger
}

// Send respects the shared rate budget and backs off on 429 responses,
// retrying only the current message.
func (s *botSender) Send(ctx context.Context, chatID int64, text string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	retrier := retry.NewRetrier(3, time.Second, 10*time.Second)
	return retrier.RunContext(ctx, func(ctx context.Context) error {
		_, err := s.bot.SendMessage(chatID, text, nil)
		if err == nil {
			return nil
		}

		var tgErr *gotgbot.TelegramError
		if errors.As(err, &tgErr) && tgErr.Code == 429 {
			s.logger.Warn("telegram rate limited; backing off", zap.Int64("chat_id", chatID))
			return err
		}
		return retry.Stop(err)
	})
}

type logTelegramSender struct {
	logger *zap.Logger
}

func (s *logTelegramSender) Send(_ context.Context, chatID int64, _ string) error {
	s.logger.Info("telegram send skipped (no bot token configured)", zap.Int64("chat_id", chatID))
	return nil
}
