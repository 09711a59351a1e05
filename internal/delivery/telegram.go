package delivery

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"signalbot/internal/rotation"
	"signalbot/internal/timeutil"
	"signalbot/models"
)

// Telegram delivers accepted signals to a single channel or chat.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	clock  *timeutil.Clock
	logger zerolog.Logger
}

// NewTelegram connects to the Bot API and verifies the token.
func NewTelegram(botToken string, chatID int64, clock *timeutil.Clock) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("initializing telegram bot: %w", err)
	}

	return &Telegram{
		bot:    bot,
		chatID: chatID,
		clock:  clock,
		logger: log.With().Str("component", "delivery").Logger(),
	}, nil
}

// Send formats and posts one signal.
func (t *Telegram) Send(signal models.Signal) error {
	msg := tgbotapi.NewMessage(t.chatID, FormatSignal(signal, t.clock))
	msg.ParseMode = "Markdown"

	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("sending signal message: %w", err)
	}

	t.logger.Info().
		Str("asset", signal.Asset).
		Str("direction", string(signal.Direction)).
		Float64("confidence", signal.Confidence).
		Msg("Signal delivered")
	return nil
}

// FormatSignal renders a signal as a Markdown message.
func FormatSignal(signal models.Signal, clock *timeutil.Clock) string {
	emoji := "🟢"
	if signal.Direction == models.SignalSell {
		emoji = "🔴"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s **%s SIGNAL**\n\n", emoji, signal.Direction)
	fmt.Fprintf(&b, "📊 Asset: **%s**\n", signal.Asset)
	fmt.Fprintf(&b, "📁 Category: %s\n", rotation.CategoryDisplayName(signal.Category))
	fmt.Fprintf(&b, "🎯 Confidence: **%.1f%%**\n", signal.Confidence)
	fmt.Fprintf(&b, "⏰ Expires in: %s\n\n", clock.TimeUntil(signal.ExpiresAt))
	fmt.Fprintf(&b, "💡 %s", signal.Reasoning)

	return b.String()
}
