package receiver

import (
	"context"
	"errors"
	"fmt"

	tg "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Soumi0401/SimpleNotification/internal/platform"
)

// TelegramSender is the part of the bot API the receiver uses.
type TelegramSender interface {
	Send(c tg.Chattable) (tg.Message, error)
}

// Telegram pushes deliveries to a Telegram chat.
type Telegram struct {
	// bot sends messages.
	bot TelegramSender
	// chatID is the destination chat.
	chatID int64
}

var errTelegramChatRequired = errors.New("telegram chat id must be provided")

// NewTelegram creates a receiver over an existing sender.
func NewTelegram(bot TelegramSender, chatID int64) (*Telegram, error) {
	if chatID == 0 {
		return nil, errTelegramChatRequired
	}

	return &Telegram{
		bot:    bot,
		chatID: chatID,
	}, nil
}

// DialTelegram authorises the bot token and creates a receiver.
// An empty endpoint uses the public bot API.
func DialTelegram(token, endpoint string, chatID int64) (*Telegram, error) {
	if endpoint == "" {
		endpoint = tg.APIEndpoint
	}

	bot, err := tg.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("authorise telegram bot: %w", err)
	}

	return NewTelegram(bot, chatID)
}

// Receive sends the alarm title and text as one message.
func (t *Telegram) Receive(ctx context.Context, d *platform.Delivery) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := t.bot.Send(tg.NewMessage(t.chatID, d.Payload.Message())); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}

	return nil
}
