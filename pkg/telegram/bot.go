package telegram

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

var ErrNoChat = errors.New("telegram admin chat id is not known yet")

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot sends admin notifications to one chat. When no chat id is configured the
// first /start command received registers it.
type Bot struct {
	api    sender
	chatID atomic.Int64
}

func NewBot(token string, chatID int64) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to authorize telegram bot: %w", err)
	}

	logrus.WithField("bot", api.Self.UserName).Info("Telegram bot authorized")

	b := newBot(api, chatID)
	if chatID == 0 {
		go b.listen(api)
	}
	return b, nil
}

func newBot(api sender, chatID int64) *Bot {
	b := &Bot{api: api}
	b.chatID.Store(chatID)
	return b
}

func (b *Bot) Name() string { return "telegram" }

func (b *Bot) Notify(ctx context.Context, subject, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.SendMessage(message)
}

func (b *Bot) SendMessage(text string) error {
	chatID := b.chatID.Load()
	if chatID == 0 {
		return ErrNoChat
	}

	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

func (b *Bot) listen(api *tgbotapi.BotAPI) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	for update := range api.GetUpdatesChan(u) {
		b.handleUpdate(update)
	}
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	if update.Message == nil || !update.Message.IsCommand() || update.Message.Command() != "start" {
		return
	}

	chatID := update.Message.Chat.ID
	if !b.chatID.CompareAndSwap(0, chatID) {
		return
	}

	logrus.WithField("chat_id", chatID).Info("Telegram admin chat registered")
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("¡Hola Admin! Tu ID quedó registrado: %d. Desde ahora vas a recibir las reservas acá.", chatID))
	if _, err := b.api.Send(msg); err != nil {
		logrus.WithError(err).Warn("Failed to greet telegram admin")
	}
}
