package telegram

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, f.err
}

func startUpdate(chatID int64) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text:     "/start",
		Chat:     &tgbotapi.Chat{ID: chatID},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}},
	}}
}

func TestNotifySendsToConfiguredChat(t *testing.T) {
	api := &fakeSender{}
	b := newBot(api, 123)

	require.NoError(t, b.Notify(context.Background(), "Nueva reserva #1", "Nueva reserva #1\nCancha: Cancha 1"))
	require.Len(t, api.sent, 1)
	assert.Equal(t, int64(123), api.sent[0].ChatID)
	assert.Equal(t, "Nueva reserva #1\nCancha: Cancha 1", api.sent[0].Text)
}

func TestNotifyWithoutChat(t *testing.T) {
	b := newBot(&fakeSender{}, 0)
	assert.ErrorIs(t, b.Notify(context.Background(), "s", "m"), ErrNoChat)
}

func TestNotifyWrapsSendError(t *testing.T) {
	b := newBot(&fakeSender{err: errors.New("flood")}, 1)
	err := b.SendMessage("hola")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "flood")
}

func TestStartRegistersFirstChatOnly(t *testing.T) {
	api := &fakeSender{}
	b := newBot(api, 0)

	b.handleUpdate(startUpdate(77))
	b.handleUpdate(startUpdate(88))

	require.NoError(t, b.SendMessage("hola"))
	last := api.sent[len(api.sent)-1]
	assert.Equal(t, int64(77), last.ChatID)
	assert.Len(t, api.sent, 2)
}
