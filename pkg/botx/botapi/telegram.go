// Package botapi contains implementations of bot API interfaces.
package botapi

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Semior001/newsvoice/pkg/botx"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/exp/slog"
)

// Telegram is a controller that handles requests from telegram.
type Telegram struct {
	api     *tgbotapi.BotAPI
	updates chan botx.Request
}

// NewTelegram returns a new telegram bot controller.
func NewTelegram(lg *slog.Logger, token string, bufferSize int) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("make new api: %w", err)
	}

	stdlibLogger := slog.NewLogLogger(lg.Handler(), slog.LevelWarn)
	stdlibLogger.SetPrefix("telegram-bot-api: ")

	if err = tgbotapi.SetLogger(stdlibLogger); err != nil {
		return nil, fmt.Errorf("set logger: %w", err)
	}

	return &Telegram{
		api:     api,
		updates: make(chan botx.Request, bufferSize),
	}, nil
}

// Run runs telegram bot listener until Stop is called.
func (b *Telegram) Run() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for {
		update, ok := <-updates
		if !ok {
			close(b.updates)
			return
		}

		if req, ok := request(update); ok {
			b.updates <- req
		}
	}
}

// Stop stops telegram bot listener, Run closes the updates channel
// once all pending updates are delivered.
func (b *Telegram) Stop() {
	b.api.StopReceivingUpdates()
}

// Updates returns updates channel.
func (b *Telegram) Updates() <-chan botx.Request {
	return b.updates
}

// SendMessage sends message to telegram user.
func (b *Telegram) SendMessage(ctx context.Context, resp botx.Response) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	msg, err := message(resp)
	if err != nil {
		return "", err
	}

	sent, err := b.api.Send(msg)
	if err != nil {
		return "", fmt.Errorf("send message: %w", err)
	}

	return strconv.Itoa(sent.MessageID), nil
}

func request(update tgbotapi.Update) (botx.Request, bool) {
	if update.Message == nil || update.Message.Chat == nil || update.Message.Text == "" {
		return botx.Request{}, false
	}

	return botx.Request{
		MessageID: strconv.Itoa(update.Message.MessageID),
		Chat: botx.Chat{
			ID:       strconv.FormatInt(update.Message.Chat.ID, 10),
			Username: update.Message.Chat.UserName,
		},
		Text: update.Message.Text,
	}, true
}

func message(resp botx.Response) (tgbotapi.Chattable, error) {
	chatID, err := strconv.ParseInt(resp.ChatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse chat id: %w", err)
	}

	replyTo := 0
	if resp.ReplyToMessageID != "" {
		if replyTo, err = strconv.Atoi(resp.ReplyToMessageID); err != nil {
			return nil, fmt.Errorf("parse reply to message id: %w", err)
		}
	}

	switch {
	case resp.EditMessageID != "":
		msgID, err := strconv.Atoi(resp.EditMessageID)
		if err != nil {
			return nil, fmt.Errorf("parse edit message id: %w", err)
		}

		msg := tgbotapi.NewEditMessageText(chatID, msgID, resp.Text)
		msg.ParseMode = tgbotapi.ModeMarkdown
		msg.DisableWebPagePreview = true
		return msg, nil
	case resp.Audio != nil:
		msg := tgbotapi.NewAudio(chatID, tgbotapi.FileBytes{Name: resp.Audio.Name, Bytes: resp.Audio.Data})
		msg.Caption = resp.Text
		msg.ParseMode = tgbotapi.ModeMarkdown
		msg.ReplyToMessageID = replyTo
		return msg, nil
	default:
		msg := tgbotapi.NewMessage(chatID, resp.Text)
		msg.ParseMode = tgbotapi.ModeMarkdown
		msg.DisableWebPagePreview = true
		msg.ReplyToMessageID = replyTo
		return msg, nil
	}
}
