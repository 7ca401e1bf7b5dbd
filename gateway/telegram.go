package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram implements Gateway over the Telegram Bot API.
type Telegram struct {
	api     *tgbotapi.BotAPI
	timeout time.Duration
}

// NewTelegram connects to the Telegram Bot API. All requests share one HTTP
// client whose timeout bounds every gateway call.
func NewTelegram(token string, timeout time.Duration) (*Telegram, error) {
	client := &http.Client{Timeout: timeout}
	api, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Telegram: %w", err)
	}
	return &Telegram{api: api, timeout: timeout}, nil
}

// SelfID returns the bot's own user id.
func (t *Telegram) SelfID() int64 {
	return t.api.Self.ID
}

// SelfName returns the bot's username.
func (t *Telegram) SelfName() string {
	return t.api.Self.UserName
}

// Updates starts long polling and returns the inbound update stream.
func (t *Telegram) Updates() tgbotapi.UpdatesChannel {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout(t.timeout)
	return t.api.GetUpdatesChan(u)
}

// pollTimeout returns the long-poll hold in seconds. The server holds an
// idle poll for the full duration, so it must stay below the HTTP client
// timeout or every idle cycle ends in a client-side cancellation.
func pollTimeout(requestTimeout time.Duration) int {
	s := int(requestTimeout.Seconds()) - 5
	if s < 1 {
		s = 1
	}
	return s
}

// StopUpdates stops the long polling loop.
func (t *Telegram) StopUpdates() {
	t.api.StopReceivingUpdates()
}

// SetCommands publishes the bot's command list to the platform menu.
func (t *Telegram) SetCommands(ctx context.Context, commands []tgbotapi.BotCommand) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := t.api.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		return classify(err, "set commands")
	}
	return nil
}

// EditCard replaces the text and keyboard of an existing message.
func (t *Telegram) EditCard(ctx context.Context, chatID, messageID int64, card Card) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, int(messageID), card.Text, toMarkup(card))
	if _, err := t.api.Send(edit); err != nil {
		return classify(err, "edit message")
	}
	return nil
}

// SendCard posts a new card message, optionally as a threaded reply.
func (t *Telegram) SendCard(ctx context.Context, chatID, replyTo int64, card Card) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	msg := tgbotapi.NewMessage(chatID, card.Text)
	msg.ReplyToMessageID = int(replyTo)
	msg.ReplyMarkup = toMarkup(card)
	sent, err := t.api.Send(msg)
	if err != nil {
		return 0, classify(err, "send card")
	}
	return int64(sent.MessageID), nil
}

// SendMessage posts a plain text message, optionally as a reply.
func (t *Telegram) SendMessage(ctx context.Context, chatID, replyTo int64, text string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = int(replyTo)
	sent, err := t.api.Send(msg)
	if err != nil {
		return 0, classify(err, "send message")
	}
	return int64(sent.MessageID), nil
}

// DeleteMessage removes a message the bot posted earlier.
func (t *Telegram) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := t.api.Request(tgbotapi.NewDeleteMessage(chatID, int(messageID))); err != nil {
		return classify(err, "delete message")
	}
	return nil
}

// AnswerCallback acknowledges a button press with a short notice.
func (t *Telegram) AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cb := tgbotapi.NewCallback(callbackID, text)
	cb.ShowAlert = alert
	if _, err := t.api.Request(cb); err != nil {
		return classify(err, "answer callback")
	}
	return nil
}

// ResolveUserName looks up a user's display name. Users Telegram won't
// reveal (never talked to the bot, privacy settings) come back as a generic
// label.
func (t *Telegram) ResolveUserName(ctx context.Context, userID int64) string {
	fallback := fmt.Sprintf("User %d", userID)
	if err := ctx.Err(); err != nil {
		return fallback
	}

	chat, err := t.api.GetChat(tgbotapi.ChatInfoConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: userID},
	})
	if err != nil {
		return fallback
	}

	name := chat.FirstName
	if chat.LastName != "" {
		name += " " + chat.LastName
	}
	if name == "" && chat.UserName != "" {
		name = "@" + chat.UserName
	}
	if name == "" {
		return fallback
	}
	return name
}

// toMarkup converts card button rows to a Telegram inline keyboard.
func toMarkup(card Card) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(card.Buttons))
	for _, row := range card.Buttons {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			if b.URL != "" {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL(b.Label, b.URL))
			} else {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.CallbackData))
			}
		}
		rows = append(rows, buttons)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// classify maps Telegram API errors onto the gateway error taxonomy. An edit
// that changes nothing is reported as ErrNotModified. Other client errors
// (bad request, forbidden) mean the platform refused the operation and a
// different placement mode should be tried; anything else is a transport
// fault.
func classify(err error, op string) error {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		if strings.Contains(apiErr.Message, "message is not modified") {
			return fmt.Errorf("%s: %w", op, ErrNotModified)
		}
		if apiErr.Code == http.StatusBadRequest || apiErr.Code == http.StatusForbidden {
			return fmt.Errorf("%s: %w: %s", op, ErrRejected, apiErr.Message)
		}
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
