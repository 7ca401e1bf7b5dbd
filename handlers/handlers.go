// Package handlers routes inbound Telegram updates to the registration
// engine, the vote ledger and the admin commands.
package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ride-bot/bot"
)

// Register wires all update handlers and returns the dispatch function the
// bot invokes for every inbound update.
func Register(b *bot.Bot) bot.UpdateHandler {
	h := &handler{bot: b}
	return h.handleUpdate
}

type handler struct {
	bot *bot.Bot
}

func (h *handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.ChannelPost != nil:
		h.handleChannelPost(ctx, update.ChannelPost)
	case update.CallbackQuery != nil:
		h.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		h.handleMessage(ctx, update.Message)
	}
}

func (h *handler) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.IsCommand() {
		h.handleCommand(ctx, msg)
		return
	}
	h.handleDiscussionMessage(ctx, msg)
}
