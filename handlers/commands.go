package handlers

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ride-bot/command"
	"ride-bot/registration"
	"ride-bot/utils"
)

func (h *handler) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	name := msg.Command()
	if command.IsAdminOnly(name) && (msg.From == nil || !h.bot.Config.IsAdmin(msg.From.ID)) {
		return
	}

	switch name {
	case "ping":
		h.reply(ctx, msg, "Pong!")
	case "voters":
		h.votersCommand(ctx, msg)
	}
}

// votersCommand shows the voters list for a post, addressed either by its
// message id in the rides channel or by a t.me/c/... link.
func (h *handler) votersCommand(ctx context.Context, msg *tgbotapi.Message) {
	arg := strings.TrimSpace(msg.CommandArguments())
	if arg == "" {
		h.reply(ctx, msg, "Usage: /voters <message id | t.me/c/... link>")
		return
	}

	channelID := h.bot.Config.RidesChannelID
	var sourceID int64
	if ch, m, ok := utils.ParseMessageLink(arg); ok {
		channelID, sourceID = ch, m
	} else if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
		sourceID = id
	} else {
		h.reply(ctx, msg, "Could not parse a message id or t.me link from "+strconv.Quote(arg))
		return
	}

	// Prefer posting the summary into the post's discussion thread, where
	// participants see it; without a thread, reply inline instead.
	err := h.bot.Engine.PostVotersSummary(ctx, channelID, sourceID)
	switch {
	case err == nil:
		return
	case errors.Is(err, registration.ErrPostNotFound):
		h.reply(ctx, msg, "No registration card found for that post")
		return
	case !errors.Is(err, registration.ErrNoDiscussionThread):
		log.Printf("Voters summary for %d/%d failed: %v", channelID, sourceID, err)
		h.reply(ctx, msg, h.bot.Renderer.Messages().TryAgainLater)
		return
	}

	voters, err := h.bot.Votes.GetVotersByStatus(ctx, channelID, sourceID)
	if err != nil {
		h.reply(ctx, msg, h.bot.Renderer.Messages().TryAgainLater)
		return
	}
	text := h.bot.Renderer.VotersList(voters, func(userID int64) string {
		return h.bot.Gateway.ResolveUserName(ctx, userID)
	})
	h.reply(ctx, msg, text)
}

func (h *handler) reply(ctx context.Context, msg *tgbotapi.Message, text string) {
	if _, err := h.bot.Gateway.SendMessage(ctx, msg.Chat.ID, int64(msg.MessageID), text); err != nil {
		log.Printf("Failed to reply to command: %v", err)
	}
}
