package handlers

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ride-bot/database"
	"ride-bot/utils"
)

// handleDiscussionMessage watches the linked discussion group for the
// platform's automatic mirror of channel posts. The mapping is recorded
// whenever it arrives, before or after the post record exists, and any
// pending discussion-reply placement is completed.
func (h *handler) handleDiscussionMessage(ctx context.Context, msg *tgbotapi.Message) {
	cfg := h.bot.Config
	if cfg.DiscussionGroupID == 0 || msg.Chat == nil || msg.Chat.ID != cfg.DiscussionGroupID {
		return
	}
	if !msg.IsAutomaticForward || msg.ForwardFromChat == nil || msg.ForwardFromChat.ID != cfg.RidesChannelID {
		return
	}

	channelID := msg.ForwardFromChat.ID
	sourceID := int64(msg.ForwardFromMessageID)
	if err := database.SetDiscussionMapping(ctx, h.bot.DB, channelID, sourceID, int64(msg.MessageID)); err != nil {
		utils.Error("handlers", "discussion", fmt.Sprintf("Failed to record mapping for %d/%d: %v", channelID, sourceID, err))
		return
	}

	placed, err := h.bot.Engine.CompleteDeferred(ctx, channelID, sourceID)
	if err != nil {
		utils.Error("handlers", "discussion", fmt.Sprintf("Deferred placement for %d/%d failed: %v", channelID, sourceID, err))
		return
	}
	if placed {
		log.Printf("Deferred card for %d/%d placed after mapping arrived", channelID, sourceID)
	}
}
