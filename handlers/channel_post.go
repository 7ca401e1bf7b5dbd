package handlers

import (
	"context"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ride-bot/utils"
)

// handleChannelPost gives qualifying posts in the rides channel a
// registration card. Album messages carry a shared media group id and
// produce one card for the whole album.
func (h *handler) handleChannelPost(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Chat == nil || msg.Chat.ID != h.bot.Config.RidesChannelID {
		return
	}
	// The bot's own card messages come back through the update stream as
	// channel posts too.
	if msg.From != nil && msg.From.ID == h.bot.Gateway.SelfID() {
		return
	}

	text := msg.Text
	if text == "" {
		text = msg.Caption
	}
	fromBot := msg.ViaBot != nil || (msg.From != nil && msg.From.IsBot)
	if !h.bot.Filter.ShouldProcess(text, fromBot) {
		return
	}

	result, err := h.bot.Engine.Create(ctx, msg.Chat.ID, int64(msg.MessageID), msg.MediaGroupID)
	if err != nil {
		utils.Error("handlers", "channelPost", fmt.Sprintf("Create failed for %d/%d: %v", msg.Chat.ID, msg.MessageID, err))
		return
	}
	if tags := utils.ExtractHashtags(text); len(tags) > 0 {
		log.Printf("Channel post %d/%d (%s): %s", msg.Chat.ID, msg.MessageID, strings.Join(tags, " "), result)
	} else {
		log.Printf("Channel post %d/%d: %s", msg.Chat.ID, msg.MessageID, result)
	}
}
