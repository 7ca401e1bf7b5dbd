package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ride-bot/gateway"
	"ride-bot/ledger"
	"ride-bot/models"
	"ride-bot/presentation"
	"ride-bot/registration"
	"ride-bot/utils"
)

// Telegram caps callback alert text at 200 characters.
const alertTextLimit = 200

// callbackRef identifies the post a button press belongs to.
type callbackRef struct {
	channelID       int64
	sourceMessageID int64
}

// parseCallback splits callback data into its action, the vote status (vote
// action only) and the post reference.
func parseCallback(data string) (action string, status models.VoteStatus, ref callbackRef, err error) {
	parts := strings.Split(data, ":")

	var channelPart, messagePart string
	switch parts[0] {
	case presentation.CallbackVotePrefix:
		if len(parts) != 4 {
			return "", "", callbackRef{}, fmt.Errorf("malformed vote callback: %q", data)
		}
		status, err = models.ParseVoteStatus(parts[1])
		if err != nil {
			return "", "", callbackRef{}, err
		}
		channelPart, messagePart = parts[2], parts[3]
	case presentation.CallbackVotersPrefix, presentation.CallbackRefreshPrefix:
		if len(parts) != 3 {
			return "", "", callbackRef{}, fmt.Errorf("malformed callback: %q", data)
		}
		channelPart, messagePart = parts[1], parts[2]
	default:
		return "", "", callbackRef{}, fmt.Errorf("unknown callback action: %q", data)
	}

	ref.channelID, err = strconv.ParseInt(channelPart, 10, 64)
	if err != nil {
		return "", "", callbackRef{}, fmt.Errorf("bad channel id in callback %q: %w", data, err)
	}
	ref.sourceMessageID, err = strconv.ParseInt(messagePart, 10, 64)
	if err != nil {
		return "", "", callbackRef{}, fmt.Errorf("bad message id in callback %q: %w", data, err)
	}
	return parts[0], status, ref, nil
}

func (h *handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	action, status, ref, err := parseCallback(cb.Data)
	if err != nil {
		// Stale buttons from older card formats end up here.
		log.Printf("Ignoring callback: %v", err)
		h.answer(ctx, cb.ID, "", false)
		return
	}

	switch action {
	case presentation.CallbackVotePrefix:
		h.handleVote(ctx, cb, status, ref)
	case presentation.CallbackVotersPrefix:
		h.handleVoters(ctx, cb, ref)
	case presentation.CallbackRefreshPrefix:
		h.handleRefresh(ctx, cb, ref)
	}
}

func (h *handler) handleVote(ctx context.Context, cb *tgbotapi.CallbackQuery, status models.VoteStatus, ref callbackRef) {
	messages := h.bot.Renderer.Messages()

	err := h.bot.Votes.CastVote(ctx, ref.channelID, ref.sourceMessageID, cb.From.ID, status)
	var rl *ledger.RateLimitedError
	switch {
	case errors.As(err, &rl):
		h.answer(ctx, cb.ID, h.bot.Renderer.RateLimitedNotice(rl.Seconds()), false)
		return
	case err != nil:
		utils.Error("handlers", "vote", fmt.Sprintf("Vote by %d on %d/%d failed: %v", cb.From.ID, ref.channelID, ref.sourceMessageID, err))
		h.answer(ctx, cb.ID, messages.TryAgainLater, true)
		return
	}
	h.answer(ctx, cb.ID, messages.VoteRecorded, false)

	result, err := h.bot.Engine.Render(ctx, ref.channelID, ref.sourceMessageID)
	if err != nil && !errors.Is(err, gateway.ErrNotModified) {
		log.Printf("Card re-render for %d/%d failed: %v", ref.channelID, ref.sourceMessageID, err)
	}
	if result == registration.RenderMissingLocation {
		log.Printf("Card for %d/%d has no recoverable location", ref.channelID, ref.sourceMessageID)
	}
}

func (h *handler) handleVoters(ctx context.Context, cb *tgbotapi.CallbackQuery, ref callbackRef) {
	messages := h.bot.Renderer.Messages()

	if h.bot.Config.RequireVoteToSeeVoters {
		voted, err := h.bot.Votes.HasVoted(ctx, ref.channelID, ref.sourceMessageID, cb.From.ID)
		if err != nil {
			h.answer(ctx, cb.ID, messages.TryAgainLater, true)
			return
		}
		if !voted {
			h.answer(ctx, cb.ID, messages.VoteRequired, true)
			return
		}
	}

	voters, err := h.bot.Votes.GetVotersByStatus(ctx, ref.channelID, ref.sourceMessageID)
	if err != nil {
		h.answer(ctx, cb.ID, messages.TryAgainLater, true)
		return
	}
	text := h.bot.Renderer.VotersList(voters, func(userID int64) string {
		return h.bot.Gateway.ResolveUserName(ctx, userID)
	})
	h.answer(ctx, cb.ID, truncate(text, alertTextLimit), true)
}

func (h *handler) handleRefresh(ctx context.Context, cb *tgbotapi.CallbackQuery, ref callbackRef) {
	messages := h.bot.Renderer.Messages()

	result, err := h.bot.Engine.Render(ctx, ref.channelID, ref.sourceMessageID)
	switch {
	case errors.Is(err, gateway.ErrNotModified):
		// Nothing changed since the last render; the card is current.
		h.answer(ctx, cb.ID, messages.Refreshed, false)
	case err != nil:
		h.answer(ctx, cb.ID, messages.TryAgainLater, false)
	case result == registration.RenderUpdated:
		h.answer(ctx, cb.ID, messages.Refreshed, false)
	default:
		h.answer(ctx, cb.ID, messages.TryAgainLater, false)
	}
}

func (h *handler) answer(ctx context.Context, callbackID, text string, alert bool) {
	if err := h.bot.Gateway.AnswerCallback(ctx, callbackID, text, alert); err != nil {
		log.Printf("Failed to answer callback: %v", err)
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
