// Package presentation turns vote data into display strings and keyboards.
// It owns the callback-data format shared with the handlers.
package presentation

import (
	"fmt"
	"strings"

	"ride-bot/gateway"
	"ride-bot/models"
)

// Callback data formats. Kept short to stay under the platform's 64-byte
// callback data limit.
//
//	v:<status>:<channel_id>:<message_id>  vote button
//	voters:<channel_id>:<message_id>      voters list button
//	refresh:<channel_id>:<message_id>     refresh button
const (
	CallbackVotePrefix    = "v"
	CallbackVotersPrefix  = "voters"
	CallbackRefreshPrefix = "refresh"
)

// Renderer builds registration cards and voters lists for one configured
// language.
type Renderer struct {
	tr              Translations
	showChangedMind bool
}

// NewRenderer creates a renderer for the given language. A language the
// configuration does not know falls back to the base English strings.
func NewRenderer(language string, showChangedMind bool) *Renderer {
	tr, _ := LoadTranslations(language)
	return &Renderer{tr: tr, showChangedMind: showChangedMind}
}

// Messages exposes the loaded message strings for callback notices.
func (r *Renderer) Messages() MessageTexts {
	return r.tr.Messages
}

// RateLimitedNotice formats the transient rate-limit notice.
func (r *Renderer) RateLimitedNotice(secondsRemaining int) string {
	return fmt.Sprintf(r.tr.Messages.RateLimited, secondsRemaining)
}

// Card builds the registration card for a post. sourceLink, when non-empty,
// adds a URL button pointing back at the original post (used when the card
// could not be placed as a threaded reply).
func (r *Renderer) Card(channelID, sourceMessageID int64, counts models.VoteCounts, sourceLink string) gateway.Card {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", r.tr.Messages.RegistrationTitle)
	fmt.Fprintf(&b, "✅ %s: %d\n", r.tr.Messages.JoinLabel, counts.Join)
	fmt.Fprintf(&b, "❔ %s: %d\n", r.tr.Messages.MaybeLabel, counts.Maybe)
	fmt.Fprintf(&b, "❌ %s: %d\n", r.tr.Messages.DeclineLabel, counts.Decline)
	if r.showChangedMind && counts.ChangedMind > 0 {
		fmt.Fprintf(&b, "%s: %d\n", r.tr.Messages.ChangedMind, counts.ChangedMind)
	}

	buttons := [][]gateway.Button{
		{
			{Label: r.tr.Buttons.Join, CallbackData: voteData(models.StatusJoin, channelID, sourceMessageID)},
			{Label: r.tr.Buttons.Maybe, CallbackData: voteData(models.StatusMaybe, channelID, sourceMessageID)},
			{Label: r.tr.Buttons.Decline, CallbackData: voteData(models.StatusDecline, channelID, sourceMessageID)},
		},
		{
			{Label: r.tr.Buttons.Voters, CallbackData: fmt.Sprintf("%s:%d:%d", CallbackVotersPrefix, channelID, sourceMessageID)},
			{Label: r.tr.Buttons.Refresh, CallbackData: fmt.Sprintf("%s:%d:%d", CallbackRefreshPrefix, channelID, sourceMessageID)},
		},
	}
	if sourceLink != "" {
		buttons = append(buttons, []gateway.Button{
			{Label: r.tr.Buttons.OriginalPost, URL: sourceLink},
		})
	}

	return gateway.Card{Text: b.String(), Buttons: buttons}
}

// VotersList builds the voters summary text. resolveName turns a user id
// into a display name; voters within each group are already ordered by vote
// time.
func (r *Renderer) VotersList(voters map[models.VoteStatus][]int64, resolveName func(int64) string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", r.tr.Messages.VotersListTitle)

	sections := []struct {
		status models.VoteStatus
		emoji  string
		label  string
	}{
		{models.StatusJoin, "✅", r.tr.Messages.JoinLabel},
		{models.StatusMaybe, "❔", r.tr.Messages.MaybeLabel},
		{models.StatusDecline, "❌", r.tr.Messages.DeclineLabel},
	}

	empty := true
	for _, s := range sections {
		ids := voters[s.status]
		if len(ids) == 0 {
			continue
		}
		empty = false
		fmt.Fprintf(&b, "%s %s (%d)\n", s.emoji, s.label, len(ids))
		for _, id := range ids {
			fmt.Fprintf(&b, "  • %s\n", resolveName(id))
		}
		b.WriteString("\n")
	}

	if empty {
		b.WriteString(r.tr.Messages.NoVotesYet)
	}
	return strings.TrimRight(b.String(), "\n")
}

func voteData(status models.VoteStatus, channelID, sourceMessageID int64) string {
	return fmt.Sprintf("%s:%s:%d:%d", CallbackVotePrefix, status, channelID, sourceMessageID)
}
