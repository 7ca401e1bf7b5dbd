package models

import (
	"fmt"
	"time"
)

// PlacementMode is the strategy used to attach a registration card to a
// channel post.
type PlacementMode string

const (
	// ModeEditOriginal edits the original channel post in place. Only
	// works when the bot authored the post.
	ModeEditOriginal PlacementMode = "edit_original"
	// ModeDiscussionReply posts the card as a reply to the mirrored copy
	// of the post in the linked discussion group.
	ModeDiscussionReply PlacementMode = "discussion_reply"
	// ModeChannelReply posts the card as a new channel message replying
	// to the original post.
	ModeChannelReply PlacementMode = "channel_reply"
)

// allModes is the fixed rotation order of placement modes.
var allModes = []PlacementMode{ModeEditOriginal, ModeDiscussionReply, ModeChannelReply}

// ParsePlacementMode validates a mode string from configuration or the database.
func ParsePlacementMode(s string) (PlacementMode, error) {
	switch PlacementMode(s) {
	case ModeEditOriginal, ModeDiscussionReply, ModeChannelReply:
		return PlacementMode(s), nil
	}
	return "", fmt.Errorf("invalid placement mode: %q", s)
}

// FallbackChain returns all placement modes starting from the preferred one,
// wrapping around the fixed rotation exactly once. The order is fully
// determined by the preferred mode.
func FallbackChain(preferred PlacementMode) []PlacementMode {
	start := 0
	for i, m := range allModes {
		if m == preferred {
			start = i
			break
		}
	}
	chain := make([]PlacementMode, 0, len(allModes))
	chain = append(chain, allModes[start:]...)
	chain = append(chain, allModes[:start]...)
	return chain
}

// Post represents one channel announcement and its registration card placement.
type Post struct {
	ChannelID       int64         `db:"channel_id"`
	SourceMessageID int64         `db:"source_message_id"` // Unique together with ChannelID
	Mode            PlacementMode `db:"mode"`
	CardChatID      int64         `db:"card_chat_id"`    // 0 = not placed yet
	CardMessageID   int64         `db:"card_message_id"` // 0 = not placed yet
	VotersMessageID int64         `db:"voters_message_id"`
	DiscussionMsgID int64         `db:"discussion_message_id"`
	AlbumGroupID    string        `db:"album_group_id"` // "" = single message post
	CreatedAt       time.Time     `db:"created_at"`
}

// HasCardLocation reports whether the card has been placed. The store writes
// both columns in a single statement, so they are either both set or both zero.
func (p *Post) HasCardLocation() bool {
	return p.CardChatID != 0 && p.CardMessageID != 0
}
