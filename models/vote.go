package models

import (
	"fmt"
	"time"
)

// VoteStatus is a user's standing on a post.
type VoteStatus string

const (
	StatusJoin    VoteStatus = "join"
	StatusMaybe   VoteStatus = "maybe"
	StatusDecline VoteStatus = "decline"
)

// Statuses lists all vote statuses in display order.
var Statuses = []VoteStatus{StatusJoin, StatusMaybe, StatusDecline}

// ParseVoteStatus validates a status string from callback data or the database.
func ParseVoteStatus(s string) (VoteStatus, error) {
	switch VoteStatus(s) {
	case StatusJoin, StatusMaybe, StatusDecline:
		return VoteStatus(s), nil
	}
	return "", fmt.Errorf("invalid vote status: %q", s)
}

// Vote is one user's current standing on a post.
type Vote struct {
	ChannelID       int64      `db:"channel_id"`
	SourceMessageID int64      `db:"source_message_id"`
	UserID          int64      `db:"user_id"`
	Status          VoteStatus `db:"status"`
	FirstStatus     VoteStatus `db:"first_status"` // status at first cast, never modified
	EverJoined      bool       `db:"ever_joined"`  // monotonic: once true, stays true
	UpdatedAt       time.Time  `db:"updated_at"`
}

// VoteCounts holds aggregate vote statistics for a post. ChangedMind counts
// users who joined at some point but whose current status is not join.
type VoteCounts struct {
	Join        int
	Maybe       int
	Decline     int
	ChangedMind int
}

// Total is the number of users with any current vote.
func (c VoteCounts) Total() int {
	return c.Join + c.Maybe + c.Decline
}
