// Package ledger owns vote state transitions, rate limiting and aggregate
// vote statistics. The database is the single source of truth; nothing here
// is cached.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"ride-bot/database"
	"ride-bot/models"
)

// ErrVoteFailed indicates a persistence problem while recording a vote. The
// ledger never retries; retry policy belongs to the caller.
var ErrVoteFailed = errors.New("vote could not be recorded")

// RateLimitedError is returned when a user votes again before the cooldown
// elapsed. It is an expected outcome, not a fault.
type RateLimitedError struct {
	Remaining time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, %s remaining", e.Remaining)
}

// Seconds returns the remaining wait rounded up to whole seconds, never
// negative.
func (e *RateLimitedError) Seconds() int {
	s := int(math.Ceil(e.Remaining.Seconds()))
	if s < 0 {
		return 0
	}
	return s
}

// Ledger records votes and answers aggregate queries.
type Ledger struct {
	db       *sql.DB
	cooldown time.Duration
	now      func() time.Time
}

// New creates a ledger. A cooldown of 0 disables rate limiting.
func New(db *sql.DB, cooldown time.Duration) *Ledger {
	return &Ledger{db: db, cooldown: cooldown, now: time.Now}
}

// CastVote records a user's vote on a post. Returns *RateLimitedError when
// the user voted too recently, or an error wrapping ErrVoteFailed when the
// store rejects the write.
func (l *Ledger) CastVote(ctx context.Context, channelID, sourceMessageID, userID int64, status models.VoteStatus) error {
	now := l.now().UTC()

	if l.cooldown > 0 {
		last, err := database.GetLastVoteTime(ctx, l.db, channelID, sourceMessageID, userID)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrVoteFailed, err)
		}
		if !last.IsZero() {
			if elapsed := now.Sub(last); elapsed < l.cooldown {
				return &RateLimitedError{Remaining: l.cooldown - elapsed}
			}
		}
	}

	if err := database.UpsertVote(ctx, l.db, channelID, sourceMessageID, userID, status, now); err != nil {
		return fmt.Errorf("%w: %v", ErrVoteFailed, err)
	}
	return nil
}

// GetCounts returns the current vote counts for a post.
func (l *Ledger) GetCounts(ctx context.Context, channelID, sourceMessageID int64) (models.VoteCounts, error) {
	return database.GetVoteCounts(ctx, l.db, channelID, sourceMessageID)
}

// GetVotersByStatus returns voter ids grouped by status, ordered by vote
// time within each group.
func (l *Ledger) GetVotersByStatus(ctx context.Context, channelID, sourceMessageID int64) (map[models.VoteStatus][]int64, error) {
	return database.GetVotersByStatus(ctx, l.db, channelID, sourceMessageID)
}

// HasVoted reports whether the user has any vote on the post, regardless of
// its current status.
func (l *Ledger) HasVoted(ctx context.Context, channelID, sourceMessageID, userID int64) (bool, error) {
	vote, err := database.GetVote(ctx, l.db, channelID, sourceMessageID, userID)
	if err != nil {
		return false, err
	}
	return vote != nil, nil
}
