package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ride-bot/models"
)

// UpsertVote inserts a user's first vote or updates an existing one. The
// whole operation is a single conditional statement: first_status is only
// written on insert, and ever_joined can only ever go from 0 to 1 no matter
// how concurrent casts interleave.
//
// updated_at is stored with nanosecond precision so votes cast within the
// same second keep their order.
func UpsertVote(ctx context.Context, db *sql.DB, channelID, sourceMessageID, userID int64, status models.VoteStatus, now time.Time) error {
	everJoined := 0
	if status == models.StatusJoin {
		everJoined = 1
	}

	query := `
    INSERT INTO votes (
        channel_id, source_message_id, user_id,
        status, first_status, ever_joined, updated_at
    ) VALUES (?, ?, ?, ?, ?, ?, ?)
    ON CONFLICT(channel_id, source_message_id, user_id) DO UPDATE SET
        status = excluded.status,
        ever_joined = MAX(votes.ever_joined, excluded.ever_joined),
        updated_at = excluded.updated_at;`

	_, err := db.ExecContext(ctx, query,
		channelID, sourceMessageID, userID,
		string(status), string(status), everJoined, now.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert vote for user %d on %d/%d: %w", userID, channelID, sourceMessageID, err)
	}
	return nil
}

// GetVote retrieves a single user's vote on a post. Returns nil when the
// user has not voted.
func GetVote(ctx context.Context, db *sql.DB, channelID, sourceMessageID, userID int64) (*models.Vote, error) {
	query := `
    SELECT channel_id, source_message_id, user_id, status, first_status, ever_joined, updated_at
    FROM votes
    WHERE channel_id = ? AND source_message_id = ? AND user_id = ?;`

	var (
		vote        models.Vote
		status      string
		firstStatus string
		everJoined  int
		updatedAt   int64
	)
	err := db.QueryRowContext(ctx, query, channelID, sourceMessageID, userID).Scan(
		&vote.ChannelID, &vote.SourceMessageID, &vote.UserID,
		&status, &firstStatus, &everJoined, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vote for user %d on %d/%d: %w", userID, channelID, sourceMessageID, err)
	}

	if vote.Status, err = models.ParseVoteStatus(status); err != nil {
		return nil, fmt.Errorf("failed to decode vote row: %w", err)
	}
	if vote.FirstStatus, err = models.ParseVoteStatus(firstStatus); err != nil {
		return nil, fmt.Errorf("failed to decode vote row: %w", err)
	}
	vote.EverJoined = everJoined != 0
	vote.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return &vote, nil
}

// GetVoteCounts aggregates current vote counts for a post, including the
// changed-mind count (users who joined at some point but currently don't).
func GetVoteCounts(ctx context.Context, db *sql.DB, channelID, sourceMessageID int64) (models.VoteCounts, error) {
	var counts models.VoteCounts

	query := `
    SELECT status, COUNT(*) FROM votes
    WHERE channel_id = ? AND source_message_id = ?
    GROUP BY status;`

	rows, err := db.QueryContext(ctx, query, channelID, sourceMessageID)
	if err != nil {
		return counts, fmt.Errorf("failed to query vote counts for %d/%d: %w", channelID, sourceMessageID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return counts, fmt.Errorf("failed to scan vote count row: %w", err)
		}
		switch models.VoteStatus(status) {
		case models.StatusJoin:
			counts.Join = n
		case models.StatusMaybe:
			counts.Maybe = n
		case models.StatusDecline:
			counts.Decline = n
		}
	}
	if err := rows.Err(); err != nil {
		return counts, fmt.Errorf("failed to read vote count rows: %w", err)
	}

	counts.ChangedMind, err = GetChangedMindCount(ctx, db, channelID, sourceMessageID)
	if err != nil {
		return counts, err
	}
	return counts, nil
}

// GetChangedMindCount counts users who ever joined but whose current status
// is not join.
func GetChangedMindCount(ctx context.Context, db *sql.DB, channelID, sourceMessageID int64) (int, error) {
	query := `
    SELECT COUNT(*) FROM votes
    WHERE channel_id = ? AND source_message_id = ?
    AND ever_joined = 1 AND status != ?;`

	var n int
	err := db.QueryRowContext(ctx, query, channelID, sourceMessageID, string(models.StatusJoin)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to get changed mind count for %d/%d: %w", channelID, sourceMessageID, err)
	}
	return n, nil
}

// GetVotersByStatus returns voter user ids grouped by status. Within each
// group voters are ordered by vote time ascending, so the list reads
// first-acted-first.
func GetVotersByStatus(ctx context.Context, db *sql.DB, channelID, sourceMessageID int64) (map[models.VoteStatus][]int64, error) {
	query := `
    SELECT status, user_id FROM votes
    WHERE channel_id = ? AND source_message_id = ?
    ORDER BY updated_at ASC;`

	rows, err := db.QueryContext(ctx, query, channelID, sourceMessageID)
	if err != nil {
		return nil, fmt.Errorf("failed to query voters for %d/%d: %w", channelID, sourceMessageID, err)
	}
	defer rows.Close()

	voters := map[models.VoteStatus][]int64{
		models.StatusJoin:    nil,
		models.StatusMaybe:   nil,
		models.StatusDecline: nil,
	}
	for rows.Next() {
		var status string
		var userID int64
		if err := rows.Scan(&status, &userID); err != nil {
			return nil, fmt.Errorf("failed to scan voter row: %w", err)
		}
		s, err := models.ParseVoteStatus(status)
		if err != nil {
			return nil, fmt.Errorf("failed to decode voter row: %w", err)
		}
		voters[s] = append(voters[s], userID)
	}
	return voters, rows.Err()
}

// GetLastVoteTime returns the time of a user's most recent vote on a post.
// The zero time means the user has never voted.
func GetLastVoteTime(ctx context.Context, db *sql.DB, channelID, sourceMessageID, userID int64) (time.Time, error) {
	query := `
    SELECT updated_at FROM votes
    WHERE channel_id = ? AND source_message_id = ? AND user_id = ?;`

	var updatedAt int64
	err := db.QueryRowContext(ctx, query, channelID, sourceMessageID, userID).Scan(&updatedAt)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get last vote time for user %d on %d/%d: %w", userID, channelID, sourceMessageID, err)
	}
	return time.Unix(0, updatedAt).UTC(), nil
}
