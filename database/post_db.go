package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ride-bot/models"
)

// CreatePost saves a new post record. The card location is part of the same
// insert, so a placed post never appears without its location. Returns false
// without modifying anything when a record already exists for the key.
func CreatePost(ctx context.Context, db *sql.DB, post models.Post) (bool, error) {
	query := `
    INSERT INTO posts (
        channel_id, source_message_id, mode,
        card_chat_id, card_message_id, album_group_id, created_at
    ) VALUES (?, ?, ?, ?, ?, ?, ?)
    ON CONFLICT(channel_id, source_message_id) DO NOTHING;`

	res, err := db.ExecContext(ctx, query,
		post.ChannelID,
		post.SourceMessageID,
		string(post.Mode),
		nullInt64(post.CardChatID),
		nullInt64(post.CardMessageID),
		nullString(post.AlbumGroupID),
		post.CreatedAt.Unix(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to create post %d/%d: %w", post.ChannelID, post.SourceMessageID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check post insert result: %w", err)
	}
	return affected > 0, nil
}

// GetPost retrieves a post by its channel and source message. Returns nil
// when no record exists.
func GetPost(ctx context.Context, db *sql.DB, channelID, sourceMessageID int64) (*models.Post, error) {
	query := `
    SELECT channel_id, source_message_id, mode, card_chat_id, card_message_id,
           voters_message_id, discussion_message_id, album_group_id, created_at
    FROM posts
    WHERE channel_id = ? AND source_message_id = ?;`

	return scanPost(db.QueryRowContext(ctx, query, channelID, sourceMessageID))
}

// GetPostByAlbumGroup retrieves the post owning an album. The first message
// of an album owns the post, so the earliest record wins.
func GetPostByAlbumGroup(ctx context.Context, db *sql.DB, channelID int64, albumGroupID string) (*models.Post, error) {
	query := `
    SELECT channel_id, source_message_id, mode, card_chat_id, card_message_id,
           voters_message_id, discussion_message_id, album_group_id, created_at
    FROM posts
    WHERE channel_id = ? AND album_group_id = ?
    ORDER BY created_at ASC
    LIMIT 1;`

	return scanPost(db.QueryRowContext(ctx, query, channelID, albumGroupID))
}

// SetCardLocation records where the registration card ended up. Both columns
// are written in a single statement so the location is never half-set.
func SetCardLocation(ctx context.Context, db *sql.DB, channelID, sourceMessageID, cardChatID, cardMessageID int64) error {
	query := `
    UPDATE posts
    SET card_chat_id = ?, card_message_id = ?
    WHERE channel_id = ? AND source_message_id = ?;`

	if _, err := db.ExecContext(ctx, query, cardChatID, cardMessageID, channelID, sourceMessageID); err != nil {
		return fmt.Errorf("failed to set card location for %d/%d: %w", channelID, sourceMessageID, err)
	}
	return nil
}

// SetVotersSummaryMessage records the message id of the posted voters summary.
func SetVotersSummaryMessage(ctx context.Context, db *sql.DB, channelID, sourceMessageID, votersMessageID int64) error {
	query := `
    UPDATE posts
    SET voters_message_id = ?
    WHERE channel_id = ? AND source_message_id = ?;`

	if _, err := db.ExecContext(ctx, query, votersMessageID, channelID, sourceMessageID); err != nil {
		return fmt.Errorf("failed to set voters message for %d/%d: %w", channelID, sourceMessageID, err)
	}
	return nil
}

// SetDiscussionMapping stores the mapping from a channel post to its mirrored
// discussion message. The mapping is kept in its own table because it may
// arrive before the post record exists; when the post does exist its row is
// updated as well.
func SetDiscussionMapping(ctx context.Context, db *sql.DB, channelID, sourceMessageID, discussionMessageID int64) error {
	query := `
    INSERT INTO discussion_mappings (channel_id, source_message_id, discussion_message_id)
    VALUES (?, ?, ?)
    ON CONFLICT(channel_id, source_message_id) DO UPDATE SET
        discussion_message_id = excluded.discussion_message_id;`

	if _, err := db.ExecContext(ctx, query, channelID, sourceMessageID, discussionMessageID); err != nil {
		return fmt.Errorf("failed to store discussion mapping for %d/%d: %w", channelID, sourceMessageID, err)
	}

	update := `
    UPDATE posts
    SET discussion_message_id = ?
    WHERE channel_id = ? AND source_message_id = ?;`

	if _, err := db.ExecContext(ctx, update, discussionMessageID, channelID, sourceMessageID); err != nil {
		return fmt.Errorf("failed to update post discussion mapping for %d/%d: %w", channelID, sourceMessageID, err)
	}
	return nil
}

// GetDiscussionMapping returns the mirrored discussion message id for a
// channel post, or 0 when no mapping has been captured yet.
func GetDiscussionMapping(ctx context.Context, db *sql.DB, channelID, sourceMessageID int64) (int64, error) {
	query := `
    SELECT discussion_message_id FROM discussion_mappings
    WHERE channel_id = ? AND source_message_id = ?;`

	var id int64
	err := db.QueryRowContext(ctx, query, channelID, sourceMessageID).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get discussion mapping for %d/%d: %w", channelID, sourceMessageID, err)
	}
	return id, nil
}

// ListRecentPosts returns posts in a channel created at or after the given
// time, oldest first. Used by the scheduled card refresh sweep.
func ListRecentPosts(ctx context.Context, db *sql.DB, channelID int64, since time.Time) ([]models.Post, error) {
	query := `
    SELECT channel_id, source_message_id, mode, card_chat_id, card_message_id,
           voters_message_id, discussion_message_id, album_group_id, created_at
    FROM posts
    WHERE channel_id = ? AND created_at >= ?
    ORDER BY created_at ASC;`

	rows, err := db.QueryContext(ctx, query, channelID, since.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to query recent posts: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		post, err := scanPostRow(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	return posts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row *sql.Row) (*models.Post, error) {
	post, err := scanPostRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return post, err
}

func scanPostRow(row rowScanner) (*models.Post, error) {
	var (
		post          models.Post
		mode          string
		cardChat      sql.NullInt64
		cardMsg       sql.NullInt64
		votersMsg     sql.NullInt64
		discussionMsg sql.NullInt64
		albumGroup    sql.NullString
		createdAt     int64
	)

	err := row.Scan(
		&post.ChannelID, &post.SourceMessageID, &mode,
		&cardChat, &cardMsg, &votersMsg, &discussionMsg, &albumGroup, &createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan post row: %w", err)
	}

	post.Mode, err = models.ParsePlacementMode(mode)
	if err != nil {
		return nil, fmt.Errorf("failed to decode post row: %w", err)
	}
	post.CardChatID = cardChat.Int64
	post.CardMessageID = cardMsg.Int64
	post.VotersMessageID = votersMsg.Int64
	post.DiscussionMsgID = discussionMsg.Int64
	post.AlbumGroupID = albumGroup.String
	post.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &post, nil
}
