package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // Import the SQLite3 driver
)

// InitDB initializes the database connection. It takes the database path as input.
func InitDB(dbPath string) (*sql.DB, error) {
	// Ensure the directory for the database file exists.
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Open the SQLite database. It will be created if it doesn't exist.
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Ping the database to verify the connection.
	if err = db.Ping(); err != nil {
		db.Close() // Close the connection if ping fails
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close() // Close the connection if schema creation fails
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	log.Println("Successfully connected to the database at", dbPath)
	return db, nil
}

// initSchema creates the tables and indexes if they don't exist.
func initSchema(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS posts (
			channel_id INTEGER NOT NULL,
			source_message_id INTEGER NOT NULL,
			mode TEXT NOT NULL,
			card_chat_id INTEGER,
			card_message_id INTEGER,
			voters_message_id INTEGER,
			discussion_message_id INTEGER,
			album_group_id TEXT,
			created_at INTEGER NOT NULL,
			UNIQUE(channel_id, source_message_id)
		);`,
		`CREATE TABLE IF NOT EXISTS votes (
			channel_id INTEGER NOT NULL,
			source_message_id INTEGER NOT NULL,
			user_id INTEGER NOT NULL,
			status TEXT NOT NULL,
			first_status TEXT NOT NULL,
			ever_joined INTEGER NOT NULL DEFAULT 0,
			updated_at INTEGER NOT NULL,
			UNIQUE(channel_id, source_message_id, user_id)
		);`,
		// Mappings from channel posts to their mirrored discussion messages.
		// Kept separate from posts because the mapping event may arrive
		// before the post record exists.
		`CREATE TABLE IF NOT EXISTS discussion_mappings (
			channel_id INTEGER NOT NULL,
			source_message_id INTEGER NOT NULL,
			discussion_message_id INTEGER NOT NULL,
			UNIQUE(channel_id, source_message_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_votes_user ON votes(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_votes_status ON votes(status);`,
		`CREATE INDEX IF NOT EXISTS idx_posts_created ON posts(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_posts_album_group ON posts(album_group_id);`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	return nil
}

// nullInt64 converts a zero value to SQL NULL.
func nullInt64(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}

// nullString converts an empty string to SQL NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
