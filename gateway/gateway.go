// Package gateway wraps the chat platform API behind a small messaging
// interface so the registration engine and handlers never talk to the
// platform library directly.
package gateway

import (
	"context"
	"errors"
)

// ErrRejected marks a platform rejection caused by permissions or thread
// state (e.g. the bot cannot edit a message it does not own, or the channel
// forbids replies). It is an expected outcome that drives placement
// fallback, not a transport fault.
var ErrRejected = errors.New("rejected by platform")

// ErrNotModified marks an edit whose text and keyboard already match the
// message. The card is current; nothing needs to change.
var ErrNotModified = errors.New("message is not modified")

// Button is a single inline keyboard button. Exactly one of CallbackData and
// URL is set.
type Button struct {
	Label        string
	CallbackData string
	URL          string
}

// Card is a rendered registration card: display text plus button rows.
// Rendering is done by the presentation package; the gateway only carries
// the result onto the wire.
type Card struct {
	Text    string
	Buttons [][]Button
}

// Gateway sends, edits and deletes messages on the chat platform. Every call
// is bounded by the configured request timeout.
type Gateway interface {
	// EditCard replaces the text and keyboard of an existing message.
	EditCard(ctx context.Context, chatID, messageID int64, card Card) error

	// SendCard posts a new card message. replyTo of 0 sends a plain
	// message instead of a threaded reply. Returns the new message id.
	SendCard(ctx context.Context, chatID, replyTo int64, card Card) (int64, error)

	// SendMessage posts a plain text message, optionally as a reply.
	SendMessage(ctx context.Context, chatID, replyTo int64, text string) (int64, error)

	// DeleteMessage removes a message the bot posted earlier.
	DeleteMessage(ctx context.Context, chatID, messageID int64) error

	// AnswerCallback acknowledges a button press with a short notice,
	// shown as an alert dialog when alert is true.
	AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error

	// ResolveUserName returns a display name for a user id, falling back
	// to a generic label when the platform won't reveal the user.
	ResolveUserName(ctx context.Context, userID int64) string
}
