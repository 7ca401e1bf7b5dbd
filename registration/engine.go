// Package registration implements the placement engine: it attaches a
// registration card to each qualifying channel post through an ordered
// fallback chain of placement modes, and keeps the card in sync with the
// vote tallies.
package registration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"ride-bot/database"
	"ride-bot/gateway"
	"ride-bot/ledger"
	"ride-bot/models"
	"ride-bot/presentation"
	"ride-bot/utils"
)

// CreateResult is the outcome of a Create call.
type CreateResult int

const (
	// ResultCreated means a card was placed and the post persisted.
	ResultCreated CreateResult = iota
	// ResultAlreadyExists means a post for this key (or its album) exists;
	// nothing was done.
	ResultAlreadyExists
	// ResultPending means the post was persisted without a card location,
	// waiting for the discussion mapping to arrive.
	ResultPending
	// ResultAllModesFailed means every placement mode failed; nothing was
	// persisted and a later retry starts from scratch.
	ResultAllModesFailed
)

func (r CreateResult) String() string {
	switch r {
	case ResultCreated:
		return "created"
	case ResultAlreadyExists:
		return "already exists"
	case ResultPending:
		return "pending"
	case ResultAllModesFailed:
		return "all modes failed"
	}
	return "unknown"
}

// RenderResult is the outcome of a Render call.
type RenderResult int

const (
	// RenderUpdated means the card was re-rendered successfully.
	RenderUpdated RenderResult = iota
	// RenderNotFound means no post record exists for the key.
	RenderNotFound
	// RenderMissingLocation means the card location is lost and cannot be
	// repaired; the post needs manual recreation.
	RenderMissingLocation
	// RenderGatewayFailure means the platform edit failed; the caller
	// decides whether to retry.
	RenderGatewayFailure
)

// Sentinel errors surfaced to the event handlers.
var (
	// ErrPostNotFound means no post record exists for the requested key.
	ErrPostNotFound = errors.New("post not found")
	// ErrNoDiscussionThread means the post has no known mirrored message
	// in the discussion group.
	ErrNoDiscussionThread = errors.New("discussion thread not found")
)

// errNoMapping fails the discussion-reply mode when the mirrored message id
// has not been captured yet. Internal to the fallback chain.
var errNoMapping = errors.New("no discussion mapping")

// Options configures the engine.
type Options struct {
	// PreferredMode is the first placement mode to try; the other two
	// follow in the fixed rotation.
	PreferredMode models.PlacementMode
	// DiscussionGroupID is the linked discussion group, 0 when none is
	// configured (disables the discussion-reply mode).
	DiscussionGroupID int64
	// AlbumTTL bounds how long an album-in-progress marker may live.
	AlbumTTL time.Duration
}

// Engine places registration cards and re-renders them as votes change.
type Engine struct {
	db       *sql.DB
	gw       gateway.Gateway
	renderer *presentation.Renderer
	votes    *ledger.Ledger
	opts     Options
	albums   *albumSet
	keys     *keyMutex
	now      func() time.Time
}

// location is where a card ended up.
type location struct {
	chatID    int64
	messageID int64
}

// placement is one entry of the fallback chain: a mode and its attempt
// function. Each attempt either returns the card location or an error that
// sends the chain on to the next mode.
type placement struct {
	mode    models.PlacementMode
	attempt func(ctx context.Context, channelID, sourceMessageID int64, counts models.VoteCounts) (location, error)
}

// New creates a placement engine.
func New(db *sql.DB, gw gateway.Gateway, renderer *presentation.Renderer, votes *ledger.Ledger, opts Options) *Engine {
	if opts.AlbumTTL <= 0 {
		opts.AlbumTTL = 30 * time.Second
	}
	return &Engine{
		db:       db,
		gw:       gw,
		renderer: renderer,
		votes:    votes,
		opts:     opts,
		albums:   newAlbumSet(opts.AlbumTTL),
		keys:     newKeyMutex(),
		now:      time.Now,
	}
}

// strategies returns the fallback chain in attempt order, starting from the
// configured preferred mode.
func (e *Engine) strategies() []placement {
	byMode := map[models.PlacementMode]func(context.Context, int64, int64, models.VoteCounts) (location, error){
		models.ModeEditOriginal:    e.tryEditOriginal,
		models.ModeDiscussionReply: e.tryDiscussionReply,
		models.ModeChannelReply:    e.tryChannelReply,
	}

	chain := models.FallbackChain(e.opts.PreferredMode)
	strategies := make([]placement, 0, len(chain))
	for _, mode := range chain {
		strategies = append(strategies, placement{mode: mode, attempt: byMode[mode]})
	}
	return strategies
}

// Create establishes exactly one card location for a new channel post. It is
// idempotent: redelivered events and the remaining messages of an album
// return ResultAlreadyExists without side effects.
func (e *Engine) Create(ctx context.Context, channelID, sourceMessageID int64, albumGroupID string) (CreateResult, error) {
	if albumGroupID != "" {
		if !e.albums.begin(albumGroupID, e.now()) {
			// Another message of the same album burst got here first.
			return ResultAlreadyExists, nil
		}
		defer e.albums.end(albumGroupID)
	}

	key := postKey{channelID, sourceMessageID}
	e.keys.lock(key)
	defer e.keys.unlock(key)

	existing, err := database.GetPost(ctx, e.db, channelID, sourceMessageID)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return ResultAlreadyExists, nil
	}
	if albumGroupID != "" {
		owner, err := database.GetPostByAlbumGroup(ctx, e.db, channelID, albumGroupID)
		if err != nil {
			return 0, err
		}
		if owner != nil {
			return ResultAlreadyExists, nil
		}
	}

	counts, err := e.votes.GetCounts(ctx, channelID, sourceMessageID)
	if err != nil {
		return 0, err
	}

	strategies := e.strategies()

	// When the preferred mode is discussion-reply and the mirrored message
	// has not been captured yet, wait for the mapping instead of silently
	// degrading to another mode.
	if strategies[0].mode == models.ModeDiscussionReply && e.opts.DiscussionGroupID != 0 {
		mapping, err := database.GetDiscussionMapping(ctx, e.db, channelID, sourceMessageID)
		if err != nil {
			return 0, err
		}
		if mapping == 0 {
			created, err := database.CreatePost(ctx, e.db, models.Post{
				ChannelID:       channelID,
				SourceMessageID: sourceMessageID,
				Mode:            models.ModeDiscussionReply,
				AlbumGroupID:    albumGroupID,
				CreatedAt:       e.now().UTC(),
			})
			if err != nil {
				return 0, err
			}
			if !created {
				return ResultAlreadyExists, nil
			}
			log.Printf("Post %d/%d recorded as pending, waiting for discussion mapping", channelID, sourceMessageID)
			return ResultPending, nil
		}
	}

	for _, s := range strategies {
		loc, err := s.attempt(ctx, channelID, sourceMessageID, counts)
		if err != nil {
			log.Printf("Placement mode %s failed for %d/%d: %v", s.mode, channelID, sourceMessageID, err)
			continue
		}

		created, err := database.CreatePost(ctx, e.db, models.Post{
			ChannelID:       channelID,
			SourceMessageID: sourceMessageID,
			Mode:            s.mode,
			CardChatID:      loc.chatID,
			CardMessageID:   loc.messageID,
			AlbumGroupID:    albumGroupID,
			CreatedAt:       e.now().UTC(),
		})
		if err != nil {
			return 0, err
		}
		if !created {
			return ResultAlreadyExists, nil
		}
		utils.Info("registration", "create", fmt.Sprintf("Card placed for %d/%d using mode %s", channelID, sourceMessageID, s.mode))
		return ResultCreated, nil
	}

	utils.Error("registration", "create", fmt.Sprintf("All placement modes failed for %d/%d", channelID, sourceMessageID))
	return ResultAllModesFailed, nil
}

// Render re-renders an existing card with the current vote counts.
func (e *Engine) Render(ctx context.Context, channelID, sourceMessageID int64) (RenderResult, error) {
	post, err := database.GetPost(ctx, e.db, channelID, sourceMessageID)
	if err != nil {
		return 0, err
	}
	if post == nil {
		return RenderNotFound, nil
	}

	if !post.HasCardLocation() {
		if post.Mode != models.ModeEditOriginal {
			// For reply-based modes the card's identity was never known,
			// so the location cannot be rediscovered. Operator action
			// (recreate) required.
			return RenderMissingLocation, nil
		}
		// An edit-original card lives at the source location by
		// construction, so the repair is always correct for this mode.
		if err := database.SetCardLocation(ctx, e.db, channelID, sourceMessageID, channelID, sourceMessageID); err != nil {
			return 0, err
		}
		post.CardChatID = channelID
		post.CardMessageID = sourceMessageID
	}

	counts, err := e.votes.GetCounts(ctx, channelID, sourceMessageID)
	if err != nil {
		return 0, err
	}

	card := e.renderer.Card(channelID, sourceMessageID, counts, "")
	if err := e.gw.EditCard(ctx, post.CardChatID, post.CardMessageID, card); err != nil {
		return RenderGatewayFailure, err
	}
	return RenderUpdated, nil
}

// CompleteDeferred re-attempts the discussion-reply placement of a pending
// post once its discussion mapping has arrived. Returns true when the card
// was placed now. A still-missing mapping leaves the post pending, which is
// not an error.
func (e *Engine) CompleteDeferred(ctx context.Context, channelID, sourceMessageID int64) (bool, error) {
	key := postKey{channelID, sourceMessageID}
	e.keys.lock(key)
	defer e.keys.unlock(key)

	post, err := database.GetPost(ctx, e.db, channelID, sourceMessageID)
	if err != nil {
		return false, err
	}
	if post == nil || post.Mode != models.ModeDiscussionReply || post.HasCardLocation() {
		return false, nil
	}

	counts, err := e.votes.GetCounts(ctx, channelID, sourceMessageID)
	if err != nil {
		return false, err
	}

	loc, err := e.tryDiscussionReply(ctx, channelID, sourceMessageID, counts)
	if errors.Is(err, errNoMapping) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	// The post row already exists, so the location is filled in via an
	// update, never a second insert.
	if err := database.SetCardLocation(ctx, e.db, channelID, sourceMessageID, loc.chatID, loc.messageID); err != nil {
		return false, err
	}
	utils.Info("registration", "completeDeferred", fmt.Sprintf("Deferred card placed for %d/%d", channelID, sourceMessageID))
	return true, nil
}

// PostVotersSummary posts (or re-posts) the voters list into the discussion
// thread of a post, replacing the previous summary message if one exists.
func (e *Engine) PostVotersSummary(ctx context.Context, channelID, sourceMessageID int64) error {
	post, err := database.GetPost(ctx, e.db, channelID, sourceMessageID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}
	if e.opts.DiscussionGroupID == 0 {
		return ErrNoDiscussionThread
	}

	discussionMsg := post.DiscussionMsgID
	if discussionMsg == 0 {
		discussionMsg, err = database.GetDiscussionMapping(ctx, e.db, channelID, sourceMessageID)
		if err != nil {
			return err
		}
	}
	if discussionMsg == 0 {
		return ErrNoDiscussionThread
	}

	voters, err := e.votes.GetVotersByStatus(ctx, channelID, sourceMessageID)
	if err != nil {
		return err
	}
	text := e.renderer.VotersList(voters, func(userID int64) string {
		return e.gw.ResolveUserName(ctx, userID)
	})

	// Best effort: the previous summary may already be gone.
	if post.VotersMessageID != 0 {
		if err := e.gw.DeleteMessage(ctx, e.opts.DiscussionGroupID, post.VotersMessageID); err != nil {
			log.Printf("Could not delete previous voters message %d: %v", post.VotersMessageID, err)
		}
	}

	sent, err := e.gw.SendMessage(ctx, e.opts.DiscussionGroupID, discussionMsg, text)
	if err != nil {
		return fmt.Errorf("failed to send voters summary: %w", err)
	}
	return database.SetVotersSummaryMessage(ctx, e.db, channelID, sourceMessageID, sent)
}

// RefreshRecent re-renders the cards of posts created since the given time.
// Used by the scheduler to self-heal cards whose updates were missed.
func (e *Engine) RefreshRecent(ctx context.Context, channelID int64, since time.Time) {
	posts, err := database.ListRecentPosts(ctx, e.db, channelID, since)
	if err != nil {
		utils.Error("registration", "refresh", fmt.Sprintf("Failed to list recent posts: %v", err))
		return
	}

	for _, post := range posts {
		result, err := e.Render(ctx, post.ChannelID, post.SourceMessageID)
		if err != nil {
			log.Printf("Refresh of %d/%d failed: %v", post.ChannelID, post.SourceMessageID, err)
			continue
		}
		if result == RenderMissingLocation {
			log.Printf("Post %d/%d has no recoverable card location, skipping", post.ChannelID, post.SourceMessageID)
		}
	}
}

// SweepAlbums drops expired album-in-progress markers.
func (e *Engine) SweepAlbums() int {
	return e.albums.sweep(e.now())
}

// tryEditOriginal edits the source message in place. Only succeeds when the
// bot can edit the message, i.e. it authored it.
func (e *Engine) tryEditOriginal(ctx context.Context, channelID, sourceMessageID int64, counts models.VoteCounts) (location, error) {
	card := e.renderer.Card(channelID, sourceMessageID, counts, "")
	if err := e.gw.EditCard(ctx, channelID, sourceMessageID, card); err != nil {
		return location{}, err
	}
	return location{chatID: channelID, messageID: sourceMessageID}, nil
}

// tryDiscussionReply posts the card as a reply to the mirrored copy of the
// post in the linked discussion group.
func (e *Engine) tryDiscussionReply(ctx context.Context, channelID, sourceMessageID int64, counts models.VoteCounts) (location, error) {
	if e.opts.DiscussionGroupID == 0 {
		return location{}, errNoMapping
	}
	mapping, err := database.GetDiscussionMapping(ctx, e.db, channelID, sourceMessageID)
	if err != nil {
		return location{}, err
	}
	if mapping == 0 {
		return location{}, errNoMapping
	}

	card := e.renderer.Card(channelID, sourceMessageID, counts, "")
	sent, err := e.gw.SendCard(ctx, e.opts.DiscussionGroupID, mapping, card)
	if err != nil {
		return location{}, err
	}
	return location{chatID: e.opts.DiscussionGroupID, messageID: sent}, nil
}

// tryChannelReply posts the card into the channel as a reply to the source
// post. When the platform rejects the threaded reply it retries once as a
// plain message with a link button back to the original post.
func (e *Engine) tryChannelReply(ctx context.Context, channelID, sourceMessageID int64, counts models.VoteCounts) (location, error) {
	card := e.renderer.Card(channelID, sourceMessageID, counts, "")
	sent, err := e.gw.SendCard(ctx, channelID, sourceMessageID, card)
	if err == nil {
		return location{chatID: channelID, messageID: sent}, nil
	}
	if !errors.Is(err, gateway.ErrRejected) {
		return location{}, err
	}

	linked := e.renderer.Card(channelID, sourceMessageID, counts, utils.MessageLink(channelID, sourceMessageID))
	sent, err = e.gw.SendCard(ctx, channelID, 0, linked)
	if err != nil {
		return location{}, err
	}
	return location{chatID: channelID, messageID: sent}, nil
}
