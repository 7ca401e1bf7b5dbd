package ledger

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"ride-bot/database"
	"ride-bot/models"
)

func newTestLedger(t *testing.T, cooldown time.Duration) (*Ledger, *sql.DB) {
	t.Helper()
	db, err := database.InitDB(":memory:")
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	// Every pooled connection to ":memory:" opens its own empty database;
	// only the first one got the schema.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return New(db, cooldown), db
}

func TestCastVoteRateLimited(t *testing.T) {
	l, _ := newTestLedger(t, 30*time.Second)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return base }

	if err := l.CastVote(ctx, -100111, 50, 7, models.StatusJoin); err != nil {
		t.Fatalf("first cast: %v", err)
	}

	// Ten seconds later the user is still inside the cooldown window.
	l.now = func() time.Time { return base.Add(10 * time.Second) }
	err := l.CastVote(ctx, -100111, 50, 7, models.StatusMaybe)

	var rl *RateLimitedError
	if !errors.As(err, &rl) {
		t.Fatalf("second cast error = %v, want RateLimitedError", err)
	}
	if rl.Remaining <= 0 || rl.Remaining > 30*time.Second {
		t.Errorf("remaining = %v, want in (0, 30s]", rl.Remaining)
	}
	if rl.Seconds() != 20 {
		t.Errorf("Seconds() = %d, want 20", rl.Seconds())
	}

	// The rejected cast must not have modified the vote.
	counts, err := l.GetCounts(ctx, -100111, 50)
	if err != nil {
		t.Fatalf("GetCounts: %v", err)
	}
	if counts.Join != 1 || counts.Maybe != 0 {
		t.Errorf("counts after rejected cast = %+v, want join:1", counts)
	}

	// Past the cooldown the cast goes through.
	l.now = func() time.Time { return base.Add(31 * time.Second) }
	if err := l.CastVote(ctx, -100111, 50, 7, models.StatusMaybe); err != nil {
		t.Fatalf("cast after cooldown: %v", err)
	}
}

func TestCastVoteNoCooldown(t *testing.T) {
	l, _ := newTestLedger(t, 0)
	ctx := context.Background()

	for _, status := range []models.VoteStatus{models.StatusJoin, models.StatusMaybe, models.StatusJoin} {
		if err := l.CastVote(ctx, -100111, 50, 7, status); err != nil {
			t.Fatalf("cast %v with cooldown disabled: %v", status, err)
		}
	}
}

func TestCastVoteRateLimitPerPost(t *testing.T) {
	l, _ := newTestLedger(t, time.Minute)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return base }

	if err := l.CastVote(ctx, -100111, 50, 7, models.StatusJoin); err != nil {
		t.Fatalf("first cast: %v", err)
	}
	// Same user, different post: the cooldown does not apply.
	if err := l.CastVote(ctx, -100111, 51, 7, models.StatusJoin); err != nil {
		t.Fatalf("cast on other post: %v", err)
	}
}

func TestChangedMindScenario(t *testing.T) {
	l, _ := newTestLedger(t, 0)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	step := 0
	l.now = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Second)
	}

	// join -> maybe -> decline counts as one changed mind, not two.
	for _, status := range []models.VoteStatus{models.StatusJoin, models.StatusMaybe, models.StatusDecline} {
		if err := l.CastVote(ctx, -100111, 50, 7, status); err != nil {
			t.Fatalf("cast %v: %v", status, err)
		}
	}

	counts, err := l.GetCounts(ctx, -100111, 50)
	if err != nil {
		t.Fatalf("GetCounts: %v", err)
	}
	if counts.ChangedMind != 1 {
		t.Errorf("changed mind = %d, want 1", counts.ChangedMind)
	}
	if counts.Join != 0 || counts.Maybe != 0 || counts.Decline != 1 {
		t.Errorf("counts = %+v, want only the final status", counts)
	}
}

func TestHasVoted(t *testing.T) {
	l, _ := newTestLedger(t, 0)
	ctx := context.Background()

	voted, err := l.HasVoted(ctx, -100111, 50, 7)
	if err != nil {
		t.Fatalf("HasVoted: %v", err)
	}
	if voted {
		t.Error("HasVoted before any cast should be false")
	}

	if err := l.CastVote(ctx, -100111, 50, 7, models.StatusDecline); err != nil {
		t.Fatalf("CastVote: %v", err)
	}

	voted, err = l.HasVoted(ctx, -100111, 50, 7)
	if err != nil {
		t.Fatalf("HasVoted: %v", err)
	}
	if !voted {
		t.Error("HasVoted should be true regardless of status")
	}
}

func TestCastVoteFailureTyped(t *testing.T) {
	l, db := newTestLedger(t, 0)
	db.Close() // force persistence failures

	err := l.CastVote(context.Background(), -100111, 50, 7, models.StatusJoin)
	if !errors.Is(err, ErrVoteFailed) {
		t.Errorf("error = %v, want ErrVoteFailed", err)
	}

	var rl *RateLimitedError
	if errors.As(err, &rl) {
		t.Error("persistence failure must not look like rate limiting")
	}
}
