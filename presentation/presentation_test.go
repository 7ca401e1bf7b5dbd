package presentation

import (
	"fmt"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"ride-bot/models"
)

func TestLoadTranslationsFallback(t *testing.T) {
	viper.Reset()

	tr, found := LoadTranslations("ua")
	if found {
		t.Error("unknown language should report a lookup miss")
	}
	if tr.Buttons.Join != baseTranslations.Buttons.Join {
		t.Errorf("fallback buttons = %q, want base language", tr.Buttons.Join)
	}

	tr, found = LoadTranslations("")
	if found {
		t.Error("empty language should report a lookup miss")
	}
	if tr.Messages.VoteRecorded == "" {
		t.Error("base translations must not have empty strings")
	}
}

func TestLoadTranslationsPartialLanguage(t *testing.T) {
	viper.Reset()
	viper.Set("translations.ua.buttons.join", "✅ Їду")

	tr, found := LoadTranslations("ua")
	if !found {
		t.Fatal("configured language should be found")
	}
	if tr.Buttons.Join != "✅ Їду" {
		t.Errorf("translated button = %q, want configured value", tr.Buttons.Join)
	}
	// Untranslated strings fall back per field.
	if tr.Buttons.Refresh != baseTranslations.Buttons.Refresh {
		t.Errorf("missing field = %q, want base value", tr.Buttons.Refresh)
	}
}

func TestCard(t *testing.T) {
	viper.Reset()
	r := NewRenderer("", true)

	counts := models.VoteCounts{Join: 2, Maybe: 1, Decline: 0, ChangedMind: 1}
	card := r.Card(-100111, 50, counts, "")

	if !strings.Contains(card.Text, "Join: 2") {
		t.Errorf("card text missing join count: %q", card.Text)
	}
	if !strings.Contains(card.Text, "Changed mind: 1") {
		t.Errorf("card text missing changed-mind line: %q", card.Text)
	}
	if len(card.Buttons) != 2 {
		t.Fatalf("button rows = %d, want 2", len(card.Buttons))
	}
	if got := card.Buttons[0][0].CallbackData; got != "v:join:-100111:50" {
		t.Errorf("join callback data = %q", got)
	}
	if got := card.Buttons[1][1].CallbackData; got != "refresh:-100111:50" {
		t.Errorf("refresh callback data = %q", got)
	}
}

func TestCardChangedMindHidden(t *testing.T) {
	viper.Reset()
	r := NewRenderer("", false)

	card := r.Card(-100111, 50, models.VoteCounts{Join: 1, ChangedMind: 3}, "")
	if strings.Contains(card.Text, "Changed mind") {
		t.Errorf("changed-mind line shown despite being disabled: %q", card.Text)
	}
}

func TestCardSourceLinkButton(t *testing.T) {
	viper.Reset()
	r := NewRenderer("", true)

	link := "https://t.me/c/100111/50"
	card := r.Card(-100111, 50, models.VoteCounts{}, link)
	if len(card.Buttons) != 3 {
		t.Fatalf("button rows = %d, want 3 with source link", len(card.Buttons))
	}
	if card.Buttons[2][0].URL != link {
		t.Errorf("source link button URL = %q, want %q", card.Buttons[2][0].URL, link)
	}
}

func TestVotersList(t *testing.T) {
	viper.Reset()
	r := NewRenderer("", true)

	voters := map[models.VoteStatus][]int64{
		models.StatusJoin:  {30, 10},
		models.StatusMaybe: {20},
	}
	text := r.VotersList(voters, func(id int64) string { return fmt.Sprintf("user %d", id) })

	joinIdx := strings.Index(text, "user 30")
	secondIdx := strings.Index(text, "user 10")
	if joinIdx == -1 || secondIdx == -1 || joinIdx > secondIdx {
		t.Errorf("voters not listed in vote order:\n%s", text)
	}
	if !strings.Contains(text, "Join (2)") {
		t.Errorf("missing join section header:\n%s", text)
	}

	empty := r.VotersList(map[models.VoteStatus][]int64{}, func(int64) string { return "" })
	if !strings.Contains(empty, "No votes yet") {
		t.Errorf("empty voters list = %q", empty)
	}
}
