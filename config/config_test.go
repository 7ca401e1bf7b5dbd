package config

import (
	"testing"

	"github.com/spf13/viper"

	"ride-bot/models"
)

func setBase(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("telegram.bot_token", "123:token")
	viper.Set("telegram.rides_channel_id", int64(-100111))
	setDefaults()
}

func TestValidateMinimal(t *testing.T) {
	setBase(t)

	cfg, err := validate()
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.PreferredMode != models.ModeEditOriginal {
		t.Errorf("default mode = %v, want edit_original", cfg.PreferredMode)
	}
	if cfg.Filter != "all" {
		t.Errorf("default filter = %q, want all", cfg.Filter)
	}
	if cfg.VoteCooldown != 0 {
		t.Errorf("default cooldown = %v, want 0", cfg.VoteCooldown)
	}
	if cfg.RequestTimeout <= 0 {
		t.Errorf("default request timeout = %v, want positive", cfg.RequestTimeout)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name string
		set  func()
	}{
		{"missing token", func() { viper.Set("telegram.bot_token", "") }},
		{"missing channel", func() { viper.Set("telegram.rides_channel_id", 0) }},
		{"bad placement mode", func() { viper.Set("placement.preferred_mode", "sideways") }},
		{"discussion mode without group", func() {
			viper.Set("placement.preferred_mode", "discussion_reply")
			viper.Set("telegram.discussion_group_id", 0)
		}},
		{"bad filter", func() { viper.Set("filter.mode", "regex") }},
		{"hashtag filter without tags", func() { viper.Set("filter.mode", "hashtag") }},
		{"negative cooldown", func() { viper.Set("votes.cooldown_seconds", -5) }},
		{"zero request timeout", func() { viper.Set("telegram.request_timeout_seconds", 0) }},
		{"bad admin id", func() { viper.Set("admin.user_ids", []string{"not-a-number"}) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBase(t)
			tt.set()
			if _, err := validate(); err == nil {
				t.Error("validate succeeded, want error")
			}
		})
	}
}

func TestValidateFullConfig(t *testing.T) {
	setBase(t)
	viper.Set("telegram.discussion_group_id", int64(-100999))
	viper.Set("placement.preferred_mode", "discussion_reply")
	viper.Set("filter.mode", "hashtag")
	viper.Set("filter.hashtags", []string{"#ride", "#mtb"})
	viper.Set("votes.cooldown_seconds", 30)
	viper.Set("admin.user_ids", []string{"7", " 42 "})

	cfg, err := validate()
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.PreferredMode != models.ModeDiscussionReply {
		t.Errorf("mode = %v, want discussion_reply", cfg.PreferredMode)
	}
	if len(cfg.Hashtags) != 2 {
		t.Errorf("hashtags = %v, want 2 entries", cfg.Hashtags)
	}
	if cfg.VoteCooldown.Seconds() != 30 {
		t.Errorf("cooldown = %v, want 30s", cfg.VoteCooldown)
	}
	if !cfg.IsAdmin(42) || cfg.IsAdmin(99) {
		t.Errorf("admin ids parsed wrong: %v", cfg.AdminUserIDs)
	}
}
