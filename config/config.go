// Package config loads the bot configuration from .env, config.yaml and the
// merged files under ./config/, and validates it into a typed Config.
package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"ride-bot/models"
	"ride-bot/utils"
)

// Config is the validated runtime configuration.
type Config struct {
	// BotToken authenticates the bot against the platform API.
	BotToken string
	// RidesChannelID is the channel whose posts get registration cards.
	RidesChannelID int64
	// DiscussionGroupID is the linked discussion group, 0 when none.
	DiscussionGroupID int64
	// PreferredMode is the first placement mode the engine tries.
	PreferredMode models.PlacementMode
	// Filter decides which channel posts qualify (all or hashtag).
	Filter string
	// Hashtags are the qualifying tags when Filter is hashtag.
	Hashtags []string
	// AdminUserIDs may run admin commands.
	AdminUserIDs []int64
	// AdminChatID receives mirrored warning and error logs, 0 disables.
	AdminChatID int64
	// DatabasePath is the sqlite file location.
	DatabasePath string
	// Language selects the translation set, empty means the base strings.
	Language string
	// VoteCooldown is the per-user per-post rate limit, 0 disables.
	VoteCooldown time.Duration
	// ShowChangedMindStats toggles the changed-mind line on cards.
	ShowChangedMindStats bool
	// RequireVoteToSeeVoters gates the voters list behind having voted.
	RequireVoteToSeeVoters bool
	// RequestTimeout bounds every platform API call.
	RequestTimeout time.Duration
}

// Load reads configuration from .env, config.yaml and config/buttons.yaml,
// with environment variables overriding file values, then validates the
// result. Invalid configuration is a startup failure.
func Load() (*Config, error) {
	// .env is optional.
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, skipping")
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Printf("No config.yaml found, using environment variables only")
		} else {
			return nil, fmt.Errorf("failed to parse config.yaml: %w", err)
		}
	}

	// buttons.yaml holds the translation sets; missing is fine, the base
	// strings apply.
	viper.SetConfigName("buttons")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")

	if err := viper.MergeInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Printf("No config/buttons.yaml found, using built-in strings")
		} else {
			return nil, fmt.Errorf("failed to merge config/buttons.yaml: %w", err)
		}
	}

	setDefaults()
	return validate()
}

func setDefaults() {
	viper.SetDefault("placement.preferred_mode", string(models.ModeEditOriginal))
	viper.SetDefault("filter.mode", utils.FilterAll)
	viper.SetDefault("database.path", "data/ride-bot.db")
	viper.SetDefault("votes.cooldown_seconds", 0)
	viper.SetDefault("votes.show_changed_mind", true)
	viper.SetDefault("votes.require_vote_to_see_voters", false)
	viper.SetDefault("telegram.request_timeout_seconds", 30)
}

func validate() (*Config, error) {
	cfg := &Config{
		BotToken:               viper.GetString("telegram.bot_token"),
		RidesChannelID:         viper.GetInt64("telegram.rides_channel_id"),
		DiscussionGroupID:      viper.GetInt64("telegram.discussion_group_id"),
		Filter:                 viper.GetString("filter.mode"),
		Hashtags:               viper.GetStringSlice("filter.hashtags"),
		AdminChatID:            viper.GetInt64("admin.log_chat_id"),
		DatabasePath:           viper.GetString("database.path"),
		Language:               viper.GetString("language"),
		VoteCooldown:           time.Duration(viper.GetInt("votes.cooldown_seconds")) * time.Second,
		ShowChangedMindStats:   viper.GetBool("votes.show_changed_mind"),
		RequireVoteToSeeVoters: viper.GetBool("votes.require_vote_to_see_voters"),
		RequestTimeout:         time.Duration(viper.GetInt("telegram.request_timeout_seconds")) * time.Second,
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("telegram.bot_token is required")
	}
	if cfg.RidesChannelID == 0 {
		return nil, fmt.Errorf("telegram.rides_channel_id is required")
	}

	mode, err := models.ParsePlacementMode(viper.GetString("placement.preferred_mode"))
	if err != nil {
		return nil, fmt.Errorf("invalid placement.preferred_mode: %w", err)
	}
	cfg.PreferredMode = mode
	if cfg.PreferredMode == models.ModeDiscussionReply && cfg.DiscussionGroupID == 0 {
		return nil, fmt.Errorf("placement.preferred_mode %q requires telegram.discussion_group_id", cfg.PreferredMode)
	}

	switch cfg.Filter {
	case utils.FilterAll:
	case utils.FilterHashtag:
		if len(cfg.Hashtags) == 0 {
			return nil, fmt.Errorf("filter.mode %q requires filter.hashtags", cfg.Filter)
		}
	default:
		return nil, fmt.Errorf("invalid filter.mode %q", cfg.Filter)
	}

	if cfg.VoteCooldown < 0 {
		return nil, fmt.Errorf("votes.cooldown_seconds must not be negative")
	}
	if cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("telegram.request_timeout_seconds must be positive")
	}

	for _, raw := range viper.GetStringSlice("admin.user_ids") {
		id, err := parseID(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid admin.user_ids entry %q: %w", raw, err)
		}
		cfg.AdminUserIDs = append(cfg.AdminUserIDs, id)
	}

	return cfg, nil
}

func parseID(raw string) (int64, error) {
	var id int64
	if _, err := fmt.Sscanf(strings.TrimSpace(raw), "%d", &id); err != nil {
		return 0, err
	}
	return id, nil
}

// IsAdmin reports whether the user may run admin commands.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.AdminUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}
