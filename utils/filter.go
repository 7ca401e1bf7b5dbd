package utils

import (
	"strings"
)

// Filter types for channel posts.
const (
	FilterAll     = "all"
	FilterHashtag = "hashtag"
)

// MessageFilter decides which channel posts get a registration card.
type MessageFilter struct {
	filterType string
	hashtags   []string
}

// NewMessageFilter creates a filter. Hashtags are matched case-insensitively.
func NewMessageFilter(filterType string, hashtags []string) *MessageFilter {
	lowered := make([]string, 0, len(hashtags))
	for _, tag := range hashtags {
		if tag = strings.TrimSpace(tag); tag != "" {
			lowered = append(lowered, strings.ToLower(tag))
		}
	}
	return &MessageFilter{filterType: filterType, hashtags: lowered}
}

// ShouldProcess reports whether a post with the given text (or caption) and
// author should get a registration card. Posts authored by bots are skipped.
func (f *MessageFilter) ShouldProcess(text string, fromBot bool) bool {
	if fromBot {
		return false
	}

	switch f.filterType {
	case FilterAll:
		return true
	case FilterHashtag:
		lowered := strings.ToLower(text)
		for _, tag := range f.hashtags {
			if strings.Contains(lowered, tag) {
				return true
			}
		}
		return false
	}
	return false
}

// ExtractHashtags returns the hashtags present in a message text.
func ExtractHashtags(text string) []string {
	var tags []string
	for _, word := range strings.Fields(text) {
		if strings.HasPrefix(word, "#") && len(word) > 1 {
			tags = append(tags, word)
		}
	}
	return tags
}
