package utils

import (
	"testing"
)

func TestMessageLink(t *testing.T) {
	tests := []struct {
		name      string
		channelID int64
		messageID int64
		want      string
	}{
		{name: "private channel", channelID: -1001234567890, messageID: 50, want: "https://t.me/c/1234567890/50"},
		{name: "short private channel", channelID: -100111, messageID: 5, want: "https://t.me/c/111/5"},
		{name: "id without -100 prefix", channelID: 42, messageID: 7, want: "https://t.me/c/42/7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MessageLink(tt.channelID, tt.messageID); got != tt.want {
				t.Errorf("MessageLink(%d, %d) = %q, want %q", tt.channelID, tt.messageID, got, tt.want)
			}
		})
	}
}

func TestParseMessageLink(t *testing.T) {
	tests := []struct {
		name        string
		link        string
		wantChannel int64
		wantMessage int64
		wantOK      bool
	}{
		{name: "https link", link: "https://t.me/c/1234567890/50", wantChannel: -1001234567890, wantMessage: 50, wantOK: true},
		{name: "bare link", link: "t.me/c/111/5", wantChannel: -100111, wantMessage: 5, wantOK: true},
		{name: "surrounding whitespace", link: "  https://t.me/c/111/5 ", wantChannel: -100111, wantMessage: 5, wantOK: true},
		{name: "public channel link", link: "https://t.me/somechannel/5", wantOK: false},
		{name: "not a link", link: "50", wantOK: false},
		{name: "empty", link: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			channel, message, ok := ParseMessageLink(tt.link)
			if ok != tt.wantOK {
				t.Fatalf("ParseMessageLink(%q) ok = %v, want %v", tt.link, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if channel != tt.wantChannel || message != tt.wantMessage {
				t.Errorf("ParseMessageLink(%q) = %d/%d, want %d/%d", tt.link, channel, message, tt.wantChannel, tt.wantMessage)
			}
		})
	}
}

func TestMessageFilter(t *testing.T) {
	tests := []struct {
		name       string
		filterType string
		hashtags   []string
		text       string
		fromBot    bool
		want       bool
	}{
		{name: "all accepts anything", filterType: FilterAll, text: "anything", want: true},
		{name: "all still skips bots", filterType: FilterAll, text: "anything", fromBot: true, want: false},
		{name: "hashtag match", filterType: FilterHashtag, hashtags: []string{"#ride"}, text: "Saturday #ride to the hills", want: true},
		{name: "hashtag case insensitive", filterType: FilterHashtag, hashtags: []string{"#Ride"}, text: "saturday #RIDE", want: true},
		{name: "hashtag missing", filterType: FilterHashtag, hashtags: []string{"#ride"}, text: "no tags here", want: false},
		{name: "any of several hashtags", filterType: FilterHashtag, hashtags: []string{"#ride", "#trip"}, text: "#trip tomorrow", want: true},
		{name: "unknown filter rejects", filterType: "bogus", text: "#ride", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewMessageFilter(tt.filterType, tt.hashtags)
			if got := f.ShouldProcess(tt.text, tt.fromBot); got != tt.want {
				t.Errorf("ShouldProcess(%q, fromBot=%v) = %v, want %v", tt.text, tt.fromBot, got, tt.want)
			}
		})
	}
}

func TestExtractHashtags(t *testing.T) {
	got := ExtractHashtags("Big #ride on Sunday #mtb, bring lights")
	if len(got) != 2 || got[0] != "#ride" || got[1] != "#mtb," {
		t.Errorf("ExtractHashtags = %v", got)
	}
	if got := ExtractHashtags("no tags"); got != nil {
		t.Errorf("ExtractHashtags with no tags = %v, want nil", got)
	}
}
