package handlers

import (
	"strings"
	"testing"

	"ride-bot/models"
)

func TestParseCallback(t *testing.T) {
	tests := []struct {
		name       string
		data       string
		wantAction string
		wantStatus models.VoteStatus
		wantRef    callbackRef
		wantErr    bool
	}{
		{
			name:       "vote join",
			data:       "v:join:-100111:50",
			wantAction: "v",
			wantStatus: models.StatusJoin,
			wantRef:    callbackRef{channelID: -100111, sourceMessageID: 50},
		},
		{
			name:       "vote decline",
			data:       "v:decline:-100222:7",
			wantAction: "v",
			wantStatus: models.StatusDecline,
			wantRef:    callbackRef{channelID: -100222, sourceMessageID: 7},
		},
		{
			name:       "voters",
			data:       "voters:-100111:50",
			wantAction: "voters",
			wantRef:    callbackRef{channelID: -100111, sourceMessageID: 50},
		},
		{
			name:       "refresh",
			data:       "refresh:-100111:50",
			wantAction: "refresh",
			wantRef:    callbackRef{channelID: -100111, sourceMessageID: 50},
		},
		{name: "unknown action", data: "nope:-100111:50", wantErr: true},
		{name: "bad status", data: "v:perhaps:-100111:50", wantErr: true},
		{name: "missing status", data: "v:-100111:50", wantErr: true},
		{name: "extra parts", data: "refresh:-100111:50:junk", wantErr: true},
		{name: "non numeric channel", data: "voters:abc:50", wantErr: true},
		{name: "non numeric message", data: "voters:-100111:abc", wantErr: true},
		{name: "empty", data: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, status, ref, err := parseCallback(tt.data)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseCallback(%q) succeeded, want error", tt.data)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseCallback(%q): %v", tt.data, err)
			}
			if action != tt.wantAction || status != tt.wantStatus || ref != tt.wantRef {
				t.Errorf("parseCallback(%q) = %q, %q, %+v", tt.data, action, status, ref)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 200); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}

	long := strings.Repeat("участник\n", 40)
	got := truncate(long, 200)
	if runes := []rune(got); len(runes) > 200 {
		t.Errorf("truncated length = %d runes, want <= 200", len(runes))
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("truncated text has no ellipsis: %q", got)
	}
}
