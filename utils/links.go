package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MessageLink builds a t.me link for a message in a private channel. Private
// channel ids carry a -100 prefix that the link format drops.
func MessageLink(channelID, messageID int64) string {
	s := strconv.FormatInt(channelID, 10)
	if strings.HasPrefix(s, "-100") {
		s = s[4:]
	}
	return fmt.Sprintf("https://t.me/c/%s/%d", s, messageID)
}

var messageLinkRe = regexp.MustCompile(`^(?:https?://)?t\.me/c/(\d+)/(\d+)$`)

// ParseMessageLink extracts (channelID, messageID) from a t.me/c/... link.
// The returned channel id carries the -100 prefix back. Returns ok=false for
// anything that is not such a link.
func ParseMessageLink(link string) (channelID, messageID int64, ok bool) {
	m := messageLinkRe.FindStringSubmatch(strings.TrimSpace(link))
	if m == nil {
		return 0, 0, false
	}

	rawChannel, err := strconv.ParseInt("-100"+m[1], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	msg, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return rawChannel, msg, true
}
