package registration

import (
	"sync"
	"time"
)

// albumSet tracks album groups whose registration is currently being
// created, so the burst of messages an album arrives as produces a single
// card. Entries are time-bounded: a marker left behind by a crashed create
// expires instead of blocking the album forever.
type albumSet struct {
	mu         sync.Mutex
	inProgress map[string]time.Time
	ttl        time.Duration
}

func newAlbumSet(ttl time.Duration) *albumSet {
	return &albumSet{
		inProgress: make(map[string]time.Time),
		ttl:        ttl,
	}
}

// begin marks an album as in progress. Returns false when another create for
// the same album is already running and its marker has not expired.
func (s *albumSet) begin(albumGroupID string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if started, ok := s.inProgress[albumGroupID]; ok && now.Sub(started) < s.ttl {
		return false
	}
	s.inProgress[albumGroupID] = now
	return true
}

// end clears the in-progress marker. Callers must invoke it on every exit
// path, success or failure.
func (s *albumSet) end(albumGroupID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inProgress, albumGroupID)
}

// sweep drops expired markers and returns how many were removed.
func (s *albumSet) sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, started := range s.inProgress {
		if now.Sub(started) >= s.ttl {
			delete(s.inProgress, id)
			removed++
		}
	}
	return removed
}
