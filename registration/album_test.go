package registration

import (
	"sync"
	"testing"
	"time"
)

func TestAlbumSetBeginEnd(t *testing.T) {
	s := newAlbumSet(30 * time.Second)
	now := time.Now()

	if !s.begin("album-1", now) {
		t.Fatal("first begin should win")
	}
	if s.begin("album-1", now.Add(time.Second)) {
		t.Error("concurrent begin for the same album should lose")
	}
	if !s.begin("album-2", now) {
		t.Error("a different album should not be blocked")
	}

	s.end("album-1")
	if !s.begin("album-1", now.Add(2*time.Second)) {
		t.Error("begin after end should win again")
	}
}

func TestAlbumSetMarkerExpires(t *testing.T) {
	s := newAlbumSet(30 * time.Second)
	now := time.Now()

	// A create that crashed without calling end leaves a marker behind.
	if !s.begin("album-1", now) {
		t.Fatal("first begin should win")
	}
	if s.begin("album-1", now.Add(29*time.Second)) {
		t.Error("marker still live inside the ttl")
	}
	if !s.begin("album-1", now.Add(31*time.Second)) {
		t.Error("expired marker should not block the album")
	}
}

func TestAlbumSetSweep(t *testing.T) {
	s := newAlbumSet(30 * time.Second)
	now := time.Now()

	s.begin("old", now)
	s.begin("fresh", now.Add(20*time.Second))

	if removed := s.sweep(now.Add(31 * time.Second)); removed != 1 {
		t.Errorf("sweep removed %d markers, want 1", removed)
	}
	if s.begin("fresh", now.Add(32*time.Second)) {
		t.Error("sweep dropped a marker that had not expired")
	}
}

func TestKeyMutexSerializesSameKey(t *testing.T) {
	km := newKeyMutex()
	key := postKey{channelID: -100111, sourceMessageID: 50}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		active  int
		maxSeen int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			km.lock(key)
			defer km.unlock(key)

			mu.Lock()
			active++
			if active > maxSeen {
				maxSeen = active
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Errorf("holders of the same key overlapped: max %d", maxSeen)
	}
	if len(km.entries) != 0 {
		t.Errorf("entries leaked after all unlocks: %d", len(km.entries))
	}
}
