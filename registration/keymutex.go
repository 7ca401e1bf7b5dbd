package registration

import (
	"sync"
)

// postKey identifies one channel post.
type postKey struct {
	channelID       int64
	sourceMessageID int64
}

// keyMutex serializes operations on the same post key. Different keys
// proceed in parallel. Entries are reference counted and removed when the
// last holder unlocks, so the map does not grow with post history.
type keyMutex struct {
	mu      sync.Mutex
	entries map[postKey]*keyEntry
}

type keyEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyMutex() *keyMutex {
	return &keyMutex{entries: make(map[postKey]*keyEntry)}
}

func (k *keyMutex) lock(key postKey) {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &keyEntry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
}

func (k *keyMutex) unlock(key postKey) {
	k.mu.Lock()
	e := k.entries[key]
	e.refs--
	if e.refs == 0 {
		delete(k.entries, key)
	}
	k.mu.Unlock()

	e.mu.Unlock()
}
