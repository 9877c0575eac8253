// Package flash holds validation feedback and import summaries for the short
// window between a write request and the next view render. Entries are keyed,
// time-boxed and read once; there is no ambient global slot.
package flash

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultTTL bounds single-record validation feedback.
	DefaultTTL = 60 * time.Second
	// ImportTTL bounds import summaries, which a user reads more slowly.
	ImportTTL = 120 * time.Second
)

type entry struct {
	messages  []string
	expiresAt time.Time
}

// Store is an in-memory, mutex-guarded message store. Expired entries are
// dropped lazily on access and swept opportunistically on writes.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{entries: make(map[string]entry)}
}

// Put stores messages under a fresh key and returns that key.
func (s *Store) Put(messages []string, ttl time.Duration) string {
	key := uuid.NewString()
	s.Set(key, messages, ttl)
	return key
}

// Set stores messages under the given key, replacing any previous entry.
func (s *Store) Set(key string, messages []string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	s.entries[key] = entry{
		messages:  append([]string(nil), messages...),
		expiresAt: time.Now().Add(ttl),
	}
}

// Pop returns the messages stored under key and removes them. The second
// return value is false when the key is unknown or its entry expired.
func (s *Store) Pop(key string) ([]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	delete(s.entries, key)
	if time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.messages, true
}

func (s *Store) sweepLocked() {
	now := time.Now()
	for key, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, key)
		}
	}
}
