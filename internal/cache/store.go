package cache

import "time"

// entry is one cached value with the time it was written and how long it
// stays fresh.
type entry[T any] struct {
	value     T
	timestamp time.Time
	ttl       time.Duration
	seq       uint64
}

func (e entry[T]) expired(now time.Time) bool {
	return now.Sub(e.timestamp) > e.ttl
}

// store is a size-bounded map that evicts the oldest entries first. It is
// not safe for concurrent use; Manager serializes access.
type store[T any] struct {
	entries    map[string]entry[T]
	maxEntries int
	seq        uint64
}

func newStore[T any](maxEntries int) *store[T] {
	return &store[T]{
		entries:    make(map[string]entry[T]),
		maxEntries: maxEntries,
	}
}

func (s *store[T]) get(key string) (entry[T], bool) {
	e, ok := s.entries[key]
	return e, ok
}

// set replaces the entry for key and evicts by age until the store is back
// at capacity.
func (s *store[T]) set(key string, value T, timestamp time.Time, ttl time.Duration) {
	s.seq++
	s.entries[key] = entry[T]{
		value:     value,
		timestamp: timestamp,
		ttl:       ttl,
		seq:       s.seq,
	}
	for len(s.entries) > s.maxEntries {
		s.evictOldest()
	}
}

func (s *store[T]) evictOldest() {
	var (
		oldestKey string
		oldest    entry[T]
		found     bool
	)
	for k, e := range s.entries {
		if !found || e.timestamp.Before(oldest.timestamp) ||
			(e.timestamp.Equal(oldest.timestamp) && e.seq < oldest.seq) {
			oldestKey, oldest, found = k, e, true
		}
	}
	if found {
		delete(s.entries, oldestKey)
	}
}

// removeExpired deletes every entry past its TTL and returns how many went.
func (s *store[T]) removeExpired(now time.Time) int {
	removed := 0
	for k, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}

func (s *store[T]) len() int {
	return len(s.entries)
}

func (s *store[T]) clear() {
	s.entries = make(map[string]entry[T])
}
