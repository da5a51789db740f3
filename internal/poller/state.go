package poller

import "sync"

// Entry is the remembered observation for one watched block.
type Entry struct {
	// Signature is the last source-file identity seen on the block.
	Signature string
	// Baselined reports whether the block has completed its first scan.
	// The first observation only records the signature; imports fire on
	// subsequent changes.
	Baselined bool
}

// Store keeps per-block observation state across poll ticks.
type Store interface {
	// Get returns the entry for a block key and whether one exists.
	Get(key string) (Entry, bool)
	// Put records the entry for a block key.
	Put(key string, entry Entry)
	// Clear forgets the signature for a block key while keeping the block
	// baselined, so the next tick re-dispatches the same source file.
	Clear(key string)
	// Evict drops every entry whose key is absent from live.
	Evict(live map[string]struct{})
}

type memoryStore struct {
	mu      sync.Mutex
	entries map[string]Entry
}

// NewMemoryStore builds the in-process state store used by the poller.
func NewMemoryStore() Store {
	return &memoryStore{entries: map[string]Entry{}}
}

func (s *memoryStore) Get(key string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	return entry, ok
}

func (s *memoryStore) Put(key string, entry Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry
}

func (s *memoryStore) Clear(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok {
		return
	}
	entry.Signature = ""
	s.entries[key] = entry
}

func (s *memoryStore) Evict(live map[string]struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.entries {
		if _, ok := live[key]; !ok {
			delete(s.entries, key)
		}
	}
}
