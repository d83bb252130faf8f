package session

import (
	"context"
	"sync"
	"time"

	"github.com/metaquery-ai/metaquery-engine/pkg/apperrors"
)

type memoryEntry struct {
	record    *Record
	expiresAt time.Time
}

// MemoryStore is the in-process Store used when Redis is not configured.
// Expired entries are purged lazily on access.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration

	// now is swappable for expiry tests.
	now func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a MemoryStore. A non-positive TTL means records
// never expire.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Put implements Store.
func (s *MemoryStore) Put(ctx context.Context, record *Record) error {
	var expiresAt time.Time
	if s.ttl > 0 {
		expiresAt = s.now().Add(s.ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[record.ID] = memoryEntry{record: record, expiresAt: expiresAt}
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, id string) (*Record, error) {
	s.mu.RLock()
	entry, ok := s.entries[id]
	s.mu.RUnlock()

	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	if s.expired(entry) {
		s.mu.Lock()
		delete(s.entries, id)
		s.mu.Unlock()
		return nil, apperrors.ErrSessionNotFound
	}
	return entry.record, nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return apperrors.ErrSessionNotFound
	}
	delete(s.entries, id)
	return nil
}

// List implements Store.
func (s *MemoryStore) List(ctx context.Context) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	listing := make([]Entry, 0, len(s.entries))
	for id, entry := range s.entries {
		if s.expired(entry) {
			delete(s.entries, id)
			continue
		}
		listing = append(listing, Entry{ID: id, CreatedAt: entry.record.CreatedAt})
	}
	return listing, nil
}

func (s *MemoryStore) expired(entry memoryEntry) bool {
	return !entry.expiresAt.IsZero() && s.now().After(entry.expiresAt)
}
