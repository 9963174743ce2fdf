// Package store provides the in-memory data layer for the demnews client.
//
// Store is the single source of truth for entity content: a normalized
// map from news item id to the canonical entity. The two feed scopes
// reference entities here by id and never copy them, so an update to an
// entity is visible in both feeds at once.
//
// # Thread Safety
//
// Store is safe for concurrent use. Every accessor returns deep copies;
// callers never hold a pointer into the store's own state. Upsert,
// ApplyOptimistic and Rollback are atomic with respect to each other.
// Sequences of operations (read-modify-write across calls) require the
// serialization the engine layer provides per entity.
package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Dem-News/demnews/internal/news"
)

// ErrNotFound is returned when an id has no stored entity.
var ErrNotFound = errors.New("store: item not found")

// ErrStaleVersion is returned when a patch carries an older version
// than the stored entity. The patch is not applied; callers treat this
// as a version conflict.
var ErrStaleVersion = errors.New("store: stale version")

// Store is the normalized entity cache.
type Store struct {
	mu    sync.RWMutex
	items map[string]*news.NewsItem
}

// New creates an empty Store.
func New() *Store {
	return &Store{items: make(map[string]*news.NewsItem)}
}

// Get returns a deep copy of the entity, or ErrNotFound.
func (s *Store) Get(id string) (*news.NewsItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return item.Clone(), nil
}

// Len returns the number of stored entities.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Upsert merges a (possibly partial) server payload into the stored
// entity and returns a copy of the result.
//
// Scalar fields present in the patch overwrite the stored value, except
// author and createdAt which are write-once. Set-valued fields are
// replaced wholesale only when the patch's kind is authoritative for
// them; a like response never disturbs verifications and vice versa.
//
// A patch whose version is older than the stored one is rejected with
// ErrStaleVersion and nothing is applied. If no entity exists yet the
// patch is materialized as a full entity; callers only do that for
// known-complete payloads (initial fetch, create, conflict refetch).
func (s *Store) Upsert(p Patch) (*news.NewsItem, error) {
	if p.ID == "" {
		return nil, errors.New("store: patch without id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.items[p.ID]
	if !ok {
		item := p.materialize()
		s.items[p.ID] = item
		return item.Clone(), nil
	}

	if p.Version != nil && *p.Version < existing.Version {
		return nil, fmt.Errorf("%w: %s has %d, patch has %d",
			ErrStaleVersion, p.ID, existing.Version, *p.Version)
	}

	merged := existing.Clone()
	p.mergeInto(merged)
	s.items[p.ID] = merged
	return merged.Clone(), nil
}

// ApplyOptimistic clones the current entity, applies mutate to the
// clone, and stores it. It returns deep copies of the previous and new
// states so the caller can roll back if the remote call fails.
func (s *Store) ApplyOptimistic(id string, mutate func(*news.NewsItem)) (prev, next *news.NewsItem, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.items[id]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	prev = existing.Clone()
	updated := existing.Clone()
	mutate(updated)
	s.items[id] = updated
	return prev, updated.Clone(), nil
}

// Rollback restores a prior snapshot verbatim. Used when a mutation
// fails non-recoverably; the entity ends byte-for-byte where it was
// before the user's action.
func (s *Store) Rollback(id string, snapshot *news.NewsItem) {
	if snapshot == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[id] = snapshot.Clone()
}
