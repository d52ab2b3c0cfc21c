// Package memory provides an in-memory grant store for tests and
// single-process deployments.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/xraph/verdict"
	"github.com/xraph/verdict/grantstore"
	"github.com/xraph/verdict/id"
)

// Compile-time interface check.
var _ grantstore.Store = (*Store)(nil)

// Store is an in-memory implementation of the grant store. Records keep
// insertion order so listing matches the creation-time ordering of the
// database backends.
type Store struct {
	mu      sync.RWMutex
	records map[string]*grantstore.Record
	order   []string
}

// New creates an empty in-memory grant store.
func New() *Store {
	return &Store{
		records: make(map[string]*grantstore.Record),
	}
}

// Add stores a grant under a freshly generated ID.
func (s *Store) Add(_ context.Context, grant verdict.Grant) (*grantstore.Record, error) {
	rec := &grantstore.Record{
		ID:        id.NewGrantID(),
		Grant:     grant,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := rec.ID.String()
	s.records[key] = rec
	s.order = append(s.order, key)

	clone := *rec
	return &clone, nil
}

// Get returns the record for grantID.
func (s *Store) Get(_ context.Context, grantID id.GrantID) (*grantstore.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[grantID.String()]
	if !ok {
		return nil, fmt.Errorf("grant %s: %w", grantID, grantstore.ErrNotFound)
	}

	clone := *rec
	return &clone, nil
}

// Delete removes the record for grantID.
func (s *Store) Delete(_ context.Context, grantID id.GrantID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := grantID.String()
	if _, ok := s.records[key]; !ok {
		return fmt.Errorf("grant %s: %w", grantID, grantstore.ErrNotFound)
	}
	delete(s.records, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	return nil
}

// List returns records matching the filter in insertion order.
func (s *Store) List(_ context.Context, filter *grantstore.ListFilter) ([]*grantstore.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.match(filter)

	offset, limit := 0, len(matched)
	if filter != nil {
		if filter.Offset > 0 {
			offset = filter.Offset
		}
		if filter.Limit > 0 {
			limit = filter.Limit
		}
	}
	if offset >= len(matched) {
		return []*grantstore.Record{}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}

	result := make([]*grantstore.Record, 0, end-offset)
	for _, rec := range matched[offset:end] {
		clone := *rec
		result = append(result, &clone)
	}
	return result, nil
}

// Count returns the number of records matching the filter.
func (s *Store) Count(_ context.Context, filter *grantstore.ListFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.match(filter))), nil
}

// match applies Effect and Action filtering. Callers hold the lock.
func (s *Store) match(filter *grantstore.ListFilter) []*grantstore.Record {
	matched := make([]*grantstore.Record, 0, len(s.order))
	for _, key := range s.order {
		rec := s.records[key]
		if filter != nil {
			if filter.Effect != "" && rec.Grant.Effect != filter.Effect {
				continue
			}
			if filter.Action != "" && !grantstore.MatchesAction(rec.Grant, filter.Action) {
				continue
			}
		}
		matched = append(matched, rec)
	}
	return matched
}

// Migrate is a no-op for the memory store.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping is a no-op for the memory store.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op for the memory store.
func (s *Store) Close() error { return nil }
