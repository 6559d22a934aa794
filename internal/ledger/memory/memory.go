package memory

import (
	"context"
	"sync"

	"factoring/internal/core"
	"factoring/internal/ledger"
)

// Store is an in-memory RecordStore. It backs the default data backend and
// doubles as the test store.
type Store struct {
	mu    sync.Mutex
	items []core.Record
	keys  map[string]struct{}
}

func New() *Store {
	return &Store{keys: make(map[string]struct{})}
}

func (s *Store) InsertIfAbsent(_ context.Context, r core.Record) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.keys[r.Key()]; exists {
		return false, nil
	}
	s.keys[r.Key()] = struct{}{}
	s.items = append(s.items, r)
	return true, nil
}

func (s *Store) Query(_ context.Context, f ledger.Filter) ([]core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Record
	for _, r := range s.items {
		if f.RevenueSource != "" && r.RevenueSource != f.RevenueSource {
			continue
		}
		if f.Customer != "" && r.Customer != f.Customer {
			continue
		}
		if r.Date.Before(f.From) || r.Date.After(f.To) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *Store) ListAll(_ context.Context) ([]core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Record, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *Store) RevenueSources(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := map[string]struct{}{}
	var out []string
	for _, r := range s.items {
		if _, ok := seen[r.RevenueSource]; ok {
			continue
		}
		seen[r.RevenueSource] = struct{}{}
		out = append(out, r.RevenueSource)
	}
	return out, nil
}

func (s *Store) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.keys = make(map[string]struct{})
	return nil
}
