package memstore

import (
	"context"
	"sync"

	"github.com/cognicore/modgrammar/pkg/modgrammar/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu     sync.RWMutex
	stats  map[store.GroupKey]store.Stats
	runs   []store.Run
	groups map[string][]store.GroupRecord
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		stats:  make(map[store.GroupKey]store.Stats),
		groups: make(map[string][]store.GroupRecord),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// GetStats returns the stats stored for key.
func (s *Store) GetStats(ctx context.Context, key store.GroupKey) (store.Stats, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.stats[key]
	if !ok {
		return store.Stats{}, false, nil
	}
	return st.Clone(), true, nil
}

// AllStats returns a copy of every stored stats entry.
func (s *Store) AllStats(ctx context.Context) (map[store.GroupKey]store.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[store.GroupKey]store.Stats, len(s.stats))
	for k, v := range s.stats {
		out[k] = v.Clone()
	}
	return out, nil
}

// UpsertStats replaces the stats for key.
func (s *Store) UpsertStats(ctx context.Context, key store.GroupKey, st store.Stats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st.Search = store.StripSearchResult(st.Search)
	s.stats[key] = st.Clone()
	return nil
}

// SaveRun records a run and its groups.
func (s *Store) SaveRun(ctx context.Context, run store.Run, groups []store.GroupRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs = append(s.runs, run)
	s.groups[run.ID] = copyGroups(groups)
	return nil
}

// LatestRun returns the most recently saved run.
func (s *Store) LatestRun(ctx context.Context) (store.Run, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.runs) == 0 {
		return store.Run{}, false, nil
	}
	return s.runs[len(s.runs)-1], true, nil
}

// GetGroups returns the groups of a run in rank order.
func (s *Store) GetGroups(ctx context.Context, runID string) ([]store.GroupRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return copyGroups(s.groups[runID]), nil
}

func copyGroups(in []store.GroupRecord) []store.GroupRecord {
	if in == nil {
		return nil
	}
	out := make([]store.GroupRecord, len(in))
	for i, g := range in {
		g.Mods = append([]store.ModRef(nil), g.Mods...)
		out[i] = g
	}
	return out
}
