package interest

import (
	"context"
	"sort"
	"sync"

	"lifelink/pkg/platform/sentinel"
)

// InMemoryStore keeps the interest ledger in process memory. The single mutex
// makes check-and-insert atomic, matching the unique-constraint semantics of
// the PostgreSQL store.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]Interest
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]Interest)}
}

func (s *InMemoryStore) InsertIfAbsent(_ context.Context, rec Interest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[rec.Key()]; ok {
		return sentinel.ErrAlreadyExists
	}
	s.records[rec.Key()] = rec
	return nil
}

func (s *InMemoryStore) Exists(_ context.Context, requestID, donorID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[Interest{RequestID: requestID, DonorID: donorID}.Key()]
	return ok, nil
}

func (s *InMemoryStore) ListByRequest(_ context.Context, requestID string) ([]Interest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Interest
	for _, rec := range s.records {
		if rec.RequestID == requestID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RequestID != out[j].RequestID {
			return out[i].RequestID < out[j].RequestID
		}
		return out[i].DonorID < out[j].DonorID
	})
	return out, nil
}

func (s *InMemoryStore) CountByRequest(_ context.Context, requestID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, rec := range s.records {
		if rec.RequestID == requestID {
			count++
		}
	}
	return count, nil
}
