package request

import (
	"context"
	"sort"
	"sync"

	"lifelink/pkg/domain"
	"lifelink/pkg/platform/sentinel"
)

// InMemoryStore keeps blood requests in process memory. It intentionally
// favors clarity over performance and doubles as the test double for services.
type InMemoryStore struct {
	mu       sync.RWMutex
	requests map[string]*BloodRequest
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{requests: make(map[string]*BloodRequest)}
}

func (s *InMemoryStore) Create(_ context.Context, r *BloodRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[r.ID]; ok {
		return sentinel.ErrAlreadyExists
	}
	s.requests[r.ID] = cloneRequest(r)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (*BloodRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.requests[id]; ok {
		return cloneRequest(r), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) Execute(_ context.Context, id string, validate func(*BloodRequest) error, mutate func(*BloodRequest)) (*BloodRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.requests[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if validate != nil {
		if err := validate(cloneRequest(r)); err != nil {
			return nil, err
		}
	}
	updated := cloneRequest(r)
	mutate(updated)
	s.requests[id] = updated
	return cloneRequest(updated), nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*BloodRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(*BloodRequest) bool { return true }), nil
}

func (s *InMemoryStore) ListByStatus(_ context.Context, status domain.RequestStatus) ([]*BloodRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(r *BloodRequest) bool { return r.Status == status }), nil
}

// collect copies matching requests, newest first. Callers must hold at least
// the read lock.
func (s *InMemoryStore) collect(match func(*BloodRequest) bool) []*BloodRequest {
	var out []*BloodRequest
	for _, r := range s.requests {
		if match(r) {
			out = append(out, cloneRequest(r))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func cloneRequest(r *BloodRequest) *BloodRequest {
	c := *r
	return &c
}
