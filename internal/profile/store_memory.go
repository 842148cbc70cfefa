package profile

import (
	"context"
	"sync"

	"lifelink/pkg/platform/sentinel"
	"lifelink/pkg/requestcontext"
)

// InMemoryStore keeps user profiles in process memory.
type InMemoryStore struct {
	mu       sync.RWMutex
	profiles map[requestcontext.Principal]UserProfile
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{profiles: make(map[requestcontext.Principal]UserProfile)}
}

func (s *InMemoryStore) Save(_ context.Context, p *UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.Principal] = *p
	return nil
}

func (s *InMemoryStore) FindByPrincipal(_ context.Context, principal requestcontext.Principal) (*UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[principal]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &p, nil
}
