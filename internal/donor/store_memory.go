package donor

import (
	"context"
	"sort"
	"strings"
	"sync"

	"lifelink/pkg/domain"
	"lifelink/pkg/platform/sentinel"
)

// InMemoryStore keeps donor profiles in process memory. It intentionally
// favors clarity over performance and doubles as the test double for services.
type InMemoryStore struct {
	mu     sync.RWMutex
	donors map[string]*Donor
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{donors: make(map[string]*Donor)}
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (*Donor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if d, ok := s.donors[id]; ok {
		return cloneDonor(d), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) Upsert(_ context.Context, incoming *Donor, authorize func(existing *Donor) error) (*Donor, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.donors[incoming.ID]
	stored := cloneDonor(incoming)
	if ok {
		if authorize != nil {
			if err := authorize(cloneDonor(existing)); err != nil {
				return nil, false, err
			}
		}
		stored.MergeExisting(existing)
	}
	s.donors[stored.ID] = stored
	return cloneDonor(stored), !ok, nil
}

func (s *InMemoryStore) Execute(_ context.Context, id string, validate func(*Donor) error, mutate func(*Donor)) (*Donor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.donors[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if validate != nil {
		if err := validate(cloneDonor(d)); err != nil {
			return nil, err
		}
	}
	updated := cloneDonor(d)
	mutate(updated)
	s.donors[id] = updated
	return cloneDonor(updated), nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*Donor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(*Donor) bool { return true }), nil
}

func (s *InMemoryStore) ListByBloodType(_ context.Context, bt domain.BloodType) ([]*Donor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(d *Donor) bool { return d.BloodType == bt }), nil
}

func (s *InMemoryStore) ListByAvailability(_ context.Context, available bool) ([]*Donor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(d *Donor) bool { return d.Availability == available }), nil
}

// collect copies matching donors sorted by name ascending. Callers must hold
// at least the read lock.
func (s *InMemoryStore) collect(match func(*Donor) bool) []*Donor {
	var out []*Donor
	for _, d := range s.donors {
		if match(d) {
			out = append(out, cloneDonor(d))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

func cloneDonor(d *Donor) *Donor {
	c := *d
	c.DonationHistory = append([]string(nil), d.DonationHistory...)
	if d.LastDonationAt != nil {
		t := *d.LastDonationAt
		c.LastDonationAt = &t
	}
	return &c
}
