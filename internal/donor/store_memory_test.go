package donor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"lifelink/pkg/domain"
	"lifelink/pkg/platform/sentinel"
)

type DonorStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func (s *DonorStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
}

func TestDonorStoreSuite(t *testing.T) {
	suite.Run(t, new(DonorStoreSuite))
}

func (s *DonorStoreSuite) newDonor(id, name string, bt domain.BloodType) *Donor {
	d, err := New(id, name, bt, "Springfield", "555-0100",
		HealthChecklist{NoChronicIllness: true, NoRecentSurgery: true, EligibleToDonate: true},
		true, "owner-1")
	s.Require().NoError(err)
	return d
}

func (s *DonorStoreSuite) TestUpsertCreatesAndFinds() {
	d := s.newDonor("d1", "Ana", domain.BloodTypeOPositive)
	stored, created, err := s.store.Upsert(s.ctx, d, nil)
	s.Require().NoError(err)
	s.True(created)
	s.Equal("Ana", stored.Name)

	found, err := s.store.FindByID(s.ctx, "d1")
	s.Require().NoError(err)
	s.Equal(domain.BloodTypeOPositive, found.BloodType)

	_, err = s.store.FindByID(s.ctx, "missing")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *DonorStoreSuite) TestUpsertPreservesOwnerAndHistory() {
	d := s.newDonor("d1", "Ana", domain.BloodTypeOPositive)
	d.DonationHistory = []string{"ref-1"}
	_, _, err := s.store.Upsert(s.ctx, d, nil)
	s.Require().NoError(err)

	update := s.newDonor("d1", "Ana Maria", domain.BloodTypeOPositive)
	update.Owner = "someone-else"
	stored, created, err := s.store.Upsert(s.ctx, update, nil)
	s.Require().NoError(err)
	s.False(created)
	s.Equal("Ana Maria", stored.Name)
	s.Equal("owner-1", stored.Owner.String(), "owner is immutable across upserts")
	s.Equal([]string{"ref-1"}, stored.DonationHistory, "donation history survives upserts")
}

func (s *DonorStoreSuite) TestUpsertAuthorizeFailureLeavesRecordUnchanged() {
	d := s.newDonor("d1", "Ana", domain.BloodTypeOPositive)
	_, _, err := s.store.Upsert(s.ctx, d, nil)
	s.Require().NoError(err)

	update := s.newDonor("d1", "Mallory", domain.BloodTypeABNegative)
	denied := errors.New("denied")
	_, _, err = s.store.Upsert(s.ctx, update, func(existing *Donor) error {
		s.Equal("Ana", existing.Name)
		return denied
	})
	s.Require().ErrorIs(err, denied)

	found, err := s.store.FindByID(s.ctx, "d1")
	s.Require().NoError(err)
	s.Equal("Ana", found.Name)
	s.Equal(domain.BloodTypeOPositive, found.BloodType)
}

func (s *DonorStoreSuite) TestExecuteValidatesBeforeMutating() {
	d := s.newDonor("d1", "Ana", domain.BloodTypeOPositive)
	_, _, err := s.store.Upsert(s.ctx, d, nil)
	s.Require().NoError(err)

	rejected := errors.New("rejected")
	_, err = s.store.Execute(s.ctx, "d1",
		func(*Donor) error { return rejected },
		func(d *Donor) { d.Availability = false },
	)
	s.Require().ErrorIs(err, rejected)

	found, err := s.store.FindByID(s.ctx, "d1")
	s.Require().NoError(err)
	s.True(found.Availability)

	updated, err := s.store.Execute(s.ctx, "d1", nil, func(d *Donor) { d.Availability = false })
	s.Require().NoError(err)
	s.False(updated.Availability)
}

func (s *DonorStoreSuite) TestListsAreSortedAndFiltered() {
	for _, spec := range []struct {
		id, name  string
		bt        domain.BloodType
		available bool
	}{
		{"d1", "zoe", domain.BloodTypeOPositive, true},
		{"d2", "Ana", domain.BloodTypeABNegative, false},
		{"d3", "ben", domain.BloodTypeOPositive, true},
	} {
		d := s.newDonor(spec.id, spec.name, spec.bt)
		d.Availability = spec.available
		_, _, err := s.store.Upsert(s.ctx, d, nil)
		s.Require().NoError(err)
	}

	all, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal([]string{"Ana", "ben", "zoe"}, []string{all[0].Name, all[1].Name, all[2].Name})

	oPos, err := s.store.ListByBloodType(s.ctx, domain.BloodTypeOPositive)
	s.Require().NoError(err)
	s.Len(oPos, 2)

	available, err := s.store.ListByAvailability(s.ctx, true)
	s.Require().NoError(err)
	s.Len(available, 2)
}
