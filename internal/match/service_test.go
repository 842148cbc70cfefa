package match

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifelink/internal/donor"
	"lifelink/internal/events"
	"lifelink/internal/interest"
	"lifelink/internal/policy"
	"lifelink/internal/request"
	"lifelink/pkg/domain"
	dErrors "lifelink/pkg/domain-errors"
	"lifelink/pkg/requestcontext"
	"lifelink/pkg/testutil"
)

type fixture struct {
	svc       *Service
	donors    *donor.InMemoryStore
	requests  *request.InMemoryStore
	interests *interest.InMemoryStore
	sink      *events.MemorySink
	eval      *policy.Evaluator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		donors:    donor.NewInMemoryStore(),
		requests:  request.NewInMemoryStore(),
		interests: interest.NewInMemoryStore(),
		sink:      events.NewMemorySink(),
	}
	f.eval = policy.NewEvaluator(policy.NewInMemoryDirectory())
	f.svc = NewService(f.requests, f.donors, f.interests, f.eval, WithEvents(f.sink))
	return f
}

type donorSpec struct {
	id        string
	owner     string
	bloodType domain.BloodType
	location  string
	available bool
	eligible  bool
}

func (f *fixture) addDonor(t *testing.T, spec donorSpec) {
	t.Helper()
	d, err := donor.New(spec.id, "Donor "+spec.id, spec.bloodType, spec.location, "555-"+spec.id,
		donor.HealthChecklist{EligibleToDonate: spec.eligible}, spec.available,
		requestcontext.Principal(spec.owner))
	require.NoError(t, err)
	_, _, err = f.donors.Upsert(context.Background(), d, nil)
	require.NoError(t, err)
}

func (f *fixture) addRequest(t *testing.T, id, owner string, bt domain.BloodType, status domain.RequestStatus) {
	t.Helper()
	r, err := request.New(id, "Recipient", bt, "Springfield",
		domain.UrgencyUrgent, "555-0200", 1, requestcontext.Principal(owner), testutil.FixedTime)
	require.NoError(t, err)
	r.Status = status
	require.NoError(t, f.requests.Create(context.Background(), r))
}

func (f *fixture) addInterest(t *testing.T, requestID, donorID string) {
	t.Helper()
	rec, err := interest.New(requestID, donorID, testutil.FixedTime)
	require.NoError(t, err)
	require.NoError(t, f.interests.InsertIfAbsent(context.Background(), rec))
}

func TestConfirm_DisclosesContactAndTransitions(t *testing.T) {
	f := newFixture(t)
	f.addDonor(t, donorSpec{id: "d1", owner: "alice", bloodType: domain.BloodTypeONegative, location: "Springfield", available: true, eligible: true})
	f.addRequest(t, "r1", "requester", domain.BloodTypeAPositive, domain.RequestStatusDonorContacted)
	f.addInterest(t, "r1", "d1")

	contact, err := f.svc.Confirm(testutil.AuthedContext("requester"), "r1", "d1")
	require.NoError(t, err)
	assert.Equal(t, "d1", contact.Donor.DonorID)
	assert.Equal(t, "555-d1", contact.ContactInfo)

	r, err := f.requests.FindByID(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusMatched, r.Status)

	require.Len(t, f.sink.ByType(events.TypeMatchConfirmed), 1)
}

func TestConfirm_OwnerOnlyEvenForAdmins(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.eval.BootstrapCaller(context.Background(), "admin"))
	f.addDonor(t, donorSpec{id: "d1", owner: "alice", bloodType: domain.BloodTypeONegative, location: "Springfield", available: true, eligible: true})
	f.addRequest(t, "r1", "requester", domain.BloodTypeAPositive, domain.RequestStatusDonorContacted)
	f.addInterest(t, "r1", "d1")

	_, err := f.svc.Confirm(testutil.AuthedContext("admin"), "r1", "d1")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized), "contact disclosure has no admin override")

	_, err = f.svc.Confirm(testutil.AuthedContext("stranger"), "r1", "d1")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

	r, err := f.requests.FindByID(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusDonorContacted, r.Status, "denied confirmation must not transition")
}

func TestConfirm_RequiresInterest(t *testing.T) {
	f := newFixture(t)
	f.addDonor(t, donorSpec{id: "d1", owner: "alice", bloodType: domain.BloodTypeONegative, location: "Springfield", available: true, eligible: true})
	f.addRequest(t, "r1", "requester", domain.BloodTypeAPositive, domain.RequestStatusDonorContacted)

	_, err := f.svc.Confirm(testutil.AuthedContext("requester"), "r1", "d1")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState), "no interest record means no match")

	r, err := f.requests.FindByID(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusDonorContacted, r.Status)
}

func TestConfirm_IllegalStateAndMissingEntities(t *testing.T) {
	f := newFixture(t)
	f.addDonor(t, donorSpec{id: "d1", owner: "alice", bloodType: domain.BloodTypeONegative, location: "Springfield", available: true, eligible: true})
	f.addRequest(t, "r1", "requester", domain.BloodTypeAPositive, domain.RequestStatusFulfilled)
	f.addInterest(t, "r1", "d1")

	_, err := f.svc.Confirm(testutil.AuthedContext("requester"), "r1", "d1")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))

	_, err = f.svc.Confirm(testutil.AuthedContext("requester"), "missing", "d1")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = f.svc.Confirm(testutil.AuthedContext("requester"), "r1", "missing")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestOpenRequestsForDonor_ExactTypeOnly(t *testing.T) {
	f := newFixture(t)
	f.addDonor(t, donorSpec{id: "d1", owner: "alice", bloodType: domain.BloodTypeONegative, location: "Springfield", available: true, eligible: true})

	// Exact type, open, same location: shown.
	f.addRequest(t, "r1", "x", domain.BloodTypeONegative, domain.RequestStatusSearching)
	// Compatible but not exact: the dashboard hides it.
	f.addRequest(t, "r2", "x", domain.BloodTypeAPositive, domain.RequestStatusSearching)
	// Exact type but matched: no longer open.
	f.addRequest(t, "r3", "x", domain.BloodTypeONegative, domain.RequestStatusMatched)

	views, err := f.svc.OpenRequestsForDonor(testutil.AuthedContext("alice"), "d1")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "r1", views[0].ID)

	_, err = f.svc.OpenRequestsForDonor(testutil.AuthedContext("stranger"), "d1")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestNearbyDonorCount_ExactTypeProbe(t *testing.T) {
	f := newFixture(t)
	// The probe matches the exact type only; compatible types do not count.
	f.addDonor(t, donorSpec{id: "d1", owner: "a", bloodType: domain.BloodTypeAPositive, location: "Springfield", available: true, eligible: true})
	f.addDonor(t, donorSpec{id: "d2", owner: "b", bloodType: domain.BloodTypeONegative, location: "Springfield", available: true, eligible: true})
	f.addDonor(t, donorSpec{id: "d3", owner: "c", bloodType: domain.BloodTypeAPositive, location: "Shelbyville", available: true, eligible: true})
	// Availability does not gate the probe; the donor is still registered.
	f.addDonor(t, donorSpec{id: "d4", owner: "d", bloodType: domain.BloodTypeAPositive, location: "Springfield", available: false, eligible: true})

	count, err := f.svc.NearbyDonorCount(testutil.AuthedContext("anyone"), domain.BloodTypeAPositive, "springfield")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	_, err = f.svc.NearbyDonorCount(testutil.AnonymousContext(), domain.BloodTypeAPositive, "Springfield")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestAutoMatchCandidates_FiltersAndRedacts(t *testing.T) {
	f := newFixture(t)
	f.addRequest(t, "r1", "requester", domain.BloodTypeAPositive, domain.RequestStatusSearching)

	f.addDonor(t, donorSpec{id: "d1", owner: "a", bloodType: domain.BloodTypeONegative, location: "Springfield", available: true, eligible: true})
	f.addDonor(t, donorSpec{id: "d2", owner: "b", bloodType: domain.BloodTypeAPositive, location: "Springfield", available: true, eligible: true})
	f.addDonor(t, donorSpec{id: "d3", owner: "c", bloodType: domain.BloodTypeBPositive, location: "Springfield", available: true, eligible: true})
	f.addDonor(t, donorSpec{id: "d4", owner: "d", bloodType: domain.BloodTypeONegative, location: "Shelbyville", available: true, eligible: true})

	// Donors who already expressed interest are not candidates again.
	f.addInterest(t, "r1", "d1")

	candidates, err := f.svc.AutoMatchCandidates(testutil.AuthedContext("requester"), "r1")
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "d2", candidates[0].DonorID)

	_, err = f.svc.AutoMatchCandidates(testutil.AuthedContext("stranger"), "r1")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestBestMatch_ScoresExactTypeOverCompatibility(t *testing.T) {
	f := newFixture(t)
	f.addRequest(t, "r1", "requester", domain.BloodTypeAPositive, domain.RequestStatusSearching)

	// Compatible and eligible: 5 points.
	f.addDonor(t, donorSpec{id: "d1", owner: "a", bloodType: domain.BloodTypeONegative, location: "Springfield", available: true, eligible: true})
	// Exact type but not eligible: 10 points.
	f.addDonor(t, donorSpec{id: "d2", owner: "b", bloodType: domain.BloodTypeAPositive, location: "Springfield", available: true, eligible: false})
	// Exact type and eligible: 15 points.
	f.addDonor(t, donorSpec{id: "d3", owner: "c", bloodType: domain.BloodTypeAPositive, location: "Springfield", available: true, eligible: true})

	suggestion, err := f.svc.BestMatch(testutil.AuthedContext("requester"), "r1")
	require.NoError(t, err)
	assert.Equal(t, "d3", suggestion.Donor.DonorID)
	assert.Equal(t, 15, suggestion.Score)
}

func TestBestMatch_NoCandidates(t *testing.T) {
	f := newFixture(t)
	f.addRequest(t, "r1", "requester", domain.BloodTypeABNegative, domain.RequestStatusSearching)
	f.addDonor(t, donorSpec{id: "d1", owner: "a", bloodType: domain.BloodTypeAPositive, location: "Springfield", available: true, eligible: true})

	_, err := f.svc.BestMatch(testutil.AuthedContext("requester"), "r1")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestPolicyAdmits(t *testing.T) {
	assert.True(t, ExactTypeOnly.Admits(domain.BloodTypeAPositive, domain.BloodTypeAPositive))
	assert.False(t, ExactTypeOnly.Admits(domain.BloodTypeONegative, domain.BloodTypeAPositive))

	assert.True(t, FullCompatibility.Admits(domain.BloodTypeONegative, domain.BloodTypeAPositive))
	assert.False(t, FullCompatibility.Admits(domain.BloodTypeAPositive, domain.BloodTypeONegative))
}
