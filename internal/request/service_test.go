package request

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifelink/internal/events"
	"lifelink/internal/policy"
	"lifelink/pkg/domain"
	dErrors "lifelink/pkg/domain-errors"
	"lifelink/pkg/requestcontext"
	"lifelink/pkg/testutil"
)

type staticInterests map[string][]requestcontext.Principal

func (si staticInterests) HasInterestByOwner(_ context.Context, requestID string, owner requestcontext.Principal) (bool, error) {
	for _, p := range si[requestID] {
		if p == owner {
			return true, nil
		}
	}
	return false, nil
}

func newTestService(t *testing.T, opts ...Option) (*Service, *InMemoryStore, *events.MemorySink, *policy.Evaluator) {
	t.Helper()
	store := NewInMemoryStore()
	sink := events.NewMemorySink()
	eval := policy.NewEvaluator(policy.NewInMemoryDirectory())
	opts = append([]Option{WithEvents(sink)}, opts...)
	svc := NewService(store, eval, opts...)
	return svc, store, sink, eval
}

func validCreateInput() CreateInput {
	return CreateInput{
		RecipientName: "Maria",
		BloodType:     domain.BloodTypeABNegative,
		Location:      "Springfield",
		Urgency:       domain.UrgencyCritical,
		ContactInfo:   "555-0100",
		UnitsRequired: 2,
	}
}

func TestCreate_StartsPendingWithGeneratedID(t *testing.T) {
	svc, _, sink, _ := newTestService(t)
	ctx := testutil.AuthedContext("alice")

	r, err := svc.Create(ctx, validCreateInput())
	require.NoError(t, err)
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, domain.RequestStatusPending, r.Status)
	assert.Equal(t, requestcontext.Principal("alice"), r.Owner)
	assert.Equal(t, testutil.FixedTime, r.CreatedAt)

	created := sink.ByType(events.TypeRequestCreated)
	require.Len(t, created, 1)
	assert.Equal(t, r.ID, created[0].RequestID)
}

func TestCreate_Validation(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := testutil.AuthedContext("alice")

	in := validCreateInput()
	in.UnitsRequired = 0
	_, err := svc.Create(ctx, in)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = svc.Create(testutil.AnonymousContext(), validCreateInput())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

	in = validCreateInput()
	in.ID = "r1"
	_, err = svc.Create(ctx, in)
	require.NoError(t, err)
	_, err = svc.Create(ctx, in)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestUpdateStatus_FollowsStateMachine(t *testing.T) {
	svc, store, sink, _ := newTestService(t)
	ctx := testutil.AuthedContext("alice")
	r, err := svc.Create(ctx, validCreateInput())
	require.NoError(t, err)

	// Legal walk to fulfilled.
	for _, next := range []domain.RequestStatus{
		domain.RequestStatusSearching,
		domain.RequestStatusDonorContacted,
		domain.RequestStatusMatched,
		domain.RequestStatusFulfilled,
	} {
		require.NoError(t, svc.UpdateStatus(ctx, r.ID, next))
	}

	// Terminal state rejects everything afterwards.
	err = svc.UpdateStatus(ctx, r.ID, domain.RequestStatusSearching)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))

	stored, err := store.FindByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusFulfilled, stored.Status)

	assert.Len(t, sink.ByType(events.TypeStatusChanged), 4)
}

func TestUpdateStatus_RejectsSkipsAndStrangers(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := testutil.AuthedContext("alice")
	r, err := svc.Create(ctx, validCreateInput())
	require.NoError(t, err)

	err = svc.UpdateStatus(ctx, r.ID, domain.RequestStatusMatched)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState), "pending cannot jump to matched")

	err = svc.UpdateStatus(testutil.AuthedContext("bob"), r.ID, domain.RequestStatusSearching)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

	err = svc.UpdateStatus(ctx, "missing", domain.RequestStatusSearching)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestAdminOverrideStatus(t *testing.T) {
	svc, store, sink, eval := newTestService(t)
	require.NoError(t, eval.BootstrapCaller(context.Background(), "admin"))

	ctx := testutil.AuthedContext("alice")
	r, err := svc.Create(ctx, validCreateInput())
	require.NoError(t, err)

	err = svc.AdminOverrideStatus(ctx, r.ID, domain.RequestStatusExpired, "cleanup")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized), "owner is not admin")

	require.NoError(t, svc.AdminOverrideStatus(testutil.AuthedContext("admin"), r.ID, domain.RequestStatusFulfilled, "resolved offline"))

	stored, err := store.FindByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusFulfilled, stored.Status)

	changed := sink.ByType(events.TypeStatusChanged)
	require.NotEmpty(t, changed)
	assert.Equal(t, "admin_override: resolved offline", changed[len(changed)-1].Reason)
}

func TestGet_VisibilityRules(t *testing.T) {
	ctx := testutil.AuthedContext("alice")

	store := NewInMemoryStore()
	eval := policy.NewEvaluator(policy.NewInMemoryDirectory())
	require.NoError(t, eval.BootstrapCaller(context.Background(), "admin"))
	svc := NewService(store, eval)
	r, err := svc.Create(ctx, validCreateInput())
	require.NoError(t, err)

	interested := staticInterests{r.ID: {"donor-owner"}}
	svc = NewService(store, eval, WithInterests(interested))

	_, err = svc.Get(testutil.AuthedContext("alice"), r.ID)
	assert.NoError(t, err)

	_, err = svc.Get(testutil.AuthedContext("admin"), r.ID)
	assert.NoError(t, err)

	_, err = svc.Get(testutil.AuthedContext("donor-owner"), r.ID)
	assert.NoError(t, err, "a caller with expressed interest may view the request")

	_, err = svc.Get(testutil.AuthedContext("stranger"), r.ID)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestListPublic_RedactsAndOrders(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := testutil.AuthedContext("alice")

	first := validCreateInput()
	first.ID = "r1"
	_, err := svc.Create(ctx, first)
	require.NoError(t, err)

	second := validCreateInput()
	second.ID = "r2"
	laterCtx := requestcontext.WithCaller(context.Background(), "alice")
	laterCtx = requestcontext.WithTime(laterCtx, testutil.FixedTime.Add(time.Minute))
	_, err = svc.Create(laterCtx, second)
	require.NoError(t, err)

	views, err := svc.ListPublic(ctx)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "r2", views[0].ID, "newest first")

	byStatus, err := svc.ListPublicByStatus(ctx, domain.RequestStatusPending)
	require.NoError(t, err)
	assert.Len(t, byStatus, 2)
}
