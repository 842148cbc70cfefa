package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestStatus_HappyPathTransitions(t *testing.T) {
	path := []RequestStatus{
		RequestStatusPending,
		RequestStatusSearching,
		RequestStatusDonorContacted,
		RequestStatusMatched,
		RequestStatusFulfilled,
	}
	for i := 0; i < len(path)-1; i++ {
		assert.True(t, path[i].CanTransitionTo(path[i+1]), "%s -> %s must be legal", path[i], path[i+1])
	}
}

func TestRequestStatus_TerminalStatesAdmitNothing(t *testing.T) {
	for _, terminal := range []RequestStatus{RequestStatusFulfilled, RequestStatusExpired} {
		assert.True(t, terminal.IsTerminal())
		for _, next := range []RequestStatus{
			RequestStatusPending, RequestStatusSearching, RequestStatusDonorContacted,
			RequestStatusMatched, RequestStatusFulfilled, RequestStatusExpired,
		} {
			assert.False(t, terminal.CanTransitionTo(next), "%s -> %s must be illegal", terminal, next)
		}
	}
}

func TestRequestStatus_NoSkippingAndNoExpiredMatch(t *testing.T) {
	assert.False(t, RequestStatusPending.CanTransitionTo(RequestStatusMatched))
	assert.False(t, RequestStatusSearching.CanTransitionTo(RequestStatusMatched))
	assert.False(t, RequestStatusPending.CanTransitionTo(RequestStatusFulfilled))

	// A matched request can only fulfill; it no longer expires automatically.
	assert.False(t, RequestStatusMatched.CanTransitionTo(RequestStatusExpired))

	// No going backwards.
	assert.False(t, RequestStatusSearching.CanTransitionTo(RequestStatusPending))
	assert.False(t, RequestStatusDonorContacted.CanTransitionTo(RequestStatusSearching))
}

func TestParseRequestStatus(t *testing.T) {
	st, err := ParseRequestStatus("donor_contacted")
	assert.NoError(t, err)
	assert.Equal(t, RequestStatusDonorContacted, st)
	assert.Equal(t, "Donor Contacted", st.Display())

	_, err = ParseRequestStatus("archived")
	assert.Error(t, err)
}
