package domain

import dErrors "lifelink/pkg/domain-errors"

// RequestStatus tracks a blood request through its lifecycle.
//
// Transitions:
//
//	pending --(owner marks searching)--> searching
//	searching --(first donor interest)--> donor_contacted
//	donor_contacted --(owner confirms donor)--> matched
//	matched --(owner confirms fulfillment)--> fulfilled   [terminal]
//	pending|searching|donor_contacted --(time/owner)--> expired   [terminal]
//
// Terminal states reject further interest and confirmation.
type RequestStatus string

const (
	RequestStatusPending        RequestStatus = "pending"
	RequestStatusSearching      RequestStatus = "searching"
	RequestStatusDonorContacted RequestStatus = "donor_contacted"
	RequestStatusMatched        RequestStatus = "matched"
	RequestStatusFulfilled      RequestStatus = "fulfilled"
	RequestStatusExpired        RequestStatus = "expired"
)

// validTransitions is the single source of truth for the request state machine.
var validTransitions = map[RequestStatus][]RequestStatus{
	RequestStatusPending:        {RequestStatusSearching, RequestStatusExpired},
	RequestStatusSearching:      {RequestStatusDonorContacted, RequestStatusExpired},
	RequestStatusDonorContacted: {RequestStatusMatched, RequestStatusExpired},
	RequestStatusMatched:        {RequestStatusFulfilled},
	RequestStatusFulfilled:      {},
	RequestStatusExpired:        {},
}

// ParseRequestStatus constructs a RequestStatus from external input.
func ParseRequestStatus(s string) (RequestStatus, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "status cannot be empty")
	}
	st := RequestStatus(s)
	if !st.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid request status")
	}
	return st, nil
}

// IsValid checks if the status is one of the supported enum values.
func (s RequestStatus) IsValid() bool {
	_, ok := validTransitions[s]
	return ok
}

// IsTerminal reports whether the status admits no further transitions.
func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusFulfilled || s == RequestStatusExpired
}

// CanTransitionTo reports whether moving from s to next is a legal step of the
// state machine.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// String returns the string representation of the status.
func (s RequestStatus) String() string {
	return string(s)
}

// Display returns the human-readable form shown in status tracking views.
func (s RequestStatus) Display() string {
	switch s {
	case RequestStatusPending:
		return "Pending"
	case RequestStatusSearching:
		return "Searching"
	case RequestStatusDonorContacted:
		return "Donor Contacted"
	case RequestStatusMatched:
		return "Matched"
	case RequestStatusFulfilled:
		return "Fulfilled"
	case RequestStatusExpired:
		return "Expired"
	}
	return string(s)
}
