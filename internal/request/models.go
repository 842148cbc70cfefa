package request

import (
	"strings"
	"time"

	"lifelink/pkg/domain"
	dErrors "lifelink/pkg/domain-errors"
	"lifelink/pkg/requestcontext"
)

// BloodRequest is a plea for blood units for a named recipient.
//
// Invariants:
//   - CreatedAt is set once at creation and never changes
//   - UnitsRequired >= 1
//   - Status only moves along domain.RequestStatus transitions; terminal
//     states (fulfilled, expired) persist for audit and reject further
//     interest or confirmation
type BloodRequest struct {
	ID            string                   `json:"id"`
	RecipientName string                   `json:"recipient_name"`
	BloodType     domain.BloodType         `json:"blood_type"`
	Location      string                   `json:"location"`
	Urgency       domain.Urgency           `json:"urgency"`
	ContactInfo   string                   `json:"contact_info"`
	UnitsRequired int                      `json:"units_required"`
	Status        domain.RequestStatus     `json:"status"`
	CreatedAt     time.Time                `json:"created_at"`
	Owner         requestcontext.Principal `json:"owner"`
}

// PublicView is the redacted request representation any authenticated user may
// see. It omits the owner and the requester's contact information.
type PublicView struct {
	ID            string               `json:"id"`
	RecipientName string               `json:"recipient_name"`
	BloodType     domain.BloodType     `json:"blood_type"`
	Location      string               `json:"location"`
	Urgency       domain.Urgency       `json:"urgency"`
	UnitsRequired int                  `json:"units_required"`
	Status        domain.RequestStatus `json:"status"`
	CreatedAt     time.Time            `json:"created_at"`
}

// Public returns the redacted view of the request.
func (r *BloodRequest) Public() PublicView {
	return PublicView{
		ID:            r.ID,
		RecipientName: r.RecipientName,
		BloodType:     r.BloodType,
		Location:      r.Location,
		Urgency:       r.Urgency,
		UnitsRequired: r.UnitsRequired,
		Status:        r.Status,
		CreatedAt:     r.CreatedAt,
	}
}

// IsOpen reports whether the request still accepts donor interest: it is not
// matched and not in a terminal state.
func (r *BloodRequest) IsOpen() bool {
	switch r.Status {
	case domain.RequestStatusPending, domain.RequestStatusSearching, domain.RequestStatusDonorContacted:
		return true
	}
	return false
}

// LocationMatches compares locations case-insensitively.
func (r *BloodRequest) LocationMatches(location string) bool {
	return strings.EqualFold(strings.TrimSpace(r.Location), strings.TrimSpace(location))
}

// CanTransitionTo checks the state machine for a move to next.
func (r *BloodRequest) CanTransitionTo(next domain.RequestStatus) error {
	if r.Status.IsTerminal() {
		return dErrors.Newf(dErrors.CodeInvalidState, "request is %s and accepts no further changes", r.Status)
	}
	if !r.Status.CanTransitionTo(next) {
		return dErrors.Newf(dErrors.CodeInvalidState, "cannot move request from %s to %s", r.Status, next)
	}
	return nil
}

// ApplyStatus records the transition. Call CanTransitionTo first; admin
// overrides skip that check deliberately.
func (r *BloodRequest) ApplyStatus(next domain.RequestStatus) {
	r.Status = next
}

// New validates and constructs a pending blood request.
func New(id, recipientName string, bloodType domain.BloodType, location string,
	urgency domain.Urgency, contactInfo string, unitsRequired int,
	owner requestcontext.Principal, now time.Time) (*BloodRequest, error) {
	if strings.TrimSpace(id) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "request id is required")
	}
	if strings.TrimSpace(recipientName) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "recipient name is required")
	}
	if !bloodType.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid blood type")
	}
	if strings.TrimSpace(location) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "request location is required")
	}
	if unitsRequired < 1 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "units required must be at least 1")
	}
	if owner.IsAnonymous() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "request owner is required")
	}
	return &BloodRequest{
		ID:            id,
		RecipientName: recipientName,
		BloodType:     bloodType,
		Location:      location,
		Urgency:       urgency,
		ContactInfo:   contactInfo,
		UnitsRequired: unitsRequired,
		Status:        domain.RequestStatusPending,
		CreatedAt:     now,
		Owner:         owner,
	}, nil
}
