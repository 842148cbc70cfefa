// Package events defines the domain events the core emits for the external
// notification dispatcher. Delivery, retries, and message templates are out of
// scope; the core only states that something happened, with the minimal
// payload a dispatcher needs.
package events

import (
	"context"
	"time"

	"lifelink/pkg/requestcontext"
)

// Type names a domain event.
type Type string

const (
	TypeDonorRegistered   Type = "donor_registered"
	TypeRequestCreated    Type = "request_created"
	TypeInterestExpressed Type = "interest_expressed"
	TypeMatchConfirmed    Type = "match_confirmed"
	TypeStatusChanged     Type = "status_changed"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so sinks can fan out. Contact details never appear here.
type Event struct {
	Type      Type                     `json:"type"`
	Timestamp time.Time                `json:"timestamp"`
	Actor     requestcontext.Principal `json:"actor"`
	RequestID string                   `json:"request_id,omitempty"`
	DonorID   string                   `json:"donor_id,omitempty"`
	Status    string                   `json:"status,omitempty"`
	Reason    string                   `json:"reason,omitempty"`
}

// Publisher delivers events to a sink. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// NopPublisher discards every event; services fall back to it when no sink is
// wired.
type NopPublisher struct{}

func (NopPublisher) Emit(context.Context, Event) error { return nil }
