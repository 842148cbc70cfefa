package request

import (
	"context"

	"lifelink/pkg/domain"
)

// Store is the persistence interface for blood requests. Execute must hold a
// per-key lock (mutex or FOR UPDATE) across validate and mutate so concurrent
// status transitions serialize.
//
// Stores return pkg/platform/sentinel errors; the service translates them.
type Store interface {
	// Create stores a new request; sentinel.ErrAlreadyExists on ID collision.
	Create(ctx context.Context, r *BloodRequest) error

	// FindByID returns the request or sentinel.ErrNotFound.
	FindByID(ctx context.Context, id string) (*BloodRequest, error)

	// Execute atomically validates and mutates the request with the given ID.
	Execute(ctx context.Context, id string, validate func(*BloodRequest) error, mutate func(*BloodRequest)) (*BloodRequest, error)

	// List returns all requests ordered by creation time descending.
	List(ctx context.Context) ([]*BloodRequest, error)

	// ListByStatus returns requests in the given status, newest first.
	ListByStatus(ctx context.Context, status domain.RequestStatus) ([]*BloodRequest, error)
}
