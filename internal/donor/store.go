package donor

import (
	"context"

	"lifelink/pkg/domain"
)

// Store is the persistence interface for donor profiles. Implementations must
// make Upsert and Execute atomic per donor ID so concurrent updates cannot
// lose the owner or donation history.
//
// Stores return pkg/platform/sentinel errors; the service translates them into
// domain errors.
type Store interface {
	// FindByID returns the donor or sentinel.ErrNotFound.
	FindByID(ctx context.Context, id string) (*Donor, error)

	// Upsert atomically creates or replaces the donor with the given ID.
	// When a record exists, authorize is called with it while the per-key
	// lock is held; a non-nil error aborts the write. The store merges the
	// existing record's immutable fields (owner, donation history) into the
	// incoming one before writing. Returns the stored donor and whether the
	// write created a new record.
	Upsert(ctx context.Context, incoming *Donor, authorize func(existing *Donor) error) (*Donor, bool, error)

	// Execute atomically validates and mutates the donor with the given ID.
	// validate runs first and aborts on error; mutate then applies the change
	// under the same lock. Returns the updated donor.
	Execute(ctx context.Context, id string, validate func(*Donor) error, mutate func(*Donor)) (*Donor, error)

	// List returns all donors sorted by name ascending.
	List(ctx context.Context) ([]*Donor, error)

	// ListByBloodType returns donors with the exact blood type, by name
	// ascending.
	ListByBloodType(ctx context.Context, bt domain.BloodType) ([]*Donor, error)

	// ListByAvailability returns donors with the given availability flag, by
	// name ascending.
	ListByAvailability(ctx context.Context, available bool) ([]*Donor, error)
}
