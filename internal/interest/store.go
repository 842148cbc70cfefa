package interest

import "context"

// Store is the persistence interface for the interest ledger. InsertIfAbsent
// must be a single atomic check-and-insert (unique constraint or equivalent)
// so concurrent duplicate submissions cannot both succeed.
//
// Stores return pkg/platform/sentinel errors; the service translates them.
type Store interface {
	// InsertIfAbsent stores the record unless one exists for the same
	// (request, donor) pair; sentinel.ErrAlreadyExists on duplicate.
	InsertIfAbsent(ctx context.Context, rec Interest) error

	// Exists reports whether a record exists for the pair.
	Exists(ctx context.Context, requestID, donorID string) (bool, error)

	// ListByRequest returns the request's records ordered by request ID then
	// donor ID.
	ListByRequest(ctx context.Context, requestID string) ([]Interest, error)

	// CountByRequest returns the number of records for the request.
	CountByRequest(ctx context.Context, requestID string) (int, error)
}
