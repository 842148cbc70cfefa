package interest

import (
	"context"
	"errors"
	"log/slog"

	"lifelink/internal/donor"
	"lifelink/internal/events"
	"lifelink/internal/policy"
	"lifelink/internal/request"
	"lifelink/pkg/domain"
	dErrors "lifelink/pkg/domain-errors"
	"lifelink/pkg/platform/sentinel"
	"lifelink/pkg/requestcontext"
)

// Service is the donor interest ledger. Expressing interest is the donor-side
// action that moves a searching request to donor_contacted; the ledger also
// gates match confirmation.
type Service struct {
	store    Store
	donors   donor.Store
	requests request.Store
	policy   *policy.Evaluator
	events   events.Publisher
	logger   *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

func WithEvents(p events.Publisher) Option {
	return func(s *Service) { s.events = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func NewService(store Store, donors donor.Store, requests request.Store, eval *policy.Evaluator, opts ...Option) *Service {
	s := &Service{
		store:    store,
		donors:   donors,
		requests: requests,
		policy:   eval,
		events:   events.NopPublisher{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Express records the donor's interest in the request. The caller must own
// (or administer) the donor profile. Duplicate submissions fail with
// Conflict; terminal requests fail with InvalidState. The first interest
// against a searching request transitions it to donor_contacted.
func (s *Service) Express(ctx context.Context, requestID, donorID string) error {
	caller := requestcontext.Caller(ctx)
	if err := s.policy.RequireUser(ctx, caller); err != nil {
		return err
	}

	rec, err := New(requestID, donorID, requestcontext.Now(ctx))
	if err != nil {
		return err
	}

	d, err := s.donors.FindByID(ctx, donorID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "donor not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "donor lookup failed")
	}
	if err := s.policy.RequireOwnerOrAdmin(ctx, caller, d.Owner); err != nil {
		return err
	}

	r, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "blood request not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "request lookup failed")
	}
	if r.Status.IsTerminal() {
		return dErrors.Newf(dErrors.CodeInvalidState, "request is %s and no longer accepts interest", r.Status)
	}

	if err := s.store.InsertIfAbsent(ctx, rec); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyExists) {
			return dErrors.New(dErrors.CodeConflict, "interest already recorded for this request")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "interest store failure")
	}

	// First interest against a searching request flips it to donor_contacted.
	// The mutation is conditional inside the store's critical section, so a
	// racing second interest observes donor_contacted and leaves it alone.
	transitioned := false
	_, err = s.requests.Execute(ctx, requestID, nil, func(r *request.BloodRequest) {
		if r.Status == domain.RequestStatusSearching {
			r.ApplyStatus(domain.RequestStatusDonorContacted)
			transitioned = true
		}
	})
	if err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "interest recorded but status transition failed",
			"request_id", requestID,
			"donor_id", donorID,
			"error", err,
		)
	}

	s.emit(ctx, events.Event{
		Type:      events.TypeInterestExpressed,
		Actor:     caller,
		RequestID: requestID,
		DonorID:   donorID,
	})
	if transitioned {
		s.emit(ctx, events.Event{
			Type:      events.TypeStatusChanged,
			Actor:     caller,
			RequestID: requestID,
			Status:    domain.RequestStatusDonorContacted.String(),
			Reason:    "first donor interest",
		})
	}
	return nil
}

// ListByRequest returns the request's interest records in deterministic
// order. Request owner or admin only.
func (s *Service) ListByRequest(ctx context.Context, requestID string) ([]Interest, error) {
	if err := s.authorizeRequestOwner(ctx, requestID); err != nil {
		return nil, err
	}
	records, err := s.store.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "interest store failure")
	}
	return records, nil
}

// Count returns the number of interest records for the request. Request owner
// or admin only.
func (s *Service) Count(ctx context.Context, requestID string) (int, error) {
	if err := s.authorizeRequestOwner(ctx, requestID); err != nil {
		return 0, err
	}
	count, err := s.store.CountByRequest(ctx, requestID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "interest store failure")
	}
	return count, nil
}

// ListSummaries maps each interest record to the redacted donor view. Contact
// information is explicitly excluded; it is only revealed by match
// confirmation. Request owner or admin only.
func (s *Service) ListSummaries(ctx context.Context, requestID string) ([]donor.Summary, error) {
	records, err := s.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	summaries := make([]donor.Summary, 0, len(records))
	for _, rec := range records {
		d, err := s.donors.FindByID(ctx, rec.DonorID)
		if err != nil {
			// A donor record removed out-of-band just drops from the view.
			if errors.Is(err, sentinel.ErrNotFound) {
				continue
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "donor lookup failed")
		}
		summaries = append(summaries, d.Summary())
	}
	return summaries, nil
}

// Exists reports whether the (request, donor) pair has an interest record.
// Used by the match service as its eligibility gate.
func (s *Service) Exists(ctx context.Context, requestID, donorID string) (bool, error) {
	return s.store.Exists(ctx, requestID, donorID)
}

// HasInterestByOwner reports whether any donor profile owned by the principal
// has an interest record against the request. Satisfies
// request.InterestChecker for the request-visibility rule.
func (s *Service) HasInterestByOwner(ctx context.Context, requestID string, owner requestcontext.Principal) (bool, error) {
	records, err := s.store.ListByRequest(ctx, requestID)
	if err != nil {
		return false, err
	}
	for _, rec := range records {
		d, err := s.donors.FindByID(ctx, rec.DonorID)
		if err != nil {
			continue
		}
		if d.Owner == owner {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) authorizeRequestOwner(ctx context.Context, requestID string) error {
	caller := requestcontext.Caller(ctx)
	if err := s.policy.RequireUser(ctx, caller); err != nil {
		return err
	}
	r, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "blood request not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "request lookup failed")
	}
	return s.policy.RequireOwnerOrAdmin(ctx, caller, r.Owner)
}

func (s *Service) emit(ctx context.Context, event events.Event) {
	event.Timestamp = requestcontext.Now(ctx)
	if err := s.events.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "interest event emission failed",
			"type", event.Type,
			"error", err,
		)
	}
}
