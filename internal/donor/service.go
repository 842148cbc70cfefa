package donor

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"lifelink/internal/events"
	"lifelink/internal/policy"
	"lifelink/pkg/domain"
	dErrors "lifelink/pkg/domain-errors"
	"lifelink/pkg/platform/sentinel"
	"lifelink/pkg/requestcontext"
)

// ProfileSource exposes the caller's user profile to the donor registry. The
// profile itself is owned by the identity collaborator; the registry only
// consults it for a fallback contact when none is supplied.
type ProfileSource interface {
	ContactInfo(ctx context.Context, p requestcontext.Principal) (string, bool)
}

// Service is the donor registry. It enforces ownership on writes, preserves
// the owner and donation history across upserts, and emits DonorRegistered
// events for new profiles.
type Service struct {
	store    Store
	policy   *policy.Evaluator
	profiles ProfileSource
	events   events.Publisher
	metrics  *Metrics
	logger   *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

func WithProfiles(p ProfileSource) Option {
	return func(s *Service) { s.profiles = p }
}

func WithEvents(p events.Publisher) Option {
	return func(s *Service) { s.events = p }
}

func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func NewService(store Store, eval *policy.Evaluator, opts ...Option) *Service {
	s := &Service{
		store:  store,
		policy: eval,
		events: events.NopPublisher{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateOrUpdateInput carries the caller-supplied donor fields.
type CreateOrUpdateInput struct {
	ID              string
	Name            string
	BloodType       domain.BloodType
	Location        string
	ContactInfo     string
	HealthChecklist HealthChecklist
	Availability    bool
}

// CreateOrUpdate registers a donor profile or overwrites the mutable fields of
// an existing one. The owner and donation history of an existing record are
// preserved; only the current owner or an administrator may update it.
func (s *Service) CreateOrUpdate(ctx context.Context, in CreateOrUpdateInput) error {
	caller := requestcontext.Caller(ctx)
	if err := s.policy.RequireUser(ctx, caller); err != nil {
		return err
	}

	contact := strings.TrimSpace(in.ContactInfo)
	if contact == "" && s.profiles != nil {
		if c, ok := s.profiles.ContactInfo(ctx, caller); ok {
			contact = c
		}
	}

	d, err := New(in.ID, in.Name, in.BloodType, in.Location, contact, in.HealthChecklist, in.Availability, caller)
	if err != nil {
		return err
	}

	_, created, err := s.store.Upsert(ctx, d, func(existing *Donor) error {
		return s.policy.RequireOwnerOrAdmin(ctx, caller, existing.Owner)
	})
	if err != nil {
		return s.translate(err)
	}

	if created {
		s.metrics.IncRegistered()
		s.emit(ctx, events.Event{
			Type:    events.TypeDonorRegistered,
			Actor:   caller,
			DonorID: d.ID,
		})
	} else {
		s.metrics.IncUpdated()
	}
	return nil
}

// Get returns the donor profile. Only the owner or an administrator may view
// a full profile; everyone else sees donors through redacted summaries.
func (s *Service) Get(ctx context.Context, id string) (*Donor, error) {
	caller := requestcontext.Caller(ctx)
	if err := s.policy.RequireUser(ctx, caller); err != nil {
		return nil, err
	}
	d, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, s.translate(err)
	}
	if err := s.policy.RequireOwnerOrAdmin(ctx, caller, d.Owner); err != nil {
		return nil, err
	}
	return d, nil
}

// List returns all donor profiles sorted by name. Admin only.
func (s *Service) List(ctx context.Context) ([]*Donor, error) {
	if err := s.policy.RequireAdmin(ctx, requestcontext.Caller(ctx)); err != nil {
		return nil, err
	}
	donors, err := s.store.List(ctx)
	if err != nil {
		return nil, s.translate(err)
	}
	return donors, nil
}

// ListByBloodType returns donors with the exact blood type. Admin only.
func (s *Service) ListByBloodType(ctx context.Context, bt domain.BloodType) ([]*Donor, error) {
	if err := s.policy.RequireAdmin(ctx, requestcontext.Caller(ctx)); err != nil {
		return nil, err
	}
	if !bt.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid blood type")
	}
	donors, err := s.store.ListByBloodType(ctx, bt)
	if err != nil {
		return nil, s.translate(err)
	}
	return donors, nil
}

// ListByAvailability returns donors filtered by availability. Admin only.
func (s *Service) ListByAvailability(ctx context.Context, available bool) ([]*Donor, error) {
	if err := s.policy.RequireAdmin(ctx, requestcontext.Caller(ctx)); err != nil {
		return nil, err
	}
	donors, err := s.store.ListByAvailability(ctx, available)
	if err != nil {
		return nil, s.translate(err)
	}
	return donors, nil
}

// SetAvailability toggles the donor's availability flag. Owner or admin only;
// idempotent.
func (s *Service) SetAvailability(ctx context.Context, donorID string, available bool) error {
	caller := requestcontext.Caller(ctx)
	if err := s.policy.RequireUser(ctx, caller); err != nil {
		return err
	}
	_, err := s.store.Execute(ctx, donorID,
		func(d *Donor) error {
			return s.policy.RequireOwnerOrAdmin(ctx, caller, d.Owner)
		},
		func(d *Donor) {
			d.Availability = available
		},
	)
	if err != nil {
		return s.translate(err)
	}
	s.metrics.IncAvailabilityChanged()
	return nil
}

// RecordDonation appends a donation reference to the donor's history and
// advances the last-donation timestamp. Owner or admin only.
func (s *Service) RecordDonation(ctx context.Context, donorID, reference string) error {
	caller := requestcontext.Caller(ctx)
	if err := s.policy.RequireUser(ctx, caller); err != nil {
		return err
	}
	if strings.TrimSpace(reference) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "donation reference is required")
	}
	now := requestcontext.Now(ctx)
	_, err := s.store.Execute(ctx, donorID,
		func(d *Donor) error {
			return s.policy.RequireOwnerOrAdmin(ctx, caller, d.Owner)
		},
		func(d *Donor) {
			d.RecordDonation(reference, now)
		},
	)
	return s.translate(err)
}

// CheckEligibility reports the advisory eligibility of the donor as of the
// request time. Owner or admin only.
func (s *Service) CheckEligibility(ctx context.Context, donorID string) (Eligibility, error) {
	d, err := s.Get(ctx, donorID)
	if err != nil {
		return Eligibility{}, err
	}
	return d.CheckEligibility(requestcontext.Now(ctx)), nil
}

func (s *Service) emit(ctx context.Context, event events.Event) {
	event.Timestamp = requestcontext.Now(ctx)
	if err := s.events.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "donor event emission failed",
			"type", event.Type,
			"error", err,
		)
	}
}

func (s *Service) translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "donor not found")
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "donor store failure")
}
