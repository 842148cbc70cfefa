package request

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"lifelink/internal/events"
	"lifelink/internal/policy"
	"lifelink/pkg/domain"
	dErrors "lifelink/pkg/domain-errors"
	"lifelink/pkg/platform/sentinel"
	"lifelink/pkg/requestcontext"
)

// InterestChecker answers whether a principal has expressed interest in a
// request through one of their donor profiles. Implemented by the interest
// service; kept as a local interface to avoid a package cycle.
type InterestChecker interface {
	HasInterestByOwner(ctx context.Context, requestID string, owner requestcontext.Principal) (bool, error)
}

// Service is the request registry. It owns the request lifecycle: creation,
// strict status transitions, and visibility rules.
type Service struct {
	store     Store
	policy    *policy.Evaluator
	interests InterestChecker
	events    events.Publisher
	metrics   *Metrics
	logger    *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

func WithInterests(ic InterestChecker) Option {
	return func(s *Service) { s.interests = ic }
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

// CreateInput carries the caller-supplied request fields. ID is optional; a
// UUID is generated when empty.
type CreateInput struct {
	ID            string
	RecipientName string
	BloodType     domain.BloodType
	Location      string
	Urgency       domain.Urgency
	ContactInfo   string
	UnitsRequired int
}

// Create stores a new pending request owned by the caller and emits a
// RequestCreated event.
func (s *Service) Create(ctx context.Context, in CreateInput) (*BloodRequest, error) {
	caller := requestcontext.Caller(ctx)
	if err := s.policy.RequireUser(ctx, caller); err != nil {
		return nil, err
	}

	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}
	r, err := New(id, in.RecipientName, in.BloodType, in.Location, in.Urgency,
		in.ContactInfo, in.UnitsRequired, caller, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, r); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyExists) {
			return nil, dErrors.New(dErrors.CodeConflict, "a request with this id already exists")
		}
		return nil, s.translate(err)
	}

	s.metrics.IncCreated()
	s.emit(ctx, events.Event{
		Type:      events.TypeRequestCreated,
		Actor:     caller,
		RequestID: r.ID,
		Status:    r.Status.String(),
	})
	return r, nil
}

// UpdateStatus moves the request along the state machine. Owner or admin only;
// illegal transitions fail with InvalidState.
func (s *Service) UpdateStatus(ctx context.Context, requestID string, next domain.RequestStatus) error {
	caller := requestcontext.Caller(ctx)
	if err := s.policy.RequireUser(ctx, caller); err != nil {
		return err
	}
	if !next.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid request status")
	}

	_, err := s.store.Execute(ctx, requestID,
		func(r *BloodRequest) error {
			if err := s.policy.RequireOwnerOrAdmin(ctx, caller, r.Owner); err != nil {
				return err
			}
			return r.CanTransitionTo(next)
		},
		func(r *BloodRequest) {
			r.ApplyStatus(next)
		},
	)
	if err != nil {
		return s.translate(err)
	}

	s.metrics.IncTransition(next.String())
	s.emit(ctx, events.Event{
		Type:      events.TypeStatusChanged,
		Actor:     caller,
		RequestID: requestID,
		Status:    next.String(),
	})
	return nil
}

// AdminOverrideStatus sets an arbitrary status, bypassing the transition
// table. Admin only; the emitted event carries the override reason so the
// escape hatch stays auditable.
func (s *Service) AdminOverrideStatus(ctx context.Context, requestID string, next domain.RequestStatus, reason string) error {
	caller := requestcontext.Caller(ctx)
	if err := s.policy.RequireAdmin(ctx, caller); err != nil {
		return err
	}
	if !next.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid request status")
	}

	_, err := s.store.Execute(ctx, requestID, nil, func(r *BloodRequest) {
		r.ApplyStatus(next)
	})
	if err != nil {
		return s.translate(err)
	}

	s.metrics.IncTransition(next.String())
	s.emit(ctx, events.Event{
		Type:      events.TypeStatusChanged,
		Actor:     caller,
		RequestID: requestID,
		Status:    next.String(),
		Reason:    "admin_override: " + reason,
	})
	return nil
}

// Get returns the full request. Visible to the owner, an administrator, or a
// caller who has expressed interest through one of their donor profiles.
func (s *Service) Get(ctx context.Context, requestID string) (*BloodRequest, error) {
	caller := requestcontext.Caller(ctx)
	if err := s.policy.RequireUser(ctx, caller); err != nil {
		return nil, err
	}
	r, err := s.store.FindByID(ctx, requestID)
	if err != nil {
		return nil, s.translate(err)
	}

	if caller == r.Owner || s.policy.IsAdmin(ctx, caller) {
		return r, nil
	}
	if s.interests != nil {
		interested, err := s.interests.HasInterestByOwner(ctx, requestID, caller)
		if err == nil && interested {
			return r, nil
		}
	}
	return nil, dErrors.New(dErrors.CodeUnauthorized, "can only view your own requests or requests you expressed interest in")
}

// ListPublic returns the redacted view of every request, newest first. Any
// authenticated user.
func (s *Service) ListPublic(ctx context.Context) ([]PublicView, error) {
	if err := s.policy.RequireUser(ctx, requestcontext.Caller(ctx)); err != nil {
		return nil, err
	}
	requests, err := s.store.List(ctx)
	if err != nil {
		return nil, s.translate(err)
	}
	return publicViews(requests), nil
}

// ListPublicByStatus returns redacted requests in the given status, newest
// first. Any authenticated user.
func (s *Service) ListPublicByStatus(ctx context.Context, status domain.RequestStatus) ([]PublicView, error) {
	if err := s.policy.RequireUser(ctx, requestcontext.Caller(ctx)); err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid request status")
	}
	requests, err := s.store.ListByStatus(ctx, status)
	if err != nil {
		return nil, s.translate(err)
	}
	return publicViews(requests), nil
}

func publicViews(requests []*BloodRequest) []PublicView {
	views := make([]PublicView, 0, len(requests))
	for _, r := range requests {
		views = append(views, r.Public())
	}
	return views
}

func (s *Service) emit(ctx context.Context, event events.Event) {
	event.Timestamp = requestcontext.Now(ctx)
	if err := s.events.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "request event emission failed",
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
		return dErrors.New(dErrors.CodeNotFound, "blood request not found")
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "request store failure")
}
