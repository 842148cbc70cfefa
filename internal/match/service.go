package match

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

// InterestGate answers whether a donor has an interest record for a request.
// Implemented by the interest service; kept local to avoid importing it.
type InterestGate interface {
	Exists(ctx context.Context, requestID, donorID string) (bool, error)
}

// Service confirms matches and runs the compatibility queries around them.
// Confirm is the only operation in the system that discloses donor contact
// information.
type Service struct {
	requests  request.Store
	donors    donor.Store
	interests InterestGate
	policy    *policy.Evaluator
	events    events.Publisher
	metrics   *Metrics
	logger    *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

func WithEvents(p events.Publisher) Option {
	return func(s *Service) { s.events = p }
}

func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func NewService(requests request.Store, donors donor.Store, interests InterestGate, eval *policy.Evaluator, opts ...Option) *Service {
	s := &Service{
		requests:  requests,
		donors:    donors,
		interests: interests,
		policy:    eval,
		events:    events.NopPublisher{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Confirm finalizes a match between the request and the donor, transitions the
// request to matched, and returns the donor's contact information.
//
// Preconditions, checked in order:
//   - the caller is the request owner (no admin override)
//   - the donor exists
//   - the donor has expressed interest in this request
//   - the request's current status permits the matched transition
func (s *Service) Confirm(ctx context.Context, requestID, donorID string) (*ContactResponse, error) {
	caller := requestcontext.Caller(ctx)
	if err := s.policy.RequireUser(ctx, caller); err != nil {
		return nil, err
	}

	r, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, s.translateRequest(err)
	}
	if err := s.policy.RequireOwner(ctx, caller, r.Owner); err != nil {
		return nil, err
	}

	d, err := s.donors.FindByID(ctx, donorID)
	if err != nil {
		return nil, s.translateDonor(err)
	}

	interested, err := s.interests.Exists(ctx, requestID, donorID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "interest lookup failed")
	}
	if !interested {
		return nil, dErrors.New(dErrors.CodeInvalidState, "donor has not expressed interest in this request")
	}

	_, err = s.requests.Execute(ctx, requestID,
		func(r *request.BloodRequest) error {
			return r.CanTransitionTo(domain.RequestStatusMatched)
		},
		func(r *request.BloodRequest) {
			r.ApplyStatus(domain.RequestStatusMatched)
		},
	)
	if err != nil {
		return nil, s.translateRequest(err)
	}

	s.metrics.IncConfirmed()
	s.emit(ctx, events.Event{
		Type:      events.TypeMatchConfirmed,
		Actor:     caller,
		RequestID: requestID,
		DonorID:   donorID,
	})
	s.emit(ctx, events.Event{
		Type:      events.TypeStatusChanged,
		Actor:     caller,
		RequestID: requestID,
		Status:    domain.RequestStatusMatched.String(),
		Reason:    "match confirmed",
	})

	return &ContactResponse{
		Donor:       d.Summary(),
		ContactInfo: d.ContactInfo,
	}, nil
}

// NearbyDonorCount reports how many donors of exactly the given blood type are
// registered in the location. It is a cheap existence probe; it returns a
// count only and donor identities are not disclosed. Any authenticated user.
func (s *Service) NearbyDonorCount(ctx context.Context, bloodType domain.BloodType, location string) (int, error) {
	if err := s.policy.RequireUser(ctx, requestcontext.Caller(ctx)); err != nil {
		return 0, err
	}
	if !bloodType.IsValid() {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "invalid blood type")
	}

	donors, err := s.donors.ListByBloodType(ctx, bloodType)
	if err != nil {
		return 0, s.translateDonor(err)
	}
	count := 0
	for _, d := range donors {
		if d.LocationMatches(location) {
			count++
		}
	}
	return count, nil
}

// OpenRequestsForDonor is the donor dashboard: open requests in the donor's
// location asking for the donor's exact blood type. Donor owner or admin.
func (s *Service) OpenRequestsForDonor(ctx context.Context, donorID string) ([]request.PublicView, error) {
	caller := requestcontext.Caller(ctx)
	if err := s.policy.RequireUser(ctx, caller); err != nil {
		return nil, err
	}
	d, err := s.donors.FindByID(ctx, donorID)
	if err != nil {
		return nil, s.translateDonor(err)
	}
	if err := s.policy.RequireOwnerOrAdmin(ctx, caller, d.Owner); err != nil {
		return nil, err
	}

	requests, err := s.requests.List(ctx)
	if err != nil {
		return nil, s.translateRequest(err)
	}
	views := make([]request.PublicView, 0)
	for _, r := range requests {
		if !r.IsOpen() {
			continue
		}
		if !r.LocationMatches(d.Location) {
			continue
		}
		if !ExactTypeOnly.Admits(d.BloodType, r.BloodType) {
			continue
		}
		views = append(views, r.Public())
	}
	return views, nil
}

// AutoMatchCandidates returns redacted profiles of available donors in the
// request's location who are compatible under the full table and have not
// already expressed interest. Request owner or admin.
func (s *Service) AutoMatchCandidates(ctx context.Context, requestID string) ([]donor.Summary, error) {
	r, err := s.authorizeRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.candidates(ctx, r)
	if err != nil {
		return nil, err
	}
	summaries := make([]donor.Summary, 0, len(candidates))
	for _, d := range candidates {
		summaries = append(summaries, d.Summary())
	}
	return summaries, nil
}

// BestMatch ranks the request's candidates and returns the highest-scoring one
// as a redacted suggestion. Ties keep the first candidate seen, so ranking is
// deterministic over the store's ordering. Request owner or admin; NotFound
// when no candidate qualifies.
func (s *Service) BestMatch(ctx context.Context, requestID string) (*Suggestion, error) {
	r, err := s.authorizeRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.candidates(ctx, r)
	if err != nil {
		return nil, err
	}

	var best *donor.Donor
	bestScore := -1
	for _, d := range candidates {
		if score := scoreDonor(d, r.BloodType); score > bestScore {
			best = d
			bestScore = score
		}
	}
	if best == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "no suitable donor found")
	}

	s.metrics.IncSuggestion()
	return &Suggestion{Donor: best.Summary(), Score: bestScore}, nil
}

// candidates filters the donor registry for the request under the
// FullCompatibility policy: available, same location, compatible type, and no
// interest record yet.
func (s *Service) candidates(ctx context.Context, r *request.BloodRequest) ([]*donor.Donor, error) {
	donors, err := s.donors.ListByAvailability(ctx, true)
	if err != nil {
		return nil, s.translateDonor(err)
	}
	var out []*donor.Donor
	for _, d := range donors {
		if !d.LocationMatches(r.Location) {
			continue
		}
		if !FullCompatibility.Admits(d.BloodType, r.BloodType) {
			continue
		}
		interested, err := s.interests.Exists(ctx, r.ID, d.ID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "interest lookup failed")
		}
		if interested {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *Service) authorizeRequest(ctx context.Context, requestID string) (*request.BloodRequest, error) {
	caller := requestcontext.Caller(ctx)
	if err := s.policy.RequireUser(ctx, caller); err != nil {
		return nil, err
	}
	r, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, s.translateRequest(err)
	}
	if err := s.policy.RequireOwnerOrAdmin(ctx, caller, r.Owner); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) emit(ctx context.Context, event events.Event) {
	event.Timestamp = requestcontext.Now(ctx)
	if err := s.events.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "match event emission failed",
			"type", event.Type,
			"error", err,
		)
	}
}

func (s *Service) translateRequest(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "blood request not found")
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "request store failure")
}

func (s *Service) translateDonor(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "donor not found")
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "donor store failure")
}
