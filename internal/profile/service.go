package profile

import (
	"context"
	"errors"
	"log/slog"

	"lifelink/internal/policy"
	"lifelink/pkg/domain"
	dErrors "lifelink/pkg/domain-errors"
	"lifelink/pkg/platform/sentinel"
	"lifelink/pkg/requestcontext"
)

// Service manages user profiles. Saving a profile also registers the caller
// with the role directory, which promotes the very first principal to
// administrator.
type Service struct {
	store  Store
	policy *policy.Evaluator
	logger *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func NewService(store Store, eval *policy.Evaluator, opts ...Option) *Service {
	s := &Service{store: store, policy: eval}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SaveInput carries the caller-supplied profile fields.
type SaveInput struct {
	Name        string
	Role        domain.ProfileRole
	ContactInfo string
}

// Save creates or overwrites the caller's own profile.
func (s *Service) Save(ctx context.Context, in SaveInput) (*UserProfile, error) {
	caller := requestcontext.Caller(ctx)
	p, err := New(caller, in.Name, in.Role, in.ContactInfo, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.policy.BootstrapCaller(ctx, caller); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, p); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "profile store failure")
	}
	return p, nil
}

// Get returns the caller's own profile.
func (s *Service) Get(ctx context.Context) (*UserProfile, error) {
	caller := requestcontext.Caller(ctx)
	if err := s.policy.RequireUser(ctx, caller); err != nil {
		return nil, err
	}
	return s.find(ctx, caller)
}

// GetFor returns the profile of the given principal. Self or admin only.
func (s *Service) GetFor(ctx context.Context, subject requestcontext.Principal) (*UserProfile, error) {
	caller := requestcontext.Caller(ctx)
	if err := s.policy.RequireOwnerOrAdmin(ctx, caller, subject); err != nil {
		return nil, err
	}
	return s.find(ctx, subject)
}

// ContactInfo exposes the principal's stored contact details to collaborating
// registries. Absence is not an error.
func (s *Service) ContactInfo(ctx context.Context, p requestcontext.Principal) (string, bool) {
	prof, err := s.store.FindByPrincipal(ctx, p)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) && s.logger != nil {
			s.logger.WarnContext(ctx, "profile lookup failed", "error", err)
		}
		return "", false
	}
	if prof.ContactInfo == "" {
		return "", false
	}
	return prof.ContactInfo, true
}

func (s *Service) find(ctx context.Context, p requestcontext.Principal) (*UserProfile, error) {
	prof, err := s.store.FindByPrincipal(ctx, p)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "profile not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "profile store failure")
	}
	return prof, nil
}
