package profile

import (
	"context"

	"lifelink/pkg/requestcontext"
)

// Store is the persistence interface for user profiles. Stores return
// pkg/platform/sentinel errors; the service translates them.
type Store interface {
	// Save creates or overwrites the principal's profile.
	Save(ctx context.Context, p *UserProfile) error

	// FindByPrincipal returns the profile; sentinel.ErrNotFound when absent.
	FindByPrincipal(ctx context.Context, principal requestcontext.Principal) (*UserProfile, error)
}
