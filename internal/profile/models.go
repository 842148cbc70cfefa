package profile

import (
	"strings"
	"time"

	"lifelink/pkg/domain"
	dErrors "lifelink/pkg/domain-errors"
	"lifelink/pkg/requestcontext"
)

// UserProfile is the account-level record for a principal. It is distinct
// from donor profiles: one person may own several donor records but has
// exactly one user profile, keyed by their principal.
type UserProfile struct {
	Principal   requestcontext.Principal `json:"principal"`
	Name        string                   `json:"name"`
	Role        domain.ProfileRole       `json:"role"`
	ContactInfo string                   `json:"contact_info"`
	UpdatedAt   time.Time                `json:"updated_at"`
}

// New validates and constructs a user profile.
func New(p requestcontext.Principal, name string, role domain.ProfileRole, contactInfo string, now time.Time) (*UserProfile, error) {
	if p.IsAnonymous() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "profile name is required")
	}
	if !role.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid profile role")
	}
	return &UserProfile{
		Principal:   p,
		Name:        name,
		Role:        role,
		ContactInfo: contactInfo,
		UpdatedAt:   now,
	}, nil
}
