package domain

import dErrors "lifelink/pkg/domain-errors"

// ProfileRole labels how a user participates: requesting blood, donating, or
// both. It is descriptive only; authorization is decided by the policy layer.
type ProfileRole string

const (
	ProfileRoleRequester ProfileRole = "requester"
	ProfileRoleDonor     ProfileRole = "donor"
	ProfileRoleBoth      ProfileRole = "both"
)

var validProfileRoles = map[ProfileRole]bool{
	ProfileRoleRequester: true,
	ProfileRoleDonor:     true,
	ProfileRoleBoth:      true,
}

// ParseProfileRole constructs a ProfileRole from external input.
func ParseProfileRole(s string) (ProfileRole, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "profile role cannot be empty")
	}
	r := ProfileRole(s)
	if !validProfileRoles[r] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid profile role")
	}
	return r, nil
}

// IsValid reports whether the role is one of the supported values.
func (r ProfileRole) IsValid() bool {
	return validProfileRoles[r]
}

// String returns the string representation of the role.
func (r ProfileRole) String() string {
	return string(r)
}

// Urgency is the free-form urgency level attached to a request. The well-known
// levels get constants so statistics can bucket them, but arbitrary values are
// accepted.
type Urgency string

const (
	UrgencyCritical Urgency = "critical"
	UrgencyUrgent   Urgency = "urgent"
	UrgencyModerate Urgency = "moderate"
)

// String returns the string representation of the urgency.
func (u Urgency) String() string {
	return string(u)
}
