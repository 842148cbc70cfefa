package match

import (
	"lifelink/internal/donor"
	"lifelink/pkg/domain"
)

// Policy names the compatibility filter a query applies. The donor dashboard
// deliberately shows exact-type requests only, while automated candidate
// search uses the full medical compatibility table. Keeping the two named
// prevents the filters from silently drifting together.
type Policy string

const (
	// ExactTypeOnly admits a donor only when blood types are identical.
	ExactTypeOnly Policy = "exact_type_only"

	// FullCompatibility admits any donor whose type may donate to the
	// recipient's type per the compatibility table.
	FullCompatibility Policy = "full_compatibility"
)

// Admits reports whether the donor type passes the policy for the requested
// recipient type.
func (p Policy) Admits(donorType, recipientType domain.BloodType) bool {
	switch p {
	case ExactTypeOnly:
		return donorType == recipientType
	case FullCompatibility:
		return domain.CanDonateTo(donorType, recipientType)
	}
	return false
}

// ContactResponse is the payload of a confirmed match. It is the single place
// in the system where a donor's contact information crosses to a requester.
type ContactResponse struct {
	Donor       donor.Summary `json:"donor"`
	ContactInfo string        `json:"contact_info"`
}

// Suggestion is a scored, redacted best-match recommendation. It discloses no
// contact information; confirmation remains a separate explicit step.
type Suggestion struct {
	Donor donor.Summary `json:"donor"`
	Score int           `json:"score"`
}

// Scoring weights for best-match ranking.
const (
	scoreExactType = 10
	scoreEligible  = 5
)

// scoreDonor ranks a compatible donor against the requested type. Exact type
// beats mere compatibility, and a clean health checklist breaks ties.
func scoreDonor(d *donor.Donor, recipientType domain.BloodType) int {
	score := 0
	if d.BloodType == recipientType {
		score += scoreExactType
	}
	if d.HealthChecklist.EligibleToDonate {
		score += scoreEligible
	}
	return score
}
