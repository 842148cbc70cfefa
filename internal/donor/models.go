package donor

import (
	"fmt"
	"strings"
	"time"

	"lifelink/pkg/domain"
	dErrors "lifelink/pkg/domain-errors"
	"lifelink/pkg/requestcontext"
)

// HealthChecklist is the donor's self-reported health declaration. It is
// advisory: the parties must independently verify suitability.
type HealthChecklist struct {
	NoChronicIllness bool   `json:"no_chronic_illness"`
	NoRecentSurgery  bool   `json:"no_recent_surgery"`
	EligibleToDonate bool   `json:"eligible_to_donate"`
	Notes            string `json:"notes"`
}

// Donor is a registered donor profile.
//
// Invariants:
//   - Owner is immutable once set on first creation
//   - DonationHistory is append-only
//   - BloodType is one of the eight supported values
type Donor struct {
	ID              string                   `json:"id"`
	Name            string                   `json:"name"`
	BloodType       domain.BloodType         `json:"blood_type"`
	Location        string                   `json:"location"`
	ContactInfo     string                   `json:"contact_info"`
	HealthChecklist HealthChecklist          `json:"health_checklist"`
	DonationHistory []string                 `json:"donation_history"`
	LastDonationAt  *time.Time               `json:"last_donation_at,omitempty"`
	Availability    bool                     `json:"availability"`
	Owner           requestcontext.Principal `json:"owner"`
}

// Summary is the redacted donor view shared with requesters before a match is
// confirmed. It deliberately excludes contact information.
type Summary struct {
	DonorID   string           `json:"donor_id"`
	Name      string           `json:"name"`
	BloodType domain.BloodType `json:"blood_type"`
	Location  string           `json:"location"`
}

// Summary returns the redacted view of the donor.
func (d *Donor) Summary() Summary {
	return Summary{
		DonorID:   d.ID,
		Name:      d.Name,
		BloodType: d.BloodType,
		Location:  d.Location,
	}
}

// LocationMatches compares locations case-insensitively. Location is an
// exact-match key, not geocoded.
func (d *Donor) LocationMatches(location string) bool {
	return strings.EqualFold(strings.TrimSpace(d.Location), strings.TrimSpace(location))
}

// MergeExisting carries the immutable and append-only fields of an existing
// record onto an incoming upsert. All other fields are overwritten by the
// caller's values.
func (d *Donor) MergeExisting(existing *Donor) {
	d.Owner = existing.Owner
	d.DonationHistory = existing.DonationHistory
	d.LastDonationAt = existing.LastDonationAt
}

// RecordDonation appends a donation reference and advances the last-donation
// timestamp.
func (d *Donor) RecordDonation(ref string, at time.Time) {
	d.DonationHistory = append(d.DonationHistory, ref)
	d.LastDonationAt = &at
}

// New validates and constructs a donor profile owned by the given principal.
func New(id, name string, bloodType domain.BloodType, location, contactInfo string,
	checklist HealthChecklist, availability bool, owner requestcontext.Principal) (*Donor, error) {
	if strings.TrimSpace(id) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "donor id is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "donor name is required")
	}
	if !bloodType.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid blood type")
	}
	if strings.TrimSpace(location) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "donor location is required")
	}
	if owner.IsAnonymous() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "donor owner is required")
	}
	return &Donor{
		ID:              id,
		Name:            name,
		BloodType:       bloodType,
		Location:        location,
		ContactInfo:     contactInfo,
		HealthChecklist: checklist,
		Availability:    availability,
		Owner:           owner,
	}, nil
}

// minDonationInterval is the minimum gap between whole-blood donations.
const minDonationInterval = 56 * 24 * time.Hour

// Eligibility is the advisory result of an eligibility check.
type Eligibility struct {
	Eligible bool     `json:"eligible"`
	Reasons  []string `json:"reasons,omitempty"`
}

// CheckEligibility evaluates the advisory eligibility rules as of now.
func (d *Donor) CheckEligibility(now time.Time) Eligibility {
	var reasons []string
	if d.LastDonationAt != nil {
		if since := now.Sub(*d.LastDonationAt); since < minDonationInterval {
			wait := int((minDonationInterval-since).Hours()/24) + 1
			reasons = append(reasons, fmt.Sprintf("must wait %d more days since last donation", wait))
		}
	}
	if !d.HealthChecklist.EligibleToDonate {
		reasons = append(reasons, "health checklist does not declare eligibility")
	}
	if !d.HealthChecklist.NoChronicIllness {
		reasons = append(reasons, "chronic illness declared")
	}
	if !d.HealthChecklist.NoRecentSurgery {
		reasons = append(reasons, "recent surgery declared")
	}
	if !d.Availability {
		reasons = append(reasons, "donor marked as unavailable")
	}
	return Eligibility{Eligible: len(reasons) == 0, Reasons: reasons}
}
