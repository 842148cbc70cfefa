// Package stats produces the administrative overview of the registries. The
// rollup is computed on demand from the stores; it is a reporting view, not a
// materialized aggregate.
package stats

import (
	"context"

	"lifelink/internal/donor"
	"lifelink/internal/policy"
	"lifelink/internal/request"
	"lifelink/pkg/domain"
	dErrors "lifelink/pkg/domain-errors"
	"lifelink/pkg/requestcontext"
)

// Overview is the point-in-time summary of both registries.
type Overview struct {
	TotalDonors       int            `json:"total_donors"`
	AvailableDonors   int            `json:"available_donors"`
	DonorsByBloodType map[string]int `json:"donors_by_blood_type"`
	TotalRequests     int            `json:"total_requests"`
	ActiveRequests    int            `json:"active_requests"`
	FulfilledRequests int            `json:"fulfilled_requests"`
	RequestsByUrgency map[string]int `json:"requests_by_urgency"`
	RequestsByStatus  map[string]int `json:"requests_by_status"`
}

// Service computes registry statistics. Admin only.
type Service struct {
	donors   donor.Store
	requests request.Store
	policy   *policy.Evaluator
}

func NewService(donors donor.Store, requests request.Store, eval *policy.Evaluator) *Service {
	return &Service{donors: donors, requests: requests, policy: eval}
}

// Overview returns the current rollup.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	if err := s.policy.RequireAdmin(ctx, requestcontext.Caller(ctx)); err != nil {
		return nil, err
	}

	donors, err := s.donors.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "donor store failure")
	}
	requests, err := s.requests.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "request store failure")
	}

	o := &Overview{
		TotalDonors:       len(donors),
		DonorsByBloodType: make(map[string]int),
		TotalRequests:     len(requests),
		RequestsByUrgency: make(map[string]int),
		RequestsByStatus:  make(map[string]int),
	}
	for _, d := range donors {
		if d.Availability {
			o.AvailableDonors++
		}
		o.DonorsByBloodType[d.BloodType.String()]++
	}
	for _, r := range requests {
		if r.IsOpen() {
			o.ActiveRequests++
		}
		if r.Status == domain.RequestStatusFulfilled {
			o.FulfilledRequests++
		}
		o.RequestsByUrgency[r.Urgency.String()]++
		o.RequestsByStatus[r.Status.String()]++
	}
	return o, nil
}
