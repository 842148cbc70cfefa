package httptransport

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lifelink/internal/donor"
	"lifelink/internal/request"
	"lifelink/pkg/domain"
	dErrors "lifelink/pkg/domain-errors"
	"lifelink/pkg/platform/httputil"
)

// DonorService defines the donor registry operations the transport needs.
type DonorService interface {
	CreateOrUpdate(ctx context.Context, in donor.CreateOrUpdateInput) error
	Get(ctx context.Context, id string) (*donor.Donor, error)
	SetAvailability(ctx context.Context, donorID string, available bool) error
	RecordDonation(ctx context.Context, donorID, reference string) error
	CheckEligibility(ctx context.Context, donorID string) (donor.Eligibility, error)
}

// DonorQueries defines the matching queries exposed alongside donor routes.
type DonorQueries interface {
	NearbyDonorCount(ctx context.Context, bloodType domain.BloodType, location string) (int, error)
	OpenRequestsForDonor(ctx context.Context, donorID string) ([]request.PublicView, error)
}

// DonorHandler wires donor endpoints to the donor registry and match queries.
type DonorHandler struct {
	service DonorService
	queries DonorQueries
}

func NewDonorHandler(service DonorService, queries DonorQueries) *DonorHandler {
	return &DonorHandler{service: service, queries: queries}
}

// Register mounts donor endpoints on the router.
func (h *DonorHandler) Register(r chi.Router) {
	r.Put("/donors", h.handleUpsert)
	r.Get("/donors/nearby", h.handleNearbyCount)
	r.Get("/donors/{id}", h.handleGet)
	r.Post("/donors/{id}/availability", h.handleSetAvailability)
	r.Post("/donors/{id}/donations", h.handleRecordDonation)
	r.Get("/donors/{id}/eligibility", h.handleEligibility)
	r.Get("/donors/{id}/requests", h.handleOpenRequests)
}

type upsertDonorRequest struct {
	ID              string                `json:"id"`
	Name            string                `json:"name"`
	BloodType       string                `json:"blood_type"`
	Location        string                `json:"location"`
	ContactInfo     string                `json:"contact_info"`
	HealthChecklist donor.HealthChecklist `json:"health_checklist"`
	Availability    bool                  `json:"availability"`
}

func (h *DonorHandler) handleUpsert(w http.ResponseWriter, r *http.Request) {
	var req upsertDonorRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	bt, err := domain.ParseBloodType(req.BloodType)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	err = h.service.CreateOrUpdate(r.Context(), donor.CreateOrUpdateInput{
		ID:              req.ID,
		Name:            req.Name,
		BloodType:       bt,
		Location:        req.Location,
		ContactInfo:     req.ContactInfo,
		HealthChecklist: req.HealthChecklist,
		Availability:    req.Availability,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DonorHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, d)
}

type setAvailabilityRequest struct {
	Available bool `json:"available"`
}

func (h *DonorHandler) handleSetAvailability(w http.ResponseWriter, r *http.Request) {
	var req setAvailabilityRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.SetAvailability(r.Context(), chi.URLParam(r, "id"), req.Available); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type recordDonationRequest struct {
	Reference string `json:"reference"`
}

func (h *DonorHandler) handleRecordDonation(w http.ResponseWriter, r *http.Request) {
	var req recordDonationRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.RecordDonation(r.Context(), chi.URLParam(r, "id"), req.Reference); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DonorHandler) handleEligibility(w http.ResponseWriter, r *http.Request) {
	e, err := h.service.CheckEligibility(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, e)
}

func (h *DonorHandler) handleNearbyCount(w http.ResponseWriter, r *http.Request) {
	bt, err := domain.ParseBloodType(r.URL.Query().Get("blood_type"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	location := r.URL.Query().Get("location")
	if location == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "location is required"))
		return
	}
	count, err := h.queries.NearbyDonorCount(r.Context(), bt, location)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (h *DonorHandler) handleOpenRequests(w http.ResponseWriter, r *http.Request) {
	views, err := h.queries.OpenRequestsForDonor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, views)
}
