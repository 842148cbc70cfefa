package httptransport

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"lifelink/internal/donor"
	"lifelink/internal/policy"
	"lifelink/internal/stats"
	"lifelink/pkg/domain"
	dErrors "lifelink/pkg/domain-errors"
	"lifelink/pkg/platform/httputil"
	"lifelink/pkg/requestcontext"
)

// StatsService defines the statistics operation the transport needs.
type StatsService interface {
	Overview(ctx context.Context) (*stats.Overview, error)
}

// DonorAdminService defines the admin-only donor listings.
type DonorAdminService interface {
	List(ctx context.Context) ([]*donor.Donor, error)
	ListByBloodType(ctx context.Context, bt domain.BloodType) ([]*donor.Donor, error)
	ListByAvailability(ctx context.Context, available bool) ([]*donor.Donor, error)
}

// RequestAdminService defines the admin-only request escape hatch.
type RequestAdminService interface {
	AdminOverrideStatus(ctx context.Context, requestID string, next domain.RequestStatus, reason string) error
}

// AdminHandler wires the administrative endpoints.
type AdminHandler struct {
	stats    StatsService
	donors   DonorAdminService
	requests RequestAdminService
	policy   *policy.Evaluator
}

func NewAdminHandler(stats StatsService, donors DonorAdminService, requests RequestAdminService, eval *policy.Evaluator) *AdminHandler {
	return &AdminHandler{stats: stats, donors: donors, requests: requests, policy: eval}
}

// Register mounts admin endpoints on the router. Authorization is enforced by
// the services, not the routing layer, so direct service use stays safe too.
func (h *AdminHandler) Register(r chi.Router) {
	r.Get("/admin/stats", h.handleStats)
	r.Get("/admin/donors", h.handleListDonors)
	r.Post("/admin/roles", h.handleAssignRole)
	r.Post("/admin/requests/{id}/status", h.handleOverrideStatus)
}

func (h *AdminHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	overview, err := h.stats.Overview(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, overview)
}

func (h *AdminHandler) handleListDonors(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	if raw := q.Get("blood_type"); raw != "" {
		bt, err := domain.ParseBloodType(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		donors, err := h.donors.ListByBloodType(ctx, bt)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, donors)
		return
	}
	if raw := q.Get("available"); raw != "" {
		available, err := strconv.ParseBool(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "available must be a boolean"))
			return
		}
		donors, err := h.donors.ListByAvailability(ctx, available)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, donors)
		return
	}

	donors, err := h.donors.List(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, donors)
}

type assignRoleRequest struct {
	Principal string `json:"principal"`
	Role      string `json:"role"`
}

func (h *AdminHandler) handleAssignRole(w http.ResponseWriter, r *http.Request) {
	var req assignRoleRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	ctx := r.Context()
	err := h.policy.AssignRole(ctx, requestcontext.Caller(ctx),
		requestcontext.Principal(req.Principal), policy.Role(req.Role))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type overrideStatusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

func (h *AdminHandler) handleOverrideStatus(w http.ResponseWriter, r *http.Request) {
	var req overrideStatusRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	status, err := domain.ParseRequestStatus(req.Status)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.requests.AdminOverrideStatus(r.Context(), chi.URLParam(r, "id"), status, req.Reason); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
