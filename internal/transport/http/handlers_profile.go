package httptransport

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lifelink/internal/profile"
	"lifelink/pkg/domain"
	"lifelink/pkg/platform/httputil"
	"lifelink/pkg/requestcontext"
)

// ProfileService defines the profile operations the transport needs.
type ProfileService interface {
	Save(ctx context.Context, in profile.SaveInput) (*profile.UserProfile, error)
	Get(ctx context.Context) (*profile.UserProfile, error)
	GetFor(ctx context.Context, subject requestcontext.Principal) (*profile.UserProfile, error)
}

// ProfileHandler wires profile endpoints to the profile service.
type ProfileHandler struct {
	service ProfileService
}

func NewProfileHandler(service ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// Register mounts profile endpoints on the router.
func (h *ProfileHandler) Register(r chi.Router) {
	r.Put("/profile", h.handleSave)
	r.Get("/profile", h.handleGet)
	r.Get("/profiles/{principal}", h.handleGetFor)
}

type saveProfileRequest struct {
	Name        string `json:"name"`
	Role        string `json:"role"`
	ContactInfo string `json:"contact_info"`
}

func (h *ProfileHandler) handleSave(w http.ResponseWriter, r *http.Request) {
	var req saveProfileRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	role, err := domain.ParseProfileRole(req.Role)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	p, err := h.service.Save(r.Context(), profile.SaveInput{
		Name:        req.Name,
		Role:        role,
		ContactInfo: req.ContactInfo,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *ProfileHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *ProfileHandler) handleGetFor(w http.ResponseWriter, r *http.Request) {
	subject := requestcontext.Principal(chi.URLParam(r, "principal"))
	p, err := h.service.GetFor(r.Context(), subject)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}
