package httptransport

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lifelink/internal/advisory"
	"lifelink/internal/donor"
	"lifelink/internal/match"
	"lifelink/internal/request"
	"lifelink/pkg/domain"
	"lifelink/pkg/platform/httputil"
	"lifelink/pkg/requestcontext"
)

// RequestService defines the request registry operations the transport needs.
type RequestService interface {
	Create(ctx context.Context, in request.CreateInput) (*request.BloodRequest, error)
	UpdateStatus(ctx context.Context, requestID string, next domain.RequestStatus) error
	Get(ctx context.Context, requestID string) (*request.BloodRequest, error)
	ListPublic(ctx context.Context) ([]request.PublicView, error)
	ListPublicByStatus(ctx context.Context, status domain.RequestStatus) ([]request.PublicView, error)
}

// InterestService defines the interest ledger operations the transport needs.
type InterestService interface {
	Express(ctx context.Context, requestID, donorID string) error
	ListSummaries(ctx context.Context, requestID string) ([]donor.Summary, error)
	Count(ctx context.Context, requestID string) (int, error)
}

// MatchService defines the confirmation operations the transport needs.
type MatchService interface {
	Confirm(ctx context.Context, requestID, donorID string) (*match.ContactResponse, error)
	AutoMatchCandidates(ctx context.Context, requestID string) ([]donor.Summary, error)
	BestMatch(ctx context.Context, requestID string) (*match.Suggestion, error)
}

// RequestHandler wires request, interest, and match endpoints.
type RequestHandler struct {
	requests  RequestService
	interests InterestService
	matches   MatchService
	advisory  *advisory.Service
}

func NewRequestHandler(requests RequestService, interests InterestService, matches MatchService, adv *advisory.Service) *RequestHandler {
	return &RequestHandler{requests: requests, interests: interests, matches: matches, advisory: adv}
}

// Register mounts request endpoints on the router.
func (h *RequestHandler) Register(r chi.Router) {
	r.Post("/requests", h.handleCreate)
	r.Get("/requests", h.handleList)
	r.Get("/requests/{id}", h.handleGet)
	r.Post("/requests/{id}/status", h.handleUpdateStatus)
	r.Post("/requests/{id}/interest", h.handleExpressInterest)
	r.Get("/requests/{id}/interests", h.handleListInterests)
	r.Post("/requests/{id}/match", h.handleConfirmMatch)
	r.Get("/requests/{id}/candidates", h.handleCandidates)
	r.Get("/requests/{id}/best-match", h.handleBestMatch)
}

type createRequestRequest struct {
	ID            string `json:"id"`
	RecipientName string `json:"recipient_name"`
	BloodType     string `json:"blood_type"`
	Location      string `json:"location"`
	Urgency       string `json:"urgency"`
	ContactInfo   string `json:"contact_info"`
	UnitsRequired int    `json:"units_required"`
}

type createRequestResponse struct {
	Request *request.BloodRequest `json:"request"`
	// DuplicateWarning is an advisory hint that the caller created a similar
	// request recently. The request is stored regardless.
	DuplicateWarning bool `json:"duplicate_warning,omitempty"`
}

func (h *RequestHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequestRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	bt, err := domain.ParseBloodType(req.BloodType)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	ctx := r.Context()
	caller := requestcontext.Caller(ctx)
	duplicate := false
	if h.advisory != nil {
		duplicate = h.advisory.LikelyDuplicateRequest(ctx, caller, bt.String(), req.Location)
	}

	created, err := h.requests.Create(ctx, request.CreateInput{
		ID:            req.ID,
		RecipientName: req.RecipientName,
		BloodType:     bt,
		Location:      req.Location,
		Urgency:       domain.Urgency(req.Urgency),
		ContactInfo:   req.ContactInfo,
		UnitsRequired: req.UnitsRequired,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if h.advisory != nil {
		h.advisory.NoteRequestCreated(ctx, caller, bt.String(), req.Location)
	}

	httputil.WriteJSON(w, http.StatusCreated, createRequestResponse{
		Request:          created,
		DuplicateWarning: duplicate,
	})
}

func (h *RequestHandler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := domain.ParseRequestStatus(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		views, err := h.requests.ListPublicByStatus(ctx, status)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, views)
		return
	}
	views, err := h.requests.ListPublic(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, views)
}

type getRequestResponse struct {
	Request *request.BloodRequest `json:"request"`
	// MatchStale flags a matched request whose activity window lapsed without
	// fulfillment.
	MatchStale bool `json:"match_stale,omitempty"`
}

func (h *RequestHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := h.requests.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	stale := false
	if h.advisory != nil && req.Status == domain.RequestStatusMatched {
		stale = h.advisory.MatchStale(ctx, req.ID)
	}
	httputil.WriteJSON(w, http.StatusOK, getRequestResponse{Request: req, MatchStale: stale})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *RequestHandler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	status, err := domain.ParseRequestStatus(req.Status)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.requests.UpdateStatus(r.Context(), chi.URLParam(r, "id"), status); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type expressInterestRequest struct {
	DonorID string `json:"donor_id"`
}

func (h *RequestHandler) handleExpressInterest(w http.ResponseWriter, r *http.Request) {
	var req expressInterestRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	ctx := r.Context()
	if err := h.interests.Express(ctx, chi.URLParam(r, "id"), req.DonorID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if h.advisory != nil {
		h.advisory.NoteInterest(ctx, req.DonorID)
	}
	w.WriteHeader(http.StatusNoContent)
}

type listInterestsResponse struct {
	Count  int             `json:"count"`
	Donors []donor.Summary `json:"donors"`
}

func (h *RequestHandler) handleListInterests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := chi.URLParam(r, "id")
	summaries, err := h.interests.ListSummaries(ctx, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	count, err := h.interests.Count(ctx, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, listInterestsResponse{Count: count, Donors: summaries})
}

type confirmMatchRequest struct {
	DonorID string `json:"donor_id"`
}

func (h *RequestHandler) handleConfirmMatch(w http.ResponseWriter, r *http.Request) {
	var req confirmMatchRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	ctx := r.Context()
	requestID := chi.URLParam(r, "id")
	contact, err := h.matches.Confirm(ctx, requestID, req.DonorID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if h.advisory != nil {
		h.advisory.NoteMatched(ctx, requestID)
	}
	httputil.WriteJSON(w, http.StatusOK, contact)
}

func (h *RequestHandler) handleCandidates(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.matches.AutoMatchCandidates(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summaries)
}

func (h *RequestHandler) handleBestMatch(w http.ResponseWriter, r *http.Request) {
	suggestion, err := h.matches.BestMatch(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, suggestion)
}
