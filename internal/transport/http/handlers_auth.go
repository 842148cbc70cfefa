package httptransport

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	dErrors "lifelink/pkg/domain-errors"
	"lifelink/pkg/platform/httputil"
	"lifelink/pkg/requestcontext"
)

// TokenIssuer signs access tokens for a principal.
type TokenIssuer interface {
	GenerateToken(p requestcontext.Principal, expiresIn time.Duration) (string, error)
}

// AuthHandler issues local development tokens. Production deployments sit
// behind an external identity provider that signs with the same key; this
// endpoint exists so the API is usable stand-alone.
type AuthHandler struct {
	issuer   TokenIssuer
	logger   *slog.Logger
	tokenTTL time.Duration
}

func NewAuthHandler(issuer TokenIssuer, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{issuer: issuer, logger: logger, tokenTTL: time.Hour}
}

// Register mounts the auth endpoints on the router.
func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/auth/token", h.handleToken)
}

type tokenRequest struct {
	Principal string `json:"principal"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (h *AuthHandler) handleToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	principal := strings.TrimSpace(req.Principal)
	if principal == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "principal is required"))
		return
	}

	token, err := h.issuer.GenerateToken(requestcontext.Principal(principal), h.tokenTTL)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "token issuance failed", "error", err)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "token issuance failed"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.tokenTTL.Seconds()),
	})
}
