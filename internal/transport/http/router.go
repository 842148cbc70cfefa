// Package httptransport is the thin HTTP layer. Handlers decode, delegate to
// domain services, and encode; business rules stay in the service packages.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lifelink/internal/platform/middleware"
)

// Deps carries everything the router mounts.
type Deps struct {
	Logger    *slog.Logger
	Validator middleware.TokenValidator
	Metrics   http.Handler

	Auth    *AuthHandler
	Profile *ProfileHandler
	Donor   *DonorHandler
	Request *RequestHandler
	Admin   *AdminHandler
}

// NewRouter wires all endpoints. Everything except token issuance, health,
// and metrics sits behind bearer authentication.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(d.Logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}
	d.Auth.Register(r)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(d.Validator, d.Logger))
		d.Profile.Register(r)
		d.Donor.Register(r)
		d.Request.Register(r)
		d.Admin.Register(r)
	})

	return r
}
