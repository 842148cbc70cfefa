package middleware

import (
	"net/http"
	"time"

	"lifelink/pkg/requestcontext"
)

// RequestTime stamps the request context with a single arrival time so every
// timestamp written while handling the request agrees.
func RequestTime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now().UTC())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
