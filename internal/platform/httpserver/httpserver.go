// Package httpserver builds the process HTTP server with timeouts suited to
// the short, store-bound request handlers this API serves.
package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server for the given handler. Handlers never block on
// long external I/O, so the timeouts are tight.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
