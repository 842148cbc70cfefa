// Package testutil holds helpers shared by tests across packages.
package testutil

import (
	"context"
	"time"

	"lifelink/pkg/requestcontext"
)

// FixedTime is the deterministic request time tests run at.
var FixedTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// AuthedContext returns a context carrying the principal and the fixed
// request time, simulating what the auth and request-time middleware do.
func AuthedContext(principal string) context.Context {
	ctx := requestcontext.WithCaller(context.Background(), requestcontext.Principal(principal))
	return requestcontext.WithTime(ctx, FixedTime)
}

// AnonymousContext returns a context with the fixed request time but no
// principal.
func AnonymousContext() context.Context {
	return requestcontext.WithTime(context.Background(), FixedTime)
}
