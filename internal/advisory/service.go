// Package advisory implements the soft timing hints around matching: a donor
// response cooldown, a duplicate-request warning, and a stale-match flag.
// Everything here is best effort. Advisory state influences nothing in the
// core registries, and a failed marker store degrades to "no hint" rather
// than failing the calling operation.
package advisory

import (
	"context"
	"log/slog"
	"time"

	"lifelink/pkg/requestcontext"
)

// Advisory windows.
const (
	// donorResponseWindow is how long after expressing interest a donor is
	// considered "responding"; repeated nudges inside it are discouraged.
	donorResponseWindow = 5 * time.Minute

	// duplicateRequestWindow is how long a created request shadows further
	// requests by the same owner for the same type and location.
	duplicateRequestWindow = time.Hour

	// matchedActivityWindow is how long a confirmed match may sit without
	// fulfillment before it is flagged as stale.
	matchedActivityWindow = 12 * time.Hour
)

// Service evaluates the advisory windows against a marker store.
type Service struct {
	markers Markers
	logger  *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func NewService(markers Markers, opts ...Option) *Service {
	s := &Service{markers: markers}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NoteInterest opens the donor's response window after they express interest.
func (s *Service) NoteInterest(ctx context.Context, donorID string) {
	s.set(ctx, "cooldown:donor:"+donorID, donorResponseWindow)
}

// DonorResponding reports whether the donor is inside their response window.
func (s *Service) DonorResponding(ctx context.Context, donorID string) bool {
	return s.exists(ctx, "cooldown:donor:"+donorID)
}

// NoteRequestCreated opens the duplicate-request window for the owner's
// (type, location) pair.
func (s *Service) NoteRequestCreated(ctx context.Context, owner requestcontext.Principal, bloodType, location string) {
	s.set(ctx, duplicateKey(owner, bloodType, location), duplicateRequestWindow)
}

// LikelyDuplicateRequest reports whether the owner created a request for the
// same type and location inside the window.
func (s *Service) LikelyDuplicateRequest(ctx context.Context, owner requestcontext.Principal, bloodType, location string) bool {
	return s.exists(ctx, duplicateKey(owner, bloodType, location))
}

// NoteMatched opens the activity window for a freshly confirmed match.
func (s *Service) NoteMatched(ctx context.Context, requestID string) {
	s.set(ctx, "matched:"+requestID, matchedActivityWindow)
}

// MatchStale reports whether the request's match activity window has lapsed.
// Only meaningful for requests currently in the matched status; the caller
// checks that.
func (s *Service) MatchStale(ctx context.Context, requestID string) bool {
	return !s.exists(ctx, "matched:"+requestID)
}

func duplicateKey(owner requestcontext.Principal, bloodType, location string) string {
	return "recent:request:" + owner.String() + ":" + bloodType + ":" + location
}

func (s *Service) set(ctx context.Context, key string, window time.Duration) {
	if err := s.markers.Set(ctx, key, window); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "advisory marker write failed", "key", key, "error", err)
	}
}

func (s *Service) exists(ctx context.Context, key string) bool {
	ok, err := s.markers.Exists(ctx, key)
	if err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "advisory marker read failed", "key", key, "error", err)
		}
		return false
	}
	return ok
}
