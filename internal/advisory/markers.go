package advisory

import (
	"context"
	"time"
)

// Markers is a TTL-scoped presence store. A marker exists from Set until its
// window elapses; advisory checks only ever ask whether one is still present.
type Markers interface {
	Set(ctx context.Context, key string, window time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
}
