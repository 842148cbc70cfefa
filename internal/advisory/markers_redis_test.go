//go:build integration

package advisory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifelink/pkg/testutil/containers"
)

func TestRedisMarkers(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()
	markers := NewRedisMarkers(rc.Client)

	exists, err := markers.Exists(ctx, "cooldown:donor:d1")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, markers.Set(ctx, "cooldown:donor:d1", time.Minute))

	exists, err = markers.Exists(ctx, "cooldown:donor:d1")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = markers.Exists(ctx, "cooldown:donor:other")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRedisMarkers_TTLExpires(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()
	markers := NewRedisMarkers(rc.Client)

	require.NoError(t, markers.Set(ctx, "matched:r1", 500*time.Millisecond))

	exists, err := markers.Exists(ctx, "matched:r1")
	require.NoError(t, err)
	assert.True(t, exists)

	assert.Eventually(t, func() bool {
		exists, err := markers.Exists(ctx, "matched:r1")
		return err == nil && !exists
	}, 5*time.Second, 100*time.Millisecond, "marker expires with its window")
}

func TestServiceOverRedis(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()
	svc := NewService(NewRedisMarkers(rc.Client))

	assert.False(t, svc.DonorResponding(ctx, "d1"))
	svc.NoteInterest(ctx, "d1")
	assert.True(t, svc.DonorResponding(ctx, "d1"))

	svc.NoteRequestCreated(ctx, "alice", "A_positive", "Springfield")
	assert.True(t, svc.LikelyDuplicateRequest(ctx, "alice", "A_positive", "Springfield"))
	assert.False(t, svc.LikelyDuplicateRequest(ctx, "bob", "A_positive", "Springfield"))

	svc.NoteMatched(ctx, "r1")
	assert.False(t, svc.MatchStale(ctx, "r1"))
	assert.True(t, svc.MatchStale(ctx, "r2"))
}
