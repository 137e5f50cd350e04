package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redislib "github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) (*IntentRepository, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewIntentRepository(client), srv
}

func TestIntentRepository_Consume_FirstWins(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	ok, err := repo.Consume(ctx, "jti-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Consume(ctx, "jti-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIntentRepository_Consume_IndependentJTIs(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	ok, err := repo.Consume(ctx, "jti-a", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Consume(ctx, "jti-b", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIntentRepository_Consume_MarkerExpires(t *testing.T) {
	repo, srv := newTestRepository(t)
	ctx := context.Background()

	ok, err := repo.Consume(ctx, "jti-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	// After the intent's own TTL the marker is gone; the token is
	// expired by then so the window stays closed.
	srv.FastForward(2 * time.Minute)

	ok, err = repo.Consume(ctx, "jti-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}
