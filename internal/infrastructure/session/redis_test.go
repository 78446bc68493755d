package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"steno/internal/domain/session"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client), mr
}

func TestRedisStore_SaveAndLookup(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	err := store.Save(ctx, "abc123", 42, time.Now().Add(time.Hour))
	require.NoError(t, err)

	userID, err := store.Lookup(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestRedisStore_LookupUnknown(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Lookup(context.Background(), "missing")
	assert.ErrorIs(t, err, session.ErrInvalidSession)
}

func TestRedisStore_Expiry(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "abc123", 42, time.Now().Add(time.Minute)))

	mr.FastForward(2 * time.Minute)

	_, err := store.Lookup(ctx, "abc123")
	assert.ErrorIs(t, err, session.ErrInvalidSession)
}

func TestRedisStore_Revoke(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "abc123", 42, time.Now().Add(time.Hour)))
	require.NoError(t, store.Revoke(ctx, "abc123"))

	_, err := store.Lookup(ctx, "abc123")
	assert.ErrorIs(t, err, session.ErrInvalidSession)
}

func TestRedisStore_RejectsExpiredTTL(t *testing.T) {
	store, _ := newTestStore(t)

	err := store.Save(context.Background(), "abc123", 42, time.Now().Add(-time.Minute))
	assert.Error(t, err)
}
