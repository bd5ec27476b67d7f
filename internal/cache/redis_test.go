package cache

import (
	"context"
	"testing"
	"time"

	"propdocs/internal/config"
	"propdocs/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	r := NewRedisFromClient(client, time.Minute)
	t.Cleanup(func() { _ = r.Close() })
	return r, mr
}

func TestRedis_GetSet(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)

	_, ok, err := r.Get(ctx, RecentDocumentsKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.Set(ctx, RecentDocumentsKey, []byte(`[]`)))

	v, ok, err := r.Get(ctx, RecentDocumentsKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte(`[]`), v)

	assert.True(t, mr.Exists("views:recent-documents"))
	assert.Equal(t, time.Minute, mr.TTL("views:recent-documents"))
}

func TestRedis_InvalidateDropsDescendants(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRedis(t)
	tax := model.DocumentTypeTax

	require.NoError(t, r.Set(ctx, PropertyDocumentsKey("p1", &tax), []byte("1")))
	require.NoError(t, r.Set(ctx, PropertyDocumentsKey("p1", nil), []byte("2")))
	require.NoError(t, r.Set(ctx, PropertyDocumentsKey("p10", nil), []byte("3")))

	require.NoError(t, r.Invalidate(ctx, PropertyDocumentsPrefix("p1")))

	_, ok, _ := r.Get(ctx, PropertyDocumentsKey("p1", &tax))
	assert.False(t, ok)
	_, ok, _ = r.Get(ctx, PropertyDocumentsKey("p1", nil))
	assert.False(t, ok)
	_, ok, _ = r.Get(ctx, PropertyDocumentsKey("p10", nil))
	assert.True(t, ok)
}

func TestRedis_SubscribeReceivesInvalidations(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r, _ := newTestRedis(t)

	got := make(chan string, 1)
	require.NoError(t, r.Subscribe(ctx, func(key string) { got <- key }))

	require.NoError(t, r.Invalidate(ctx, ExpiringDocumentsKey))

	select {
	case key := <-got:
		assert.Equal(t, ExpiringDocumentsKey, key)
	case <-time.After(2 * time.Second):
		t.Fatal("invalidation not received")
	}
}

func TestNewRedis(t *testing.T) {
	ctx := context.Background()

	_, err := NewRedis(ctx, config.RedisConfig{})
	assert.EqualError(t, err, "redis address is required")

	mr := miniredis.RunT(t)
	r, err := NewRedis(ctx, config.RedisConfig{Addr: mr.Addr(), TTLSec: 30})
	require.NoError(t, err)
	defer r.Close()
	assert.NoError(t, r.Ping(ctx))

	addr := mr.Addr()
	mr.Close()
	_, err = NewRedis(ctx, config.RedisConfig{Addr: addr})
	assert.Error(t, err)
}
