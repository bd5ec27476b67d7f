package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenRegistry struct{}

func (brokenRegistry) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("down")
}
func (brokenRegistry) Set(context.Context, string, []byte) error { return errors.New("down") }
func (brokenRegistry) Invalidate(context.Context, string) error { return errors.New("down") }

func TestLayered_ReadsThroughAndKeepsLocalCopy(t *testing.T) {
	ctx := context.Background()
	back := NewMemory()
	l := NewLayered(NewMemory(), back)

	require.NoError(t, back.Set(ctx, RecentDocumentsKey, []byte("[1]")))

	v, ok, err := l.Get(ctx, RecentDocumentsKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("[1]"), v)

	// served from the front once the shared entry is gone
	back.Evict(RecentDocumentsKey)
	v, ok, err = l.Get(ctx, RecentDocumentsKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("[1]"), v)
}

func TestLayered_InvalidateDropsLocalCopyEvenWhenBackFails(t *testing.T) {
	ctx := context.Background()
	front := NewMemory()
	l := NewLayered(front, brokenRegistry{})
	require.NoError(t, front.Set(ctx, "property-documents:p1:all", []byte("[]")))

	assert.Error(t, l.Invalidate(ctx, "property-documents:p1"))

	_, ok, _ := front.Get(ctx, "property-documents:p1:all")
	assert.False(t, ok)
}

func TestLayered_PeerInvalidationEvictsFront(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mr := miniredis.RunT(t)
	newInstance := func() *Layered {
		r := NewRedisFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
		t.Cleanup(func() { _ = r.Close() })
		l := NewLayered(NewMemory(), r)
		require.NoError(t, r.Subscribe(ctx, l.Evict))
		return l
	}
	a, b := newInstance(), newInstance()

	require.NoError(t, a.Set(ctx, "property-documents:p1:all", []byte("[]")))
	_, ok, err := a.Get(ctx, "property-documents:p1:all")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, b.Invalidate(ctx, "property-documents:p1"))

	assert.Eventually(t, func() bool {
		_, ok, _ := a.front.Get(ctx, "property-documents:p1:all")
		return !ok
	}, time.Second, 10*time.Millisecond)
}
