package cache

import "context"

// Layered fronts a shared registry with an in-process copy. Entries are read from the
// front first; invalidations published by other instances reach the front through Evict.
type Layered struct {
	front *Memory
	back  Registry
}

// NewLayered returns a registry that caches back's entries in front.
func NewLayered(front *Memory, back Registry) *Layered {
	return &Layered{front: front, back: back}
}

var _ Registry = (*Layered)(nil)

func (l *Layered) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if v, ok, _ := l.front.Get(ctx, key); ok {
		return v, true, nil
	}
	v, ok, err := l.back.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	_ = l.front.Set(ctx, key, v)
	return v, true, nil
}

func (l *Layered) Set(ctx context.Context, key string, value []byte) error {
	if err := l.back.Set(ctx, key, value); err != nil {
		return err
	}
	return l.front.Set(ctx, key, value)
}

// Invalidate drops the local copy before signalling the shared registry, so a failed
// broadcast still leaves this instance consistent.
func (l *Layered) Invalidate(ctx context.Context, key string) error {
	l.front.Evict(key)
	return l.back.Invalidate(ctx, key)
}

// Evict drops the local copy of key and its descendants. It is the handler for
// invalidations received from other instances.
func (l *Layered) Evict(key string) {
	l.front.Evict(key)
}
