package cache

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// Instrumented counts lookups and invalidations of the wrapped Registry per view.
type Instrumented struct {
	Registry
	lookups       *prometheus.CounterVec
	invalidations *prometheus.CounterVec
}

// NewInstrumented registers the cache collectors on reg and wraps inner.
func NewInstrumented(inner Registry, reg prometheus.Registerer) (*Instrumented, error) {
	c := &Instrumented{
		Registry: inner,
		lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "propdocs_view_cache_lookups_total",
				Help: "Cached view lookups by view and result.",
			},
			[]string{"view", "result"},
		),
		invalidations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "propdocs_view_invalidations_total",
				Help: "Cached view invalidation signals by view.",
			},
			[]string{"view"},
		),
	}
	if err := reg.Register(c.lookups); err != nil {
		return nil, err
	}
	if err := reg.Register(c.invalidations); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, ok, err := c.Registry.Get(ctx, key)
	result := "miss"
	switch {
	case err != nil:
		result = "error"
	case ok:
		result = "hit"
	}
	c.lookups.WithLabelValues(ViewName(key), result).Inc()
	return v, ok, err
}

func (c *Instrumented) Invalidate(ctx context.Context, key string) error {
	err := c.Registry.Invalidate(ctx, key)
	if err == nil {
		c.invalidations.WithLabelValues(ViewName(key)).Inc()
	}
	return err
}
