package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"propdocs/internal/config"
)

const (
	// InvalidateChannel carries invalidated keys between instances.
	InvalidateChannel = "views:invalidate"

	keyNamespace = "views:"
	scanBatch    = 100
)

// Redis is a Registry shared by every instance pointing at the same server.
// Invalidations are published on InvalidateChannel.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Registry = (*Redis)(nil)

// NewRedis connects to the configured server and verifies it answers.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*Redis, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisFromClient(client, time.Duration(cfg.TTLSec)*time.Second), nil
}

// NewRedisFromClient wraps an existing client. A zero ttl keeps entries until invalidated.
func NewRedisFromClient(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := r.client.Get(ctx, keyNamespace+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, keyNamespace+key, value, r.ttl).Err()
}

// Invalidate deletes key and key:* then publishes key. The publish happens even when
// nothing was cached so that peers holding their own copies drop them too.
func (r *Redis) Invalidate(ctx context.Context, key string) error {
	stored := keyNamespace + key
	doomed := []string{stored}

	iter := r.client.Scan(ctx, 0, stored+":*", scanBatch).Iterator()
	for iter.Next(ctx) {
		doomed = append(doomed, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan %s: %w", key, err)
	}

	if err := r.client.Del(ctx, doomed...).Err(); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	if err := r.client.Publish(ctx, InvalidateChannel, key).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", key, err)
	}
	return nil
}

// Subscribe calls fn for every key published on InvalidateChannel until ctx is done.
// It returns once the subscription is active.
func (r *Redis) Subscribe(ctx context.Context, fn func(key string)) error {
	pubsub := r.client.Subscribe(ctx, InvalidateChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("subscribe %s: %w", InvalidateChannel, err)
	}

	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				slog.Debug("view invalidation received", "component", "cache", "key", msg.Payload)
				fn(msg.Payload)
			}
		}
	}()
	return nil
}

// Ping checks connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}
