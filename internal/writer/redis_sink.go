// internal/writer/redis_sink.go
package writer

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/tamzrod/posturelink/internal/display"
)

// RedisSink keeps the latest view under one key with a TTL, so a dead
// display ages out instead of serving a frozen state.
type RedisSink struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	device string

	last    display.View
	pending bool
	started bool
}

func NewRedisSink(client *redis.Client, key string, ttl time.Duration, device string) *RedisSink {
	return &RedisSink{client: client, key: key, ttl: ttl, device: device}
}

// Show writes on change, and at least once per half TTL so the key
// does not expire while the display is alive.
func (r *RedisSink) Show(ctx context.Context, v display.View) error {
	stale := r.ttl > 0 && v.At.Sub(r.last.At) >= r.ttl/2
	if r.started && !r.pending && !stale && !v.Changed(r.last) {
		return nil
	}

	payload, err := marshalView(r.device, v)
	if err != nil {
		return fmt.Errorf("redis sink: marshal: %w", err)
	}
	if err := r.client.Set(ctx, r.key, payload, r.ttl).Err(); err != nil {
		r.pending = true
		return fmt.Errorf("redis sink: set %s: %w", r.key, err)
	}

	r.started = true
	r.pending = false
	r.last = v
	return nil
}
