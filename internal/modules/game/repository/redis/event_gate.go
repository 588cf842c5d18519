package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// EventGate implements the distributed at-most-once guard on Redis SET NX.
// The first process to set the key owns the event; everyone else observes
// false and stays silent. The TTL self-cleans keys after the round is over.
type EventGate struct {
	rdb *redis.Client
}

// NewEventGate creates a Redis-backed event gate.
func NewEventGate(rdb *redis.Client) *EventGate {
	return &EventGate{rdb: rdb}
}

func (g *EventGate) TryAcquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return g.rdb.SetNX(ctx, key, "1", ttl).Result()
}
