package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/frankieli/dice_arena/internal/modules/game/domain"
	"github.com/redis/go-redis/v9"
)

const (
	currentRoundKey = "current_round"
	roundTimerKey   = "round_timer"

	// Snapshot TTL. Short on purpose: the scheduler refreshes every second,
	// so anything older than a minute is a dead scheduler's leftovers.
	snapshotTTL = 60 * time.Second
)

// StateCache keeps the advisory round snapshot in Redis. Both keys go out in
// one pipeline so readers never see the snapshot and the tick disagree for
// long.
type StateCache struct {
	rdb *redis.Client
}

// NewStateCache creates a Redis-backed state cache.
func NewStateCache(rdb *redis.Client) *StateCache {
	return &StateCache{rdb: rdb}
}

func (c *StateCache) Write(ctx context.Context, snap *domain.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	pipe := c.rdb.Pipeline()
	pipe.Set(ctx, currentRoundKey, data, snapshotTTL)
	pipe.Set(ctx, roundTimerKey, snap.Tick, snapshotTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (c *StateCache) Read(ctx context.Context) (*domain.Snapshot, error) {
	data, err := c.rdb.Get(ctx, currentRoundKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *StateCache) Tick(ctx context.Context) (int, error) {
	raw, err := c.rdb.Get(ctx, roundTimerKey).Result()
	if errors.Is(err, redis.Nil) {
		return 0, domain.ErrNoSnapshot
	}
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(raw)
}
