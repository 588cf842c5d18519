package redis

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// GameChannel is the pub/sub channel every phase-transition event goes out
// on. Gateways subscribe and relay to their websocket clients.
const GameChannel = "game_room"

// Publisher fans events out over Redis pub/sub.
type Publisher struct {
	rdb *redis.Client
}

// NewPublisher creates a Redis pub/sub publisher.
func NewPublisher(rdb *redis.Client) *Publisher {
	return &Publisher{rdb: rdb}
}

func (p *Publisher) Publish(ctx context.Context, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, GameChannel, data).Err()
}
