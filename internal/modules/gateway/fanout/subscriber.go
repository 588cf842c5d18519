// Package fanout bridges the shared event channel onto local websocket
// sessions.
package fanout

import (
	"context"
	"time"

	gameredis "github.com/frankieli/dice_arena/internal/modules/game/repository/redis"
	"github.com/frankieli/dice_arena/internal/modules/gateway/ws"
	"github.com/frankieli/dice_arena/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// Subscriber relays every payload published on the game channel to the
// local websocket manager. Payloads pass through opaque; the scheduler
// already shaped them.
type Subscriber struct {
	rdb     *redis.Client
	manager *ws.Manager
}

// NewSubscriber creates a fanout subscriber.
func NewSubscriber(rdb *redis.Client, manager *ws.Manager) *Subscriber {
	return &Subscriber{rdb: rdb, manager: manager}
}

// Run subscribes and relays until the context is cancelled, resubscribing
// after transport errors.
func (s *Subscriber) Run(ctx context.Context) {
	for {
		if err := s.relay(ctx); err != nil {
			logger.Error(ctx).Err(err).Msg("game channel subscription lost, reconnecting")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second):
		}
	}
}

func (s *Subscriber) relay(ctx context.Context) error {
	sub := s.rdb.Subscribe(ctx, gameredis.GameChannel)
	defer sub.Close()

	logger.Info(ctx).Str("channel", gameredis.GameChannel).Msg("📡 subscribed to game events")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return ctx.Err()
			}
			s.manager.Broadcast([]byte(msg.Payload))
		}
	}
}
