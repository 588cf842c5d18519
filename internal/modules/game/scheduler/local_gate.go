package scheduler

import (
	"context"
	"sync"
	"time"
)

// LocalGate is the in-process event gate used by a standalone scheduler, and
// the fallback dedupe when the shared gate is unreachable. It only protects
// against duplicates from this process.
type LocalGate struct {
	mu      sync.Mutex
	expires map[string]time.Time
}

// NewLocalGate creates an in-process event gate.
func NewLocalGate() *LocalGate {
	return &LocalGate{expires: make(map[string]time.Time)}
}

func (g *LocalGate) TryAcquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	now := time.Now()

	g.mu.Lock()
	defer g.mu.Unlock()

	if exp, ok := g.expires[key]; ok && now.Before(exp) {
		return false, nil
	}
	g.expires[key] = now.Add(ttl)

	// Opportunistic sweep keeps the map from growing round over round.
	if len(g.expires) > 4096 {
		for k, exp := range g.expires {
			if now.After(exp) {
				delete(g.expires, k)
			}
		}
	}
	return true, nil
}
