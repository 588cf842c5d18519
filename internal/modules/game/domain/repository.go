package domain

import (
	"context"
	"time"
)

// RoundRepository persists game rounds.
type RoundRepository interface {
	// Create inserts a new round. Returns ErrDuplicateRound when a
	// concurrent scheduler won the creation race.
	Create(ctx context.Context, round *GameRound) error
	// Save writes the round back in full.
	Save(ctx context.Context, round *GameRound) error
	// UpdateColumns writes only the named columns of the round. Every
	// production writer uses targeted updates so concurrent writers never
	// clobber each other's columns.
	UpdateColumns(ctx context.Context, round *GameRound, columns ...string) error
	// Locked fetches the newest round in an active phase under a
	// non-blocking exclusive row lock and runs fn while holding it; the
	// repository handed to fn writes inside the same transaction. Returns
	// ErrRoundLocked when another process holds the row, ErrNoActiveRound
	// when none exists, and fn's error after rolling its writes back.
	Locked(ctx context.Context, fn func(rounds RoundRepository, round *GameRound) error) error
	// Active fetches the newest active round without locking.
	Active(ctx context.Context) (*GameRound, error)
	// Latest fetches the newest round regardless of phase.
	Latest(ctx context.Context) (*GameRound, error)
	// ByID fetches one round.
	ByID(ctx context.Context, roundID string) (*GameRound, error)
	// CompleteStale marks every active round older than its own full length
	// as COMPLETED and returns the rounds it closed.
	CompleteStale(ctx context.Context, now time.Time) ([]*GameRound, error)
	// ClaimSettlement atomically stamps settled_at on the round, in the
	// store and on the struct. Returns ErrAlreadySettled when another path
	// claimed it first.
	ClaimSettlement(ctx context.Context, round *GameRound, now time.Time) error
}

// BetRepository persists bets.
type BetRepository interface {
	Get(ctx context.Context, roundID string, userID int64, number int) (*Bet, error)
	Save(ctx context.Context, bet *Bet) error
	Delete(ctx context.Context, bet *Bet) error
	ForUser(ctx context.Context, roundID string, userID int64) ([]*Bet, error)
	ForRoundAndNumber(ctx context.Context, roundID string, number int) ([]*Bet, error)
	ForRound(ctx context.Context, roundID string) ([]*Bet, error)
}

// SettlementRepository appends settlement records.
type SettlementRepository interface {
	Create(ctx context.Context, s *Settlement) error
	ForRound(ctx context.Context, roundID string) ([]*Settlement, error)
}

// SettingsRepository reads and writes live game settings. Durations must hit
// the store every call: the scheduler depends on fresh values per iteration.
type SettingsRepository interface {
	Durations(ctx context.Context) Durations
	Get(ctx context.Context, key, fallback string) string
	Set(ctx context.Context, key, value, description string) error
	DiceMode(ctx context.Context) string
}

// EventGate is the distributed at-most-once guard: an atomic set-if-absent
// with expiry in the shared store. True means this caller owns the event and
// must deliver it; false means another process already did.
type EventGate interface {
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// StateCache holds the advisory round snapshot shared with readers that
// bypass the scheduler.
type StateCache interface {
	Write(ctx context.Context, snap *Snapshot) error
	Read(ctx context.Context) (*Snapshot, error)
	Tick(ctx context.Context) (int, error)
}

// Publisher fans a phase-transition event out to every connected client.
// Implementations are fire-and-forget: failures are logged, never retried
// into the scheduler's critical path.
type Publisher interface {
	Publish(ctx context.Context, event interface{}) error
}
