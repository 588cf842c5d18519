// Package usecase implements the business logic of the dice game.
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/frankieli/dice_arena/internal/modules/game/domain"
	"github.com/frankieli/dice_arena/pkg/logger"
	"golang.org/x/sync/singleflight"
)

// Staleness buffer before a cached snapshot is rebuilt from the database.
const snapshotBuffer = 5 * time.Second

// RoundUseCase serves round state to readers. The cache answers the common
// case; misses collapse through singleflight onto one database read, and a
// completed or stale latest round gets rotated on demand so readers never
// see a dead board between scheduler iterations.
type RoundUseCase struct {
	rounds   domain.RoundRepository
	settings domain.SettingsRepository
	cache    domain.StateCache
	sf       singleflight.Group
}

// NewRoundUseCase creates a new round use case
func NewRoundUseCase(rounds domain.RoundRepository, settings domain.SettingsRepository, cache domain.StateCache) *RoundUseCase {
	return &RoundUseCase{
		rounds:   rounds,
		settings: settings,
		cache:    cache,
	}
}

// Current returns the live snapshot of the active round.
func (uc *RoundUseCase) Current(ctx context.Context) (*domain.Snapshot, error) {
	now := time.Now()

	snap, err := uc.cache.Read(ctx)
	if err == nil && !snap.Stale(now, snapshotBuffer) {
		return snap, nil
	}
	if err != nil && !errors.Is(err, domain.ErrNoSnapshot) {
		logger.Warn(ctx).Err(err).Msg("round snapshot read failed, falling back to database")
	}

	v, err, _ := uc.sf.Do("current_round", func() (interface{}, error) {
		return uc.currentFromDB(ctx, time.Now())
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Snapshot), nil
}

// currentFromDB resolves the active round durably, creating a fresh one when
// the newest round has already run out, and repairs the cache on the way out.
func (uc *RoundUseCase) currentFromDB(ctx context.Context, now time.Time) (*domain.Snapshot, error) {
	round, err := uc.rounds.Active(ctx)
	if errors.Is(err, domain.ErrNoActiveRound) || (err == nil && round.Expired(now)) {
		round, err = uc.rotate(ctx, now)
	}
	if err != nil {
		return nil, err
	}

	snap := domain.SnapshotOf(round, now)
	if cacheErr := uc.cache.Write(ctx, snap); cacheErr != nil {
		logger.Warn(ctx).Err(cacheErr).Msg("round snapshot repair failed")
	}
	return snap, nil
}

// rotate creates the next round. Losing the creation race to a concurrent
// scheduler is fine: the winner's round is re-read and served.
func (uc *RoundUseCase) rotate(ctx context.Context, now time.Time) (*domain.GameRound, error) {
	durations := uc.settings.Durations(ctx)
	round := domain.NewRound(now, durations)
	err := uc.rounds.Create(ctx, round)
	if errors.Is(err, domain.ErrDuplicateRound) {
		return uc.rounds.Active(ctx)
	}
	if err != nil {
		return nil, err
	}
	logger.Info(ctx).Str("round_id", round.RoundID).Msg("round created on demand")
	return round, nil
}

// Tick returns the shared clock value for the active round, preferring the
// cached value and recomputing from the round row when the cache is out.
func (uc *RoundUseCase) Tick(ctx context.Context, round *domain.GameRound) int {
	if tick, err := uc.cache.Tick(ctx); err == nil && tick >= 1 {
		return tick
	}
	return round.Tick(time.Now())
}

// ByID returns one round's full row, for result lookups.
func (uc *RoundUseCase) ByID(ctx context.Context, roundID string) (*domain.GameRound, error) {
	return uc.rounds.ByID(ctx, roundID)
}

// Durations returns the live phase offsets.
func (uc *RoundUseCase) Durations(ctx context.Context) domain.Durations {
	return uc.settings.Durations(ctx)
}
