package db

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/frankieli/dice_arena/internal/modules/game/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RoundRepository struct {
	db *gorm.DB
}

func NewRoundRepository(db *gorm.DB) *RoundRepository {
	return &RoundRepository{db: db}
}

func (r *RoundRepository) Create(ctx context.Context, round *domain.GameRound) error {
	err := r.db.WithContext(ctx).Create(round).Error
	if err != nil && isDuplicateKey(err) {
		return domain.ErrDuplicateRound
	}
	return err
}

func (r *RoundRepository) Save(ctx context.Context, round *domain.GameRound) error {
	return r.db.WithContext(ctx).Save(round).Error
}

// UpdateColumns writes only the named columns of the round. Concurrent
// writers own disjoint columns, so a targeted write can never clobber
// another writer's stamp, settled_at in particular.
func (r *RoundRepository) UpdateColumns(ctx context.Context, round *domain.GameRound, columns ...string) error {
	return r.db.WithContext(ctx).Model(round).Select(columns).Updates(round).Error
}

// Locked runs fn while holding a non-blocking exclusive lock on the newest
// active round. The repository handed to fn writes through the same
// transaction, so fn's updates commit with the lock release and roll back
// together when fn errors. A lock conflict means another scheduler owns
// this tick; the caller skips it.
func (r *RoundRepository) Locked(ctx context.Context, fn func(rounds domain.RoundRepository, round *domain.GameRound) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		round, err := activeForUpdate(ctx, tx)
		if err != nil {
			return err
		}
		return fn(&RoundRepository{db: tx}, round)
	})
}

func activeForUpdate(ctx context.Context, tx *gorm.DB) (*domain.GameRound, error) {
	q := tx.WithContext(ctx)
	if q.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE", Options: "NOWAIT"})
	}

	var round domain.GameRound
	err := q.Where("status IN ?", domain.ActivePhases).
		Order("start_time DESC").
		First(&round).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNoActiveRound
	}
	if err != nil {
		if isLockConflict(err) {
			return nil, domain.ErrRoundLocked
		}
		return nil, err
	}
	return &round, nil
}

func (r *RoundRepository) Active(ctx context.Context) (*domain.GameRound, error) {
	var round domain.GameRound
	err := r.db.WithContext(ctx).
		Where("status IN ?", domain.ActivePhases).
		Order("start_time DESC").
		First(&round).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNoActiveRound
	}
	if err != nil {
		return nil, err
	}
	return &round, nil
}

func (r *RoundRepository) Latest(ctx context.Context) (*domain.GameRound, error) {
	var round domain.GameRound
	err := r.db.WithContext(ctx).
		Order("start_time DESC").
		First(&round).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNoActiveRound
	}
	if err != nil {
		return nil, err
	}
	return &round, nil
}

func (r *RoundRepository) ByID(ctx context.Context, roundID string) (*domain.GameRound, error) {
	var round domain.GameRound
	err := r.db.WithContext(ctx).First(&round, "round_id = ?", roundID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNoActiveRound
	}
	if err != nil {
		return nil, err
	}
	return &round, nil
}

// CompleteStale closes every active round that has outlived its own full
// length. Each round carries its own round_end_seconds, so the cutoff is
// computed per row rather than in SQL.
func (r *RoundRepository) CompleteStale(ctx context.Context, now time.Time) ([]*domain.GameRound, error) {
	var rounds []*domain.GameRound
	err := r.db.WithContext(ctx).
		Where("status IN ?", domain.ActivePhases).
		Find(&rounds).Error
	if err != nil {
		return nil, err
	}

	var closed []*domain.GameRound
	for _, round := range rounds {
		if !round.Expired(now) {
			continue
		}
		round.Complete(now)
		if err := r.db.WithContext(ctx).Model(&domain.GameRound{}).
			Where("round_id = ?", round.RoundID).
			Updates(map[string]interface{}{
				"status":   domain.PhaseCompleted,
				"end_time": round.EndTime,
			}).Error; err != nil {
			return closed, err
		}
		closed = append(closed, round)
	}
	return closed, nil
}

// ClaimSettlement stamps settled_at exactly once. The conditional UPDATE is
// the idempotency guard: zero rows affected means the round was already
// claimed by another path. A successful claim also stamps the in-memory
// round so later readers of the same struct see it settled.
func (r *RoundRepository) ClaimSettlement(ctx context.Context, round *domain.GameRound, now time.Time) error {
	res := r.db.WithContext(ctx).Model(&domain.GameRound{}).
		Where("round_id = ? AND settled_at IS NULL", round.RoundID).
		Update("settled_at", now)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrAlreadySettled
	}
	at := now
	round.SettledAt = &at
	return nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

func isLockConflict(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "55P03") ||
		strings.Contains(msg, "could not obtain lock")
}
