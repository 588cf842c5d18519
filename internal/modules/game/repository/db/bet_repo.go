package db

import (
	"context"
	"errors"

	"github.com/frankieli/dice_arena/internal/modules/game/domain"
	"gorm.io/gorm"
)

type BetRepository struct {
	db *gorm.DB
}

func NewBetRepository(db *gorm.DB) *BetRepository {
	return &BetRepository{db: db}
}

func (r *BetRepository) Get(ctx context.Context, roundID string, userID int64, number int) (*domain.Bet, error) {
	var bet domain.Bet
	err := r.db.WithContext(ctx).
		Where("round_id = ? AND user_id = ? AND number = ?", roundID, userID, number).
		First(&bet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrBetNotFound
	}
	if err != nil {
		return nil, err
	}
	return &bet, nil
}

func (r *BetRepository) Save(ctx context.Context, bet *domain.Bet) error {
	return r.db.WithContext(ctx).Save(bet).Error
}

func (r *BetRepository) Delete(ctx context.Context, bet *domain.Bet) error {
	return r.db.WithContext(ctx).Delete(bet).Error
}

func (r *BetRepository) ForUser(ctx context.Context, roundID string, userID int64) ([]*domain.Bet, error) {
	var bets []*domain.Bet
	err := r.db.WithContext(ctx).
		Where("round_id = ? AND user_id = ?", roundID, userID).
		Order("number ASC").
		Find(&bets).Error
	return bets, err
}

func (r *BetRepository) ForRoundAndNumber(ctx context.Context, roundID string, number int) ([]*domain.Bet, error) {
	var bets []*domain.Bet
	err := r.db.WithContext(ctx).
		Where("round_id = ? AND number = ?", roundID, number).
		Find(&bets).Error
	return bets, err
}

func (r *BetRepository) ForRound(ctx context.Context, roundID string) ([]*domain.Bet, error) {
	var bets []*domain.Bet
	err := r.db.WithContext(ctx).
		Where("round_id = ?", roundID).
		Find(&bets).Error
	return bets, err
}
