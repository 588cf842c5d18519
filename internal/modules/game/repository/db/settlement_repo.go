package db

import (
	"context"

	"github.com/frankieli/dice_arena/internal/modules/game/domain"
	"gorm.io/gorm"
)

type SettlementRepository struct {
	db *gorm.DB
}

func NewSettlementRepository(db *gorm.DB) *SettlementRepository {
	return &SettlementRepository{db: db}
}

func (r *SettlementRepository) Create(ctx context.Context, s *domain.Settlement) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *SettlementRepository) ForRound(ctx context.Context, roundID string) ([]*domain.Settlement, error) {
	var settlements []*domain.Settlement
	err := r.db.WithContext(ctx).
		Where("round_id = ?", roundID).
		Find(&settlements).Error
	return settlements, err
}
