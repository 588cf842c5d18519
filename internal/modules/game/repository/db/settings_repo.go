package db

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/frankieli/dice_arena/internal/modules/game/domain"
	"github.com/frankieli/dice_arena/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Durations reads the four phase offsets fresh from the settings table. A
// missing or unparseable value falls back to its default, and an offset set
// that fails ordering validation is discarded wholesale so the scheduler
// never runs with inverted boundaries.
func (r *SettingsRepository) Durations(ctx context.Context) domain.Durations {
	def := domain.DefaultDurations
	d := domain.Durations{
		BettingClose: r.intSetting(ctx, domain.SettingBettingCloseTime, def.BettingClose),
		DiceRoll:     r.intSetting(ctx, domain.SettingDiceRollTime, def.DiceRoll),
		DiceResult:   r.intSetting(ctx, domain.SettingDiceResultTime, def.DiceResult),
		RoundEnd:     r.intSetting(ctx, domain.SettingRoundEndTime, def.RoundEnd),
	}
	if err := d.Validate(); err != nil {
		logger.Warn(ctx).Err(err).Msg("invalid duration settings, using defaults")
		return def
	}
	return d
}

func (r *SettingsRepository) intSetting(ctx context.Context, key string, fallback int) int {
	raw := r.Get(ctx, key, strconv.Itoa(fallback))
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func (r *SettingsRepository) Get(ctx context.Context, key, fallback string) string {
	var s domain.GameSetting
	err := r.db.WithContext(ctx).First(&s, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fallback
	}
	if err != nil {
		logger.Error(ctx).Err(err).Str("key", key).Msg("read game setting failed")
		return fallback
	}
	return s.Value
}

func (r *SettingsRepository) Set(ctx context.Context, key, value, description string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "description", "updated_at"}),
		}).
		Create(&domain.GameSetting{
			Key:         key,
			Value:       value,
			Description: description,
			UpdatedAt:   time.Now(),
		}).Error
}

func (r *SettingsRepository) DiceMode(ctx context.Context) string {
	mode := r.Get(ctx, domain.SettingDiceMode, domain.DiceModeRandom)
	if mode != domain.DiceModeManual {
		return domain.DiceModeRandom
	}
	return domain.DiceModeManual
}
