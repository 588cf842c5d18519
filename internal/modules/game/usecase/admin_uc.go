package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/frankieli/dice_arena/internal/modules/game/domain"
	"github.com/frankieli/dice_arena/pkg/logger"
)

// AdminUseCase covers operator controls: pre-setting dice, switching the
// dice mode, and editing the live duration settings.
type AdminUseCase struct {
	rounds   domain.RoundRepository
	settings domain.SettingsRepository
}

// NewAdminUseCase creates a new admin use case
func NewAdminUseCase(rounds domain.RoundRepository, settings domain.SettingsRepository) *AdminUseCase {
	return &AdminUseCase{
		rounds:   rounds,
		settings: settings,
	}
}

// SetDice writes six faces onto the active round. The result string is
// recomputed from the faces, never trusted from the caller. Rejected once
// the reveal tick has passed unless force is set, and always rejected after
// settlement has claimed the round.
func (uc *AdminUseCase) SetDice(ctx context.Context, faces [6]int, force bool) (*domain.GameRound, error) {
	round, err := uc.rounds.Active(ctx)
	if err != nil {
		return nil, err
	}
	if round.Settled() {
		return nil, domain.ErrAlreadySettled
	}

	now := time.Now()
	tick := round.Tick(now)
	if !force && tick >= round.DiceResultSeconds {
		return nil, domain.ErrResultCutoff
	}

	if err := round.SetDice(faces); err != nil {
		return nil, err
	}
	if force && tick >= round.DiceResultSeconds && round.ResultTime == nil {
		round.ResultTime = &now
	}

	if err := uc.rounds.UpdateColumns(ctx, round,
		"dice_1", "dice_2", "dice_3", "dice_4", "dice_5", "dice_6",
		"dice_result", "result_time"); err != nil {
		return nil, err
	}

	logger.Info(ctx).
		Str("round_id", round.RoundID).
		Str("result", round.DiceResult).
		Int("tick", tick).
		Bool("force", force).
		Msg("dice set by operator")
	return round, nil
}

// DiceMode returns the current dice mode.
func (uc *AdminUseCase) DiceMode(ctx context.Context) string {
	return uc.settings.DiceMode(ctx)
}

// SetDiceMode switches between random and manual dice.
func (uc *AdminUseCase) SetDiceMode(ctx context.Context, mode string) error {
	if mode != domain.DiceModeRandom && mode != domain.DiceModeManual {
		return fmt.Errorf("unknown dice mode %q", mode)
	}
	return uc.settings.Set(ctx, domain.SettingDiceMode, mode, "dice mode")
}

// UpdateDuration edits one duration setting. The full offset set resulting
// from the change must still validate; rounds already running keep the
// offsets they were created with.
func (uc *AdminUseCase) UpdateDuration(ctx context.Context, key, value string) error {
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds <= 0 {
		return fmt.Errorf("duration %q must be a positive whole number of seconds", value)
	}

	d := uc.settings.Durations(ctx)
	switch key {
	case domain.SettingBettingCloseTime:
		d.BettingClose = seconds
	case domain.SettingDiceRollTime:
		d.DiceRoll = seconds
	case domain.SettingDiceResultTime:
		d.DiceResult = seconds
	case domain.SettingRoundEndTime:
		d.RoundEnd = seconds
	default:
		return fmt.Errorf("unknown duration setting %q", key)
	}
	if err := d.Validate(); err != nil {
		return err
	}

	if err := uc.settings.Set(ctx, key, value, "phase offset in seconds"); err != nil {
		return err
	}
	logger.Info(ctx).Str("key", key).Str("value", value).Msg("duration setting updated")
	return nil
}
