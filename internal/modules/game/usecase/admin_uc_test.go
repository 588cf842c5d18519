package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/frankieli/dice_arena/internal/modules/game/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetDiceRecomputesResult(t *testing.T) {
	repos := newTestRepos(t)
	uc := NewAdminUseCase(repos.rounds, repos.settings)
	ctx := context.Background()

	round := domain.NewRound(time.Now(), domain.DefaultDurations)
	require.NoError(t, repos.rounds.Create(ctx, round))

	got, err := uc.SetDice(ctx, [6]int{2, 2, 5, 5, 5, 1}, false)
	require.NoError(t, err)
	assert.Equal(t, "2, 5", got.DiceResult)

	// Persisted, not just in memory.
	stored, err := repos.rounds.ByID(ctx, round.RoundID)
	require.NoError(t, err)
	assert.Equal(t, "2, 5", stored.DiceResult)
}

func TestSetDiceAfterCutoff(t *testing.T) {
	repos := newTestRepos(t)
	uc := NewAdminUseCase(repos.rounds, repos.settings)
	ctx := context.Background()

	// 60 seconds in: past the reveal at tick 51.
	round := domain.NewRound(time.Now().Add(-60*time.Second), domain.DefaultDurations)
	require.NoError(t, repos.rounds.Create(ctx, round))

	_, err := uc.SetDice(ctx, [6]int{1, 1, 3, 4, 5, 6}, false)
	assert.ErrorIs(t, err, domain.ErrResultCutoff)

	// Force overrides the cutoff.
	got, err := uc.SetDice(ctx, [6]int{1, 1, 3, 4, 5, 6}, true)
	require.NoError(t, err)
	assert.Equal(t, "1", got.DiceResult)
	assert.NotNil(t, got.ResultTime)
}

func TestSetDiceAfterSettlementRejected(t *testing.T) {
	repos := newTestRepos(t)
	uc := NewAdminUseCase(repos.rounds, repos.settings)
	ctx := context.Background()

	round := domain.NewRound(time.Now(), domain.DefaultDurations)
	require.NoError(t, repos.rounds.Create(ctx, round))
	require.NoError(t, repos.rounds.ClaimSettlement(ctx, round, time.Now()))

	_, err := uc.SetDice(ctx, [6]int{2, 2, 3, 4, 5, 6}, true)
	assert.ErrorIs(t, err, domain.ErrAlreadySettled)
}

func TestSetDiceRejectsBadFace(t *testing.T) {
	repos := newTestRepos(t)
	uc := NewAdminUseCase(repos.rounds, repos.settings)
	ctx := context.Background()

	round := domain.NewRound(time.Now(), domain.DefaultDurations)
	require.NoError(t, repos.rounds.Create(ctx, round))

	_, err := uc.SetDice(ctx, [6]int{0, 2, 3, 4, 5, 6}, false)
	assert.ErrorIs(t, err, domain.ErrInvalidFace)
}

func TestDiceModeRoundTrip(t *testing.T) {
	repos := newTestRepos(t)
	uc := NewAdminUseCase(repos.rounds, repos.settings)
	ctx := context.Background()

	assert.Equal(t, domain.DiceModeRandom, uc.DiceMode(ctx))
	require.NoError(t, uc.SetDiceMode(ctx, domain.DiceModeManual))
	assert.Equal(t, domain.DiceModeManual, uc.DiceMode(ctx))

	assert.Error(t, uc.SetDiceMode(ctx, "loaded"))
}

func TestUpdateDuration(t *testing.T) {
	repos := newTestRepos(t)
	uc := NewAdminUseCase(repos.rounds, repos.settings)
	ctx := context.Background()

	require.NoError(t, uc.UpdateDuration(ctx, domain.SettingBettingCloseTime, "20"))
	assert.Equal(t, 20, repos.settings.Durations(ctx).BettingClose)

	// Changes that would invert the phase order are rejected.
	assert.Error(t, uc.UpdateDuration(ctx, domain.SettingBettingCloseTime, "70"))
	assert.Error(t, uc.UpdateDuration(ctx, domain.SettingRoundEndTime, "10"))
	assert.Error(t, uc.UpdateDuration(ctx, domain.SettingBettingCloseTime, "soon"))
	assert.Error(t, uc.UpdateDuration(ctx, "NOT_A_SETTING", "10"))

	assert.Equal(t, 20, repos.settings.Durations(ctx).BettingClose)
}
