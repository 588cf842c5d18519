package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/frankieli/dice_arena/internal/modules/game/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundCreateDuplicate(t *testing.T) {
	repo := NewRoundRepository(newTestDB(t))
	ctx := context.Background()
	now := time.Now()

	round := domain.NewRound(now, domain.DefaultDurations)
	require.NoError(t, repo.Create(ctx, round))

	dup := domain.NewRound(now, domain.DefaultDurations)
	assert.ErrorIs(t, repo.Create(ctx, dup), domain.ErrDuplicateRound)
}

func TestActiveReturnsNewest(t *testing.T) {
	repo := NewRoundRepository(newTestDB(t))
	ctx := context.Background()
	now := time.Now()

	old := domain.NewRound(now.Add(-2*time.Minute), domain.DefaultDurations)
	old.Status = domain.PhaseCompleted
	require.NoError(t, repo.Create(ctx, old))

	current := domain.NewRound(now, domain.DefaultDurations)
	require.NoError(t, repo.Create(ctx, current))

	got, err := repo.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, current.RoundID, got.RoundID)

	err = repo.Locked(ctx, func(_ domain.RoundRepository, locked *domain.GameRound) error {
		assert.Equal(t, current.RoundID, locked.RoundID)
		return nil
	})
	require.NoError(t, err)
}

func TestActiveNoRound(t *testing.T) {
	repo := NewRoundRepository(newTestDB(t))
	ctx := context.Background()

	_, err := repo.Active(ctx)
	assert.ErrorIs(t, err, domain.ErrNoActiveRound)

	err = repo.Locked(ctx, func(domain.RoundRepository, *domain.GameRound) error {
		t.Fatal("fn must not run without an active round")
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrNoActiveRound)
}

func TestLockedCommitsWrites(t *testing.T) {
	repo := NewRoundRepository(newTestDB(t))
	ctx := context.Background()

	round := domain.NewRound(time.Now(), domain.DefaultDurations)
	require.NoError(t, repo.Create(ctx, round))

	err := repo.Locked(ctx, func(rounds domain.RoundRepository, locked *domain.GameRound) error {
		require.NoError(t, locked.SetDice([6]int{4, 4, 4, 1, 2, 3}))
		return rounds.UpdateColumns(ctx, locked,
			"dice_1", "dice_2", "dice_3", "dice_4", "dice_5", "dice_6", "dice_result")
	})
	require.NoError(t, err)

	got, err := repo.ByID(ctx, round.RoundID)
	require.NoError(t, err)
	assert.Equal(t, "4", got.DiceResult)
}

func TestLockedRollsBackOnError(t *testing.T) {
	repo := NewRoundRepository(newTestDB(t))
	ctx := context.Background()

	round := domain.NewRound(time.Now(), domain.DefaultDurations)
	require.NoError(t, repo.Create(ctx, round))

	boom := errors.New("boom")
	err := repo.Locked(ctx, func(rounds domain.RoundRepository, locked *domain.GameRound) error {
		locked.Status = domain.PhaseClosed
		if err := rounds.UpdateColumns(ctx, locked, "status"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := repo.ByID(ctx, round.RoundID)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseBetting, got.Status)
}

func TestCompleteStale(t *testing.T) {
	repo := NewRoundRepository(newTestDB(t))
	ctx := context.Background()
	now := time.Now()

	stale := domain.NewRound(now.Add(-5*time.Minute), domain.DefaultDurations)
	require.NoError(t, repo.Create(ctx, stale))

	fresh := domain.NewRound(now, domain.DefaultDurations)
	require.NoError(t, repo.Create(ctx, fresh))

	closed, err := repo.CompleteStale(ctx, now)
	require.NoError(t, err)
	require.Len(t, closed, 1)
	assert.Equal(t, stale.RoundID, closed[0].RoundID)

	got, err := repo.ByID(ctx, stale.RoundID)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseCompleted, got.Status)
	assert.NotNil(t, got.EndTime)

	// The fresh round is untouched.
	got, err = repo.ByID(ctx, fresh.RoundID)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseBetting, got.Status)
}

func TestClaimSettlementOnce(t *testing.T) {
	repo := NewRoundRepository(newTestDB(t))
	ctx := context.Background()
	now := time.Now()

	round := domain.NewRound(now, domain.DefaultDurations)
	require.NoError(t, repo.Create(ctx, round))

	require.NoError(t, repo.ClaimSettlement(ctx, round, now))
	assert.True(t, round.Settled(), "claim must stamp the struct too")
	assert.ErrorIs(t, repo.ClaimSettlement(ctx, round, now), domain.ErrAlreadySettled)

	got, err := repo.ByID(ctx, round.RoundID)
	require.NoError(t, err)
	assert.True(t, got.Settled())
}

func TestUpdateColumnsPreservesSettledAt(t *testing.T) {
	repo := NewRoundRepository(newTestDB(t))
	ctx := context.Background()
	now := time.Now()

	round := domain.NewRound(now, domain.DefaultDurations)
	require.NoError(t, repo.Create(ctx, round))
	require.NoError(t, repo.ClaimSettlement(ctx, round, now))

	// A writer holding a pre-claim copy of the round must not be able to
	// wipe the claim with its own column writes.
	stale, err := repo.ByID(ctx, round.RoundID)
	require.NoError(t, err)
	stale.SettledAt = nil
	stale.TotalBets = 3
	stale.TotalAmount = 150
	require.NoError(t, repo.UpdateColumns(ctx, stale, "total_bets", "total_amount"))

	got, err := repo.ByID(ctx, round.RoundID)
	require.NoError(t, err)
	assert.True(t, got.Settled())
	assert.Equal(t, 3, got.TotalBets)
}

func TestSaveRoundTripsDice(t *testing.T) {
	repo := NewRoundRepository(newTestDB(t))
	ctx := context.Background()

	round := domain.NewRound(time.Now(), domain.DefaultDurations)
	require.NoError(t, repo.Create(ctx, round))

	require.NoError(t, round.SetDice([6]int{2, 2, 5, 5, 5, 1}))
	require.NoError(t, repo.Save(ctx, round))

	got, err := repo.ByID(ctx, round.RoundID)
	require.NoError(t, err)
	faces, ok := got.DiceValues()
	require.True(t, ok)
	assert.Equal(t, [6]int{2, 2, 5, 5, 5, 1}, faces)
	assert.Equal(t, "2, 5", got.DiceResult)
}
