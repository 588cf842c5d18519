package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/frankieli/dice_arena/internal/modules/game/domain"
	"github.com/frankieli/dice_arena/internal/modules/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func settledRound(t *testing.T, repos testRepos, faces [6]int) *domain.GameRound {
	t.Helper()
	ctx := context.Background()

	round := domain.NewRound(time.Now().Add(-time.Minute), domain.DefaultDurations)
	require.NoError(t, round.SetDice(faces))
	require.NoError(t, repos.rounds.Create(ctx, round))
	return round
}

func placeBet(t *testing.T, repos testRepos, roundID string, userID int64, number int, amount float64) *domain.Bet {
	t.Helper()
	bet := &domain.Bet{
		UserID:     userID,
		RoundID:    roundID,
		Number:     number,
		ChipAmount: amount,
		CreatedAt:  time.Now(),
	}
	require.NoError(t, repos.bets.Save(context.Background(), bet))
	return bet
}

func TestSettleSplitsPayout(t *testing.T) {
	repos := newTestRepos(t)
	walletSvc := wallet.NewMockService()
	uc := NewPayoutUseCase(repos.rounds, repos.bets, repos.settlements, walletSvc)
	ctx := context.Background()

	// 5 occurs three times: a 100 stake pays 300 total, 270 credited.
	round := settledRound(t, repos, [6]int{5, 2, 5, 3, 5, 1})
	winner := placeBet(t, repos, round.RoundID, 1001, 5, 100)
	placeBet(t, repos, round.RoundID, 1002, 4, 50) // loses

	require.NoError(t, uc.Settle(ctx, round, time.Now()))

	balance, _ := walletSvc.Balance(ctx, 1001)
	assert.InDelta(t, 270.0, balance, 0.001)

	loserBalance, _ := walletSvc.Balance(ctx, 1002)
	assert.Zero(t, loserBalance)

	got, err := repos.bets.Get(ctx, round.RoundID, 1001, 5)
	require.NoError(t, err)
	assert.True(t, got.IsWinner)
	assert.InDelta(t, 300.0, got.PayoutAmount, 0.001)

	settlements, err := repos.settlements.ForRound(ctx, round.RoundID)
	require.NoError(t, err)
	require.Len(t, settlements, 1)
	assert.Equal(t, winner.UserID, settlements[0].UserID)
	assert.InDelta(t, 300.0, settlements[0].TotalPayout, 0.001)
	assert.InDelta(t, 270.0, settlements[0].WinnerAmount, 0.001)
	assert.InDelta(t, 30.0, settlements[0].CommissionAmount, 0.001)
}

func TestSettleMultipleWinningNumbers(t *testing.T) {
	repos := newTestRepos(t)
	walletSvc := wallet.NewMockService()
	uc := NewPayoutUseCase(repos.rounds, repos.bets, repos.settlements, walletSvc)
	ctx := context.Background()

	// 2 pairs and 5 triples: both numbers win with their own multipliers.
	round := settledRound(t, repos, [6]int{2, 2, 5, 5, 5, 1})
	placeBet(t, repos, round.RoundID, 2001, 2, 100) // pays 200
	placeBet(t, repos, round.RoundID, 2001, 5, 100) // pays 300

	require.NoError(t, uc.Settle(ctx, round, time.Now()))

	balance, _ := walletSvc.Balance(ctx, 2001)
	assert.InDelta(t, 450.0, balance, 0.001) // (200+300) * 0.9

	settlements, err := repos.settlements.ForRound(ctx, round.RoundID)
	require.NoError(t, err)
	assert.Len(t, settlements, 2)
}

func TestSettleTwiceDoesNotDoubleCredit(t *testing.T) {
	repos := newTestRepos(t)
	walletSvc := wallet.NewMockService()
	uc := NewPayoutUseCase(repos.rounds, repos.bets, repos.settlements, walletSvc)
	ctx := context.Background()

	round := settledRound(t, repos, [6]int{5, 2, 5, 3, 5, 1})
	placeBet(t, repos, round.RoundID, 3001, 5, 100)

	require.NoError(t, uc.Settle(ctx, round, time.Now()))
	assert.ErrorIs(t, uc.Settle(ctx, round, time.Now()), domain.ErrAlreadySettled)

	// The stored row keeps the claim through the totals write, so even a
	// fresh read of the round cannot be settled again.
	stored, err := repos.rounds.ByID(ctx, round.RoundID)
	require.NoError(t, err)
	assert.True(t, stored.Settled())
	assert.ErrorIs(t, uc.Settle(ctx, stored, time.Now()), domain.ErrAlreadySettled)

	balance, _ := walletSvc.Balance(ctx, 3001)
	assert.InDelta(t, 270.0, balance, 0.001)

	settlements, err := repos.settlements.ForRound(ctx, round.RoundID)
	require.NoError(t, err)
	assert.Len(t, settlements, 1)
}

func TestSettleNoWinners(t *testing.T) {
	repos := newTestRepos(t)
	walletSvc := wallet.NewMockService()
	uc := NewPayoutUseCase(repos.rounds, repos.bets, repos.settlements, walletSvc)
	ctx := context.Background()

	round := settledRound(t, repos, [6]int{1, 2, 3, 4, 5, 6})
	placeBet(t, repos, round.RoundID, 4001, 3, 100)

	require.NoError(t, uc.Settle(ctx, round, time.Now()))

	balance, _ := walletSvc.Balance(ctx, 4001)
	assert.Zero(t, balance)

	settlements, err := repos.settlements.ForRound(ctx, round.RoundID)
	require.NoError(t, err)
	assert.Empty(t, settlements)

	// Totals still stamped onto the round.
	got, err := repos.rounds.ByID(ctx, round.RoundID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.TotalBets)
	assert.InDelta(t, 100.0, got.TotalAmount, 0.001)
}

func TestSettleWithoutDiceFails(t *testing.T) {
	repos := newTestRepos(t)
	uc := NewPayoutUseCase(repos.rounds, repos.bets, repos.settlements, wallet.NewMockService())
	ctx := context.Background()

	round := domain.NewRound(time.Now(), domain.DefaultDurations)
	require.NoError(t, repos.rounds.Create(ctx, round))

	assert.Error(t, uc.Settle(ctx, round, time.Now()))
	assert.False(t, round.Settled())
}
