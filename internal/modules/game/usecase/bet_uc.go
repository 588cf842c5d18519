package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frankieli/dice_arena/internal/modules/game/domain"
	"github.com/frankieli/dice_arena/internal/modules/wallet"
	"github.com/frankieli/dice_arena/pkg/logger"
)

// BetUseCase handles wager placement and removal against the active round.
type BetUseCase struct {
	rounds domain.RoundRepository
	bets   domain.BetRepository
	wallet wallet.Service
	cache  domain.StateCache
}

// NewBetUseCase creates a new bet use case
func NewBetUseCase(rounds domain.RoundRepository, bets domain.BetRepository, w wallet.Service, cache domain.StateCache) *BetUseCase {
	return &BetUseCase{
		rounds: rounds,
		bets:   bets,
		wallet: w,
		cache:  cache,
	}
}

// PlaceBet wagers amount on a number in the active round. A repeat wager on
// the same number piles onto the existing bet row. The wallet debit happens
// first; a failure writing the bet refunds it.
func (uc *BetUseCase) PlaceBet(ctx context.Context, userID int64, number int, amount float64) (*domain.Bet, error) {
	if number < domain.MinFace || number > domain.MaxFace {
		return nil, domain.ErrInvalidNumber
	}
	if amount <= 0 {
		return nil, fmt.Errorf("bet amount must be positive, got %.2f", amount)
	}

	round, err := uc.openRound(ctx)
	if err != nil {
		return nil, err
	}

	desc := fmt.Sprintf("bet on %d in round %s", number, round.RoundID)
	if _, err := uc.wallet.Debit(ctx, userID, amount, wallet.TypeBet, desc); err != nil {
		return nil, err
	}

	bet, err := uc.bets.Get(ctx, round.RoundID, userID, number)
	switch {
	case errors.Is(err, domain.ErrBetNotFound):
		bet = &domain.Bet{
			UserID:     userID,
			RoundID:    round.RoundID,
			Number:     number,
			ChipAmount: amount,
			CreatedAt:  time.Now(),
		}
	case err != nil:
		uc.refund(ctx, userID, amount, round.RoundID)
		return nil, err
	default:
		bet.ChipAmount += amount
	}

	if err := uc.bets.Save(ctx, bet); err != nil {
		uc.refund(ctx, userID, amount, round.RoundID)
		return nil, err
	}

	logger.Info(ctx).
		Int64("user_id", userID).
		Str("round_id", round.RoundID).
		Int("number", number).
		Float64("amount", amount).
		Msg("bet placed")
	return bet, nil
}

// RemoveBet cancels the user's bet on a number and refunds the full stake.
// Only allowed while betting is still open.
func (uc *BetUseCase) RemoveBet(ctx context.Context, userID int64, number int) (float64, error) {
	if number < domain.MinFace || number > domain.MaxFace {
		return 0, domain.ErrInvalidNumber
	}

	round, err := uc.openRound(ctx)
	if err != nil {
		return 0, err
	}

	bet, err := uc.bets.Get(ctx, round.RoundID, userID, number)
	if err != nil {
		return 0, err
	}

	if err := uc.bets.Delete(ctx, bet); err != nil {
		return 0, err
	}

	desc := fmt.Sprintf("refund for %d in round %s", number, round.RoundID)
	if _, err := uc.wallet.Credit(ctx, userID, bet.ChipAmount, wallet.TypeRefund, desc); err != nil {
		logger.Error(ctx).Err(err).
			Int64("user_id", userID).
			Int64("bet_id", bet.ID).
			Msg("refund credit failed after bet delete")
		return 0, err
	}

	logger.Info(ctx).
		Int64("user_id", userID).
		Str("round_id", round.RoundID).
		Int("number", number).
		Float64("amount", bet.ChipAmount).
		Msg("bet removed")
	return bet.ChipAmount, nil
}

// MyBets returns the user's bets in the active round.
func (uc *BetUseCase) MyBets(ctx context.Context, userID int64) ([]*domain.Bet, error) {
	round, err := uc.rounds.Active(ctx)
	if err != nil {
		return nil, err
	}
	return uc.bets.ForUser(ctx, round.RoundID, userID)
}

// openRound fetches the active round and verifies betting is still open.
// The cached tick is advisory; the round row's clock decides on a miss.
func (uc *BetUseCase) openRound(ctx context.Context) (*domain.GameRound, error) {
	round, err := uc.rounds.Active(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if round.Expired(now) {
		return nil, domain.ErrRoundEnded
	}

	tick, err := uc.cache.Tick(ctx)
	if err != nil || tick < 1 {
		tick = round.Tick(now)
	}
	if tick >= round.BettingCloseSeconds {
		return nil, domain.ErrBettingClosed
	}
	return round, nil
}

func (uc *BetUseCase) refund(ctx context.Context, userID int64, amount float64, roundID string) {
	desc := fmt.Sprintf("compensating refund in round %s", roundID)
	if _, err := uc.wallet.Credit(ctx, userID, amount, wallet.TypeRefund, desc); err != nil {
		logger.Error(ctx).Err(err).
			Int64("user_id", userID).
			Float64("amount", amount).
			Msg("compensating refund failed, balance out of sync")
	}
}
