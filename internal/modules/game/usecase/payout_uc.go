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

// PayoutUseCase settles a resolved round: every bet on a winning number pays
// stake times the number's occurrence count, split 90% to the bettor and 10%
// house commission.
type PayoutUseCase struct {
	rounds      domain.RoundRepository
	bets        domain.BetRepository
	settlements domain.SettlementRepository
	wallet      wallet.Service
}

// NewPayoutUseCase creates a new payout use case
func NewPayoutUseCase(rounds domain.RoundRepository, bets domain.BetRepository, settlements domain.SettlementRepository, w wallet.Service) *PayoutUseCase {
	return &PayoutUseCase{
		rounds:      rounds,
		bets:        bets,
		settlements: settlements,
		wallet:      w,
	}
}

// Settle pays out one round exactly once. The settled_at claim happens
// before any credit, so a second caller returns ErrAlreadySettled without
// touching a wallet. Per-bet failures after the claim are logged and
// skipped rather than retried: re-running the whole round would double
// credit the bets that already succeeded.
func (uc *PayoutUseCase) Settle(ctx context.Context, round *domain.GameRound, now time.Time) error {
	faces, ok := round.DiceValues()
	if !ok {
		return fmt.Errorf("round %s has no dice to settle", round.RoundID)
	}

	if err := uc.rounds.ClaimSettlement(ctx, round, now); err != nil {
		if errors.Is(err, domain.ErrAlreadySettled) {
			logger.Info(ctx).Str("round_id", round.RoundID).Msg("round already settled, skipping")
		}
		return err
	}

	startTime := time.Now()
	counts := domain.FaceCounts(faces)
	winners := domain.WinningNumbers(faces)
	logger.Info(ctx).
		Str("round_id", round.RoundID).
		Str("result", round.DiceResult).
		Ints("winning_numbers", winners).
		Msg("starting settlement")

	var settled, failed int
	var totalPaid float64
	for _, number := range winners {
		bets, err := uc.bets.ForRoundAndNumber(ctx, round.RoundID, number)
		if err != nil {
			logger.Error(ctx).Err(err).
				Str("round_id", round.RoundID).
				Int("number", number).
				Msg("loading bets for settlement failed")
			failed++
			continue
		}

		multiplier := counts[number]
		for _, bet := range bets {
			if err := uc.settleBet(ctx, bet, multiplier, now); err != nil {
				logger.Error(ctx).Err(err).
					Int64("bet_id", bet.ID).
					Int64("user_id", bet.UserID).
					Msg("bet settlement failed")
				failed++
				continue
			}
			settled++
			totalPaid += bet.PayoutAmount
		}
	}

	if err := uc.stampTotals(ctx, round); err != nil {
		logger.Error(ctx).Err(err).Str("round_id", round.RoundID).Msg("writing round totals failed")
	}

	logger.Info(ctx).
		Str("round_id", round.RoundID).
		Int("settled", settled).
		Int("failed", failed).
		Float64("total_paid", totalPaid).
		Dur("elapsed", time.Since(startTime)).
		Msg("settlement complete")
	return nil
}

func (uc *PayoutUseCase) settleBet(ctx context.Context, bet *domain.Bet, multiplier int, now time.Time) error {
	total := bet.ChipAmount * float64(multiplier)
	settlement := domain.NewSettlement(bet, total, now)

	desc := fmt.Sprintf("win on %d in round %s (x%d)", bet.Number, bet.RoundID, multiplier)
	if _, err := uc.wallet.Credit(ctx, bet.UserID, settlement.WinnerAmount, wallet.TypeWin, desc); err != nil {
		return err
	}

	if err := uc.settlements.Create(ctx, settlement); err != nil {
		return err
	}

	bet.IsWinner = true
	bet.PayoutAmount = total
	return uc.bets.Save(ctx, bet)
}

// stampTotals writes the round's final bet count and turnover onto the row.
// The write touches only its own columns so it cannot undo the settled_at
// claim taken moments earlier.
func (uc *PayoutUseCase) stampTotals(ctx context.Context, round *domain.GameRound) error {
	bets, err := uc.bets.ForRound(ctx, round.RoundID)
	if err != nil {
		return err
	}
	round.TotalBets = len(bets)
	round.TotalAmount = 0
	for _, bet := range bets {
		round.TotalAmount += bet.ChipAmount
	}
	return uc.rounds.UpdateColumns(ctx, round, "total_bets", "total_amount")
}
