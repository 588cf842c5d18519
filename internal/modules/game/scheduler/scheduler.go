// Package scheduler drives the shared round clock: one iteration per second
// advances phases, rolls dice, settles payouts and fans events out, safe to
// run redundantly across processes.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"runtime/debug"
	"time"

	"github.com/frankieli/dice_arena/internal/modules/game/domain"
	"github.com/frankieli/dice_arena/internal/modules/game/usecase"
	"github.com/frankieli/dice_arena/pkg/logger"
	"github.com/jonboulle/clockwork"
)

const (
	// Gate TTLs. Round-scoped keys outlive the longest plausible round;
	// per-tick keys only need to survive their second.
	roundEventTTL = 5 * time.Minute
	tickEventTTL  = 60 * time.Second

	// Sleep bounds around the one-second cadence.
	minSleep = 100 * time.Millisecond
	maxSleep = 1500 * time.Millisecond
)

// Scheduler is the round engine loop. In coordinated mode every event
// passes through the shared gate so redundant schedulers emit each event
// exactly once between them; standalone mode dedupes in process only.
type Scheduler struct {
	rounds   domain.RoundRepository
	settings domain.SettingsRepository
	payouts  *usecase.PayoutUseCase
	gate     domain.EventGate
	local    *LocalGate
	cache    domain.StateCache
	pub      domain.Publisher
	clock    clockwork.Clock
	rng      *rand.Rand

	coordinated bool
	gateDown    bool
}

// Config wires a scheduler. Gate may be nil when Coordinated is false.
type Config struct {
	Rounds      domain.RoundRepository
	Settings    domain.SettingsRepository
	Payouts     *usecase.PayoutUseCase
	Gate        domain.EventGate
	Cache       domain.StateCache
	Publisher   domain.Publisher
	Clock       clockwork.Clock
	Coordinated bool
}

// New creates a scheduler.
func New(cfg Config) *Scheduler {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Scheduler{
		rounds:      cfg.Rounds,
		settings:    cfg.Settings,
		payouts:     cfg.Payouts,
		gate:        cfg.Gate,
		local:       NewLocalGate(),
		cache:       cfg.Cache,
		pub:         cfg.Publisher,
		clock:       clock,
		rng:         rand.New(rand.NewSource(clock.Now().UnixNano())),
		coordinated: cfg.Coordinated,
	}
}

// Run loops until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	logger.Info(ctx).Bool("coordinated", s.coordinated).Msg("🎲 round scheduler started")
	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx).Msg("🛑 round scheduler stopping")
			return
		default:
		}

		sleepFor := s.iterate(ctx)

		select {
		case <-ctx.Done():
		case <-s.clock.After(sleepFor):
		}
	}
}

// iterate runs one scheduler pass and returns how long to sleep before the
// next. A panic is contained to the iteration; the loop keeps its cadence.
func (s *Scheduler) iterate(ctx context.Context) (sleepFor time.Duration) {
	sleepFor = time.Second
	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("scheduler iteration panicked")
		}
	}()

	now := s.clock.Now()
	durations := s.settings.Durations(ctx)

	s.sweepStale(ctx, now)

	// The row lock spans the expiry check, the phase write-back and the
	// dice roll, so no other scheduler can interleave between them. Events
	// and settlement wait until the lock is released: the gate and the
	// settled_at claim make both safe to run after commit.
	var round, finished *domain.GameRound
	err := s.rounds.Locked(ctx, func(rounds domain.RoundRepository, active *domain.GameRound) error {
		if active.Expired(now) {
			active.Complete(now)
			if err := rounds.UpdateColumns(ctx, active, "status", "end_time"); err != nil {
				return err
			}
			finished = active
			return nil
		}

		tick := active.Tick(now)
		if err := s.advancePhase(ctx, rounds, active, tick, now); err != nil {
			return err
		}
		if err := s.rollDice(ctx, rounds, active, tick, now); err != nil {
			return err
		}
		round = active
		return nil
	})
	switch {
	case errors.Is(err, domain.ErrRoundLocked):
		logger.Debug(ctx).Msg("active round held by another scheduler, skipping tick")
		return sleepFor
	case errors.Is(err, domain.ErrNoActiveRound):
		// No round to drive; start one below.
	case err != nil:
		logger.Error(ctx).Err(err).Msg("driving active round failed")
		return sleepFor
	}

	if finished != nil {
		s.finishRound(ctx, finished, now)
	}
	if round == nil {
		if round = s.startRound(ctx, now, durations); round == nil {
			return sleepFor
		}
	}

	tick := round.Tick(now)
	s.rollWarning(ctx, round, tick)
	s.announceResult(ctx, round, tick, now)
	s.emitTimer(ctx, round, tick)

	if err := s.cache.Write(ctx, domain.SnapshotOf(round, now)); err != nil {
		logger.Warn(ctx).Err(err).Msg("round snapshot write failed")
	}

	return s.untilNextTick(round)
}

// sweepStale completes rounds that outlived their length while no scheduler
// was driving them, announcing each ending at most once.
func (s *Scheduler) sweepStale(ctx context.Context, now time.Time) {
	closed, err := s.rounds.CompleteStale(ctx, now)
	if err != nil {
		logger.Error(ctx).Err(err).Msg("stale round sweep failed")
		return
	}
	for _, round := range closed {
		logger.Warn(ctx).Str("round_id", round.RoundID).Msg("completed stale round")
		s.finishRound(ctx, round, now)
	}
}

// startRound creates and announces the next round. Losing the creation race
// to another scheduler is normal; the winner's round is adopted.
func (s *Scheduler) startRound(ctx context.Context, now time.Time, d domain.Durations) *domain.GameRound {
	round := domain.NewRound(now, d)
	err := s.rounds.Create(ctx, round)
	if errors.Is(err, domain.ErrDuplicateRound) {
		adopted, err := s.rounds.Active(ctx)
		if err != nil {
			logger.Error(ctx).Err(err).Msg("adopting concurrently created round failed")
			return nil
		}
		return adopted
	}
	if err != nil {
		logger.Error(ctx).Err(err).Msg("round creation failed")
		return nil
	}

	logger.Info(ctx).
		Str("round_id", round.RoundID).
		Int("round_end_seconds", round.RoundEndSeconds).
		Msg("🆕 round started")

	if s.acquire(ctx, fmt.Sprintf("game_start_sent_%s", round.RoundID), roundEventTTL) {
		s.publish(ctx, domain.GameStartEvent{
			Type:    domain.EventGameStart,
			RoundID: round.RoundID,
			Status:  round.Status,
			Tick:    1,
		})
	}
	return round
}

// finishRound settles a completed round that carries a result, announcing
// the end at most once across schedulers. The row itself was already marked
// COMPLETED, under the lock or by the stale sweep.
func (s *Scheduler) finishRound(ctx context.Context, round *domain.GameRound, now time.Time) {
	if _, ok := round.DiceValues(); ok && !round.Settled() {
		if err := s.payouts.Settle(ctx, round, now); err != nil && !errors.Is(err, domain.ErrAlreadySettled) {
			logger.Error(ctx).Err(err).Str("round_id", round.RoundID).Msg("settlement on round end failed")
		}
	}
	logger.Info(ctx).Str("round_id", round.RoundID).Msg("🏁 round completed")
	s.emitGameEnd(ctx, round)
}

// advancePhase writes the phase derived from the clock back onto the row,
// stamping each boundary timestamp on its first transition only.
func (s *Scheduler) advancePhase(ctx context.Context, rounds domain.RoundRepository, round *domain.GameRound, tick int, now time.Time) error {
	phase := domain.PhaseForTick(tick, round.Durations())
	if phase == round.Status {
		return nil
	}

	round.Status = phase
	if phase == domain.PhaseClosed && round.BettingCloseTime == nil {
		t := now
		round.BettingCloseTime = &t
	}
	if phase == domain.PhaseResult && round.ResultTime == nil {
		t := now
		round.ResultTime = &t
	}
	if err := rounds.UpdateColumns(ctx, round, "status", "betting_close_time", "result_time"); err != nil {
		logger.Error(ctx).Err(err).Str("round_id", round.RoundID).Msg("phase write-back failed")
		return err
	}
	logger.Info(ctx).
		Str("round_id", round.RoundID).
		Str("status", string(phase)).
		Int("tick", tick).
		Msg("phase advanced")
	return nil
}

// rollWarning emits the one-time animation warning once the roll tick is
// reached.
func (s *Scheduler) rollWarning(ctx context.Context, round *domain.GameRound, tick int) {
	if tick < round.DiceRollSeconds || tick >= round.DiceResultSeconds {
		return
	}
	if !s.acquire(ctx, fmt.Sprintf("dice_roll_sent_%s", round.RoundID), roundEventTTL) {
		return
	}
	s.publish(ctx, domain.DiceRollEvent{
		Type:         domain.EventDiceRoll,
		RoundID:      round.RoundID,
		Tick:         tick,
		DiceRollTime: round.DiceRollSeconds,
		IsRolling:    true,
	})
}

// rollDice resolves the round at the reveal tick if nobody has yet. Runs
// under the row lock so two schedulers can never roll the same round. Manual
// mode only matters before the cutoff; an admin who never set faces still
// gets an auto roll.
func (s *Scheduler) rollDice(ctx context.Context, rounds domain.RoundRepository, round *domain.GameRound, tick int, now time.Time) error {
	if tick < round.DiceResultSeconds {
		return nil
	}
	if _, ok := round.DiceValues(); ok {
		return nil
	}

	if err := round.SetDice(domain.RollDice(s.rng)); err != nil {
		return err
	}
	if round.ResultTime == nil {
		t := now
		round.ResultTime = &t
	}
	if err := rounds.UpdateColumns(ctx, round,
		"dice_1", "dice_2", "dice_3", "dice_4", "dice_5", "dice_6",
		"dice_result", "result_time"); err != nil {
		logger.Error(ctx).Err(err).Str("round_id", round.RoundID).Msg("persisting dice result failed")
		return err
	}
	logger.Info(ctx).
		Str("round_id", round.RoundID).
		Str("result", round.DiceResult).
		Str("mode", s.settings.DiceMode(ctx)).
		Msg("🎲 dice rolled")
	return nil
}

// announceResult broadcasts the resolved faces once across schedulers, then
// settles the round. Both are post-commit: the gate dedupes the event and
// the settled_at claim dedupes the payout.
func (s *Scheduler) announceResult(ctx context.Context, round *domain.GameRound, tick int, now time.Time) {
	if tick < round.DiceResultSeconds {
		return
	}
	faces, ok := round.DiceValues()
	if !ok {
		return
	}

	if s.acquire(ctx, fmt.Sprintf("dice_result_sent_%s", round.RoundID), roundEventTTL) {
		s.publish(ctx, domain.DiceResultEvent{
			Type:       domain.EventDiceResult,
			RoundID:    round.RoundID,
			Tick:       tick,
			Result:     round.DiceResult,
			DiceValues: faces,
			IsRolling:  false,
		})
	}

	if !round.Settled() {
		if err := s.payouts.Settle(ctx, round, now); err != nil && !errors.Is(err, domain.ErrAlreadySettled) {
			logger.Error(ctx).Err(err).Str("round_id", round.RoundID).Msg("settlement failed")
		}
	}
}

// emitTimer broadcasts the shared clock, at most once per round per tick
// across all schedulers.
func (s *Scheduler) emitTimer(ctx context.Context, round *domain.GameRound, tick int) {
	if !s.acquire(ctx, fmt.Sprintf("timer_sent_%s_%d", round.RoundID, tick), tickEventTTL) {
		return
	}
	s.publish(ctx, domain.TimerEvent{
		Type:      domain.EventTimer,
		RoundID:   round.RoundID,
		Status:    round.Status,
		Tick:      tick,
		IsRolling: tick >= round.DiceRollSeconds && tick < round.DiceResultSeconds,
	})
}

func (s *Scheduler) emitGameEnd(ctx context.Context, round *domain.GameRound) {
	if !s.acquire(ctx, fmt.Sprintf("game_end_sent_%s", round.RoundID), roundEventTTL) {
		return
	}
	event := domain.GameEndEvent{
		Type:      domain.EventGameEnd,
		RoundID:   round.RoundID,
		Status:    round.Status,
		Tick:      round.RoundEndSeconds,
		StartTime: round.StartTime.Format(time.RFC3339),
	}
	if round.EndTime != nil {
		event.EndTime = round.EndTime.Format(time.RFC3339)
	}
	if round.ResultTime != nil {
		event.ResultTime = round.ResultTime.Format(time.RFC3339)
	}
	s.publish(ctx, event)
}

// acquire answers whether this scheduler owns the event behind key. A
// shared-gate outage degrades to local-only dedupe, logged distinctly so
// operators know duplicate events are possible until it recovers.
func (s *Scheduler) acquire(ctx context.Context, key string, ttl time.Duration) bool {
	if !s.coordinated || s.gate == nil {
		ok, _ := s.local.TryAcquire(ctx, key, ttl)
		return ok
	}

	ok, err := s.gate.TryAcquire(ctx, key, ttl)
	if err != nil {
		if !s.gateDown {
			s.gateDown = true
			logger.Error(ctx).Err(err).Msg("⚠️ event gate unreachable, deduplicating locally only")
		}
		ok, _ = s.local.TryAcquire(ctx, key, ttl)
		return ok
	}
	if s.gateDown {
		s.gateDown = false
		logger.Info(ctx).Msg("event gate recovered")
	}
	return ok
}

func (s *Scheduler) publish(ctx context.Context, event interface{}) {
	if s.pub == nil {
		return
	}
	if err := s.pub.Publish(ctx, event); err != nil {
		logger.Warn(ctx).Err(err).Msg("event publish failed, dropped")
	}
}

// untilNextTick aligns the next iteration to the round's second boundary.
func (s *Scheduler) untilNextTick(round *domain.GameRound) time.Duration {
	elapsed := s.clock.Now().Sub(round.StartTime)
	sleepFor := time.Second - elapsed%time.Second
	if sleepFor < minSleep {
		sleepFor = minSleep
	}
	if sleepFor > maxSleep {
		sleepFor = maxSleep
	}
	return sleepFor
}
