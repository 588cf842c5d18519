package domain

import (
	"fmt"
	"time"
)

// Durations are the phase offsets of a round, in whole seconds from round
// start. They are read live from game settings each scheduler iteration and
// copied onto every round at creation, so changing a setting only affects
// future rounds.
type Durations struct {
	BettingClose int // tick at which betting closes
	DiceRoll     int // tick at which the roll animation warning fires
	DiceResult   int // tick at which the result is revealed
	RoundEnd     int // total round length
}

// DefaultDurations mirrors the seeded game settings.
var DefaultDurations = Durations{
	BettingClose: 30,
	DiceRoll:     19,
	DiceResult:   51,
	RoundEnd:     80,
}

// Validate checks the ordering constraints between phase offsets.
func (d Durations) Validate() error {
	if d.BettingClose <= 0 || d.DiceRoll <= 0 || d.DiceResult <= 0 || d.RoundEnd <= 0 {
		return fmt.Errorf("durations must be positive: %+v", d)
	}
	if d.BettingClose >= d.DiceResult {
		return fmt.Errorf("betting close (%d) must precede dice result (%d)", d.BettingClose, d.DiceResult)
	}
	if d.DiceRoll >= d.DiceResult {
		return fmt.Errorf("dice roll warning (%d) must precede dice result (%d)", d.DiceRoll, d.DiceResult)
	}
	if d.DiceResult > d.RoundEnd {
		return fmt.Errorf("dice result (%d) must not exceed round end (%d)", d.DiceResult, d.RoundEnd)
	}
	return nil
}

// Tick converts elapsed wall-clock time into the 1-indexed shared clock
// value, clamped to [1, roundEnd]. Every process computes this independently
// from the same persisted start time, so it must stay bit-exact.
func Tick(start, now time.Time, roundEnd int) int {
	if start.IsZero() {
		return 1
	}

	tick := int(now.Sub(start).Seconds()) + 1
	if tick > roundEnd {
		tick = roundEnd
	}
	if tick < 1 {
		tick = 1
	}
	return tick
}

// PhaseForTick maps a clock tick onto a round phase.
// tick <= close: BETTING; close < tick < result: CLOSED;
// result <= tick <= end: RESULT.
func PhaseForTick(tick int, d Durations) Phase {
	switch {
	case tick <= d.BettingClose:
		return PhaseBetting
	case tick < d.DiceResult:
		return PhaseClosed
	default:
		return PhaseResult
	}
}

// Expired reports whether the round has run past its full length and must be
// completed and replaced.
func Expired(start, now time.Time, roundEnd int) bool {
	return now.Sub(start) >= time.Duration(roundEnd)*time.Second
}
