// Package domain holds the round lifecycle model of the dice game.
package domain

import (
	"fmt"
	"time"
)

// Phase is the lifecycle state of a round.
type Phase string

const (
	PhaseWaiting   Phase = "WAITING"
	PhaseBetting   Phase = "BETTING"
	PhaseClosed    Phase = "CLOSED"
	PhaseResult    Phase = "RESULT"
	PhaseCompleted Phase = "COMPLETED"
)

// ActivePhases are the phases of a round the scheduler still drives. The
// engine guarantees at most one round is in any of them at a time.
var ActivePhases = []Phase{PhaseBetting, PhaseClosed, PhaseResult}

// GameRound is the authoritative round row. Phase offsets are frozen onto the
// row at creation; the six die faces stay nil until resolved.
type GameRound struct {
	RoundID    string  `gorm:"primaryKey;type:varchar(64)" json:"round_id"`
	Status     Phase   `gorm:"type:varchar(10);not null;default:'WAITING';index" json:"status"`
	DiceResult string  `gorm:"type:varchar(50)" json:"dice_result"` // sorted comma-joined winners, or "0"; empty until resolved
	Dice1      *int    `gorm:"column:dice_1" json:"dice_1"`
	Dice2      *int    `gorm:"column:dice_2" json:"dice_2"`
	Dice3      *int    `gorm:"column:dice_3" json:"dice_3"`
	Dice4      *int    `gorm:"column:dice_4" json:"dice_4"`
	Dice5      *int    `gorm:"column:dice_5" json:"dice_5"`
	Dice6      *int    `gorm:"column:dice_6" json:"dice_6"`
	StartTime  time.Time  `gorm:"not null;index" json:"start_time"`
	BettingCloseTime *time.Time `json:"betting_close_time"`
	ResultTime       *time.Time `json:"result_time"`
	EndTime          *time.Time `json:"end_time"`
	SettledAt        *time.Time `json:"settled_at"`
	TotalBets        int        `gorm:"default:0" json:"total_bets"`
	TotalAmount      float64    `gorm:"type:decimal(18,2);default:0" json:"total_amount"`

	// Phase offsets captured when the round was created.
	BettingCloseSeconds int `gorm:"default:30" json:"betting_close_seconds"`
	DiceRollSeconds     int `gorm:"default:19" json:"dice_roll_seconds"`
	DiceResultSeconds   int `gorm:"default:51" json:"dice_result_seconds"`
	RoundEndSeconds     int `gorm:"default:80" json:"round_end_seconds"`
}

// TableName overrides the table name
func (GameRound) TableName() string {
	return "game_rounds"
}

// NewRound creates a round opening directly into BETTING at tick 1. The
// second-resolution unix ID doubles as the creation race-breaker between
// redundant schedulers: the slower INSERT hits the primary key and fails.
func NewRound(now time.Time, d Durations) *GameRound {
	return &GameRound{
		RoundID:             fmt.Sprintf("R%d", now.Unix()),
		Status:              PhaseBetting,
		StartTime:           now,
		BettingCloseSeconds: d.BettingClose,
		DiceRollSeconds:     d.DiceRoll,
		DiceResultSeconds:   d.DiceResult,
		RoundEndSeconds:     d.RoundEnd,
	}
}

// Durations returns the phase offsets frozen onto this round.
func (r *GameRound) Durations() Durations {
	return Durations{
		BettingClose: r.BettingCloseSeconds,
		DiceRoll:     r.DiceRollSeconds,
		DiceResult:   r.DiceResultSeconds,
		RoundEnd:     r.RoundEndSeconds,
	}
}

// Tick returns the round's clock value at the given instant.
func (r *GameRound) Tick(now time.Time) int {
	return Tick(r.StartTime, now, r.RoundEndSeconds)
}

// Expired reports whether the round has outlived its full length.
func (r *GameRound) Expired(now time.Time) bool {
	return Expired(r.StartTime, now, r.RoundEndSeconds)
}

// DiceValues returns the six faces and whether all of them are set.
func (r *GameRound) DiceValues() ([6]int, bool) {
	var faces [6]int
	ptrs := [6]*int{r.Dice1, r.Dice2, r.Dice3, r.Dice4, r.Dice5, r.Dice6}
	for i, p := range ptrs {
		if p == nil {
			return faces, false
		}
		faces[i] = *p
	}
	return faces, true
}

// SetDice writes the six faces onto the round and recomputes the winning
// result string from them. Result derivation always goes through here so an
// admin override recomputes identically to an auto roll.
func (r *GameRound) SetDice(faces [6]int) error {
	for _, f := range faces {
		if f < MinFace || f > MaxFace {
			return fmt.Errorf("%w: %d", ErrInvalidFace, f)
		}
	}
	vals := make([]int, 6)
	copy(vals, faces[:])
	r.Dice1, r.Dice2, r.Dice3 = &vals[0], &vals[1], &vals[2]
	r.Dice4, r.Dice5, r.Dice6 = &vals[3], &vals[4], &vals[5]
	r.DiceResult = ResultString(faces)
	return nil
}

// Complete marks the round as finished history.
func (r *GameRound) Complete(now time.Time) {
	r.Status = PhaseCompleted
	end := now
	r.EndTime = &end
}

// Settled reports whether settlement has already claimed this round.
func (r *GameRound) Settled() bool {
	return r.SettledAt != nil
}
