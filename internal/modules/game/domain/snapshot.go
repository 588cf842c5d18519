package domain

import "time"

// Snapshot is the advisory cached copy of the active round kept in the
// shared store. It saves readers a database round trip; the game_rounds row
// stays authoritative and the snapshot is rebuilt from it on any doubt.
type Snapshot struct {
	RoundID    string    `json:"round_id"`
	Status     Phase     `json:"status"`
	StartTime  time.Time `json:"start_time"`
	Tick       int       `json:"tick"`
	RoundEnd   int       `json:"round_end"` // full round length in seconds
	DiceResult string    `json:"dice_result,omitempty"`
	Dice       []int     `json:"dice,omitempty"` // six faces once resolved
}

// SnapshotOf builds the cacheable view of a round at the given instant.
func SnapshotOf(r *GameRound, now time.Time) *Snapshot {
	snap := &Snapshot{
		RoundID:    r.RoundID,
		Status:     r.Status,
		StartTime:  r.StartTime,
		Tick:       r.Tick(now),
		RoundEnd:   r.RoundEndSeconds,
		DiceResult: r.DiceResult,
	}
	if faces, ok := r.DiceValues(); ok {
		snap.Dice = append(snap.Dice, faces[:]...)
	}
	return snap
}

// Stale reports whether the snapshot is too old to trust: older than the
// round's full length plus a safety buffer, it must be rebuilt from the
// database.
func (s *Snapshot) Stale(now time.Time, buffer time.Duration) bool {
	return now.Sub(s.StartTime) > time.Duration(s.RoundEnd)*time.Second+buffer
}
