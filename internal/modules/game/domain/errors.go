package domain

import "errors"

var (
	// ErrNoActiveRound means no round is currently in an active phase.
	ErrNoActiveRound = errors.New("no active round")
	// ErrRoundLocked means another scheduler holds the active-round row;
	// the caller skips this tick and retries on the next iteration.
	ErrRoundLocked = errors.New("active round is locked by another process")
	// ErrDuplicateRound means a concurrent scheduler created the round first.
	ErrDuplicateRound = errors.New("round already exists")
	// ErrRoundEnded rejects mutations of a round past its full length.
	ErrRoundEnded = errors.New("round has ended")
	// ErrBettingClosed rejects bets once the betting window has passed.
	ErrBettingClosed = errors.New("betting period has ended")
	// ErrBetNotFound means the user holds no bet on that number this round.
	ErrBetNotFound = errors.New("bet not found")
	// ErrInvalidNumber rejects wagers outside 1-6.
	ErrInvalidNumber = errors.New("number must be between 1 and 6")
	// ErrInvalidFace rejects die faces outside 1-6.
	ErrInvalidFace = errors.New("die face must be between 1 and 6")
	// ErrResultCutoff rejects admin dice writes at or after the result offset.
	ErrResultCutoff = errors.New("dice can no longer be set for this round")
	// ErrAlreadySettled means settlement already claimed this round.
	ErrAlreadySettled = errors.New("round already settled")
	// ErrNoSnapshot means the shared store holds no usable round snapshot.
	ErrNoSnapshot = errors.New("no round snapshot cached")
)
