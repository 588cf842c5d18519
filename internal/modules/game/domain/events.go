package domain

// Event types carried in the "type" field of every fanout payload. Consumers
// dispatch on this field, so the strings are wire contract.
const (
	EventGameStart  = "game_start"
	EventTimer      = "timer"
	EventDiceRoll   = "dice_roll"
	EventDiceResult = "dice_result"
	EventGameEnd    = "game_end"
)

// GameStartEvent announces a fresh round, once per round.
type GameStartEvent struct {
	Type    string `json:"type"`
	RoundID string `json:"round_id"`
	Status  Phase  `json:"status"`
	Tick    int    `json:"tick"`
}

// TimerEvent carries the shared clock, once per second during a round.
type TimerEvent struct {
	Type      string `json:"type"`
	RoundID   string `json:"round_id"`
	Status    Phase  `json:"status"`
	Tick      int    `json:"tick"`
	IsRolling bool   `json:"is_rolling"`
}

// DiceRollEvent is the one-time pre-result animation warning.
type DiceRollEvent struct {
	Type         string `json:"type"`
	RoundID      string `json:"round_id"`
	Tick         int    `json:"tick"`
	DiceRollTime int    `json:"dice_roll_time"`
	IsRolling    bool   `json:"is_rolling"`
}

// DiceResultEvent reveals the six faces and the winning set, exactly once.
type DiceResultEvent struct {
	Type       string `json:"type"`
	RoundID    string `json:"round_id"`
	Tick       int    `json:"tick"`
	Result     string `json:"result"`
	DiceValues [6]int `json:"dice_values"`
	IsRolling  bool   `json:"is_rolling"`
}

// GameEndEvent closes out a round, exactly once.
type GameEndEvent struct {
	Type       string `json:"type"`
	RoundID    string `json:"round_id"`
	Status     Phase  `json:"status"`
	Tick       int    `json:"tick"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	ResultTime string `json:"result_time,omitempty"`
}
