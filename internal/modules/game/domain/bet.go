package domain

import "time"

// Bet is a player's wager on one number within one round. Repeated wagers on
// the same number accumulate into this row instead of creating duplicates.
// Payout fields are written exactly once, at settlement.
type Bet struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       int64     `gorm:"not null;uniqueIndex:idx_bets_user_round_number;index" json:"user_id"`
	RoundID      string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_bets_user_round_number;index" json:"round_id"`
	Number       int       `gorm:"not null;uniqueIndex:idx_bets_user_round_number" json:"number"`
	ChipAmount   float64   `gorm:"type:decimal(18,2);not null" json:"chip_amount"`
	PayoutAmount float64   `gorm:"type:decimal(18,2);not null;default:0" json:"payout_amount"`
	IsWinner     bool      `gorm:"not null;default:false" json:"is_winner"`
	CreatedAt    time.Time `gorm:"not null;index" json:"created_at"`
}

// TableName overrides the table name
func (Bet) TableName() string {
	return "bets"
}
