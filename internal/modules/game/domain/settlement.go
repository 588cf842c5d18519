package domain

import (
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	// WinnerShare of the total payout goes to the bettor's wallet.
	WinnerShare = 0.90
	// CommissionShare of the total payout is withheld as house commission.
	CommissionShare = 0.10
)

// Settlement is the append-only record created for every winning bet: the
// full payout plus its 90/10 split.
type Settlement struct {
	SettlementID     string    `gorm:"primaryKey;type:varchar(64)" json:"settlement_id"`
	RoundID          string    `gorm:"type:varchar(64);not null;index" json:"round_id"`
	BetID            int64     `gorm:"not null;index" json:"bet_id"`
	UserID           int64     `gorm:"not null;index" json:"user_id"`
	TotalPayout      float64   `gorm:"type:decimal(18,2);not null" json:"total_payout"`
	WinnerAmount     float64   `gorm:"type:decimal(18,2);not null" json:"winner_amount"`
	CommissionAmount float64   `gorm:"type:decimal(18,2);not null" json:"commission_amount"`
	CreatedAt        time.Time `gorm:"not null;index" json:"created_at"`
}

// TableName overrides the table name
func (Settlement) TableName() string {
	return "settlements"
}

var (
	node *snowflake.Node
	once sync.Once
)

func initSnowflake() {
	var err error
	// TODO: read the node ID from SNOWFLAKE_NODE_ID so scheduler replicas
	// generate from distinct ranges.
	node, err = snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
}

// NewSettlement builds the record for one winning bet, splitting the total
// payout into the credited and commission parts.
func NewSettlement(bet *Bet, totalPayout float64, now time.Time) *Settlement {
	once.Do(initSnowflake)
	return &Settlement{
		SettlementID:     node.Generate().String(),
		RoundID:          bet.RoundID,
		BetID:            bet.ID,
		UserID:           bet.UserID,
		TotalPayout:      totalPayout,
		WinnerAmount:     totalPayout * WinnerShare,
		CommissionAmount: totalPayout * CommissionShare,
		CreatedAt:        now,
	}
}
