// Package wallet provides atomic balance mutation and the append-only
// transaction ledger. Everything beyond that (deposits, withdrawals, review
// workflows) lives outside this codebase.
package wallet

import (
	"context"
	"errors"
	"time"
)

// ErrInsufficientBalance rejects a debit larger than the wallet holds.
var ErrInsufficientBalance = errors.New("insufficient balance")

// TransactionType classifies ledger entries.
type TransactionType string

const (
	TypeDeposit  TransactionType = "DEPOSIT"
	TypeWithdraw TransactionType = "WITHDRAW"
	TypeBet      TransactionType = "BET"
	TypeWin      TransactionType = "WIN"
	TypeRefund   TransactionType = "REFUND"
)

// Wallet is a user's balance row.
type Wallet struct {
	UserID    int64     `gorm:"primaryKey" json:"user_id"`
	Balance   float64   `gorm:"type:decimal(18,2);not null;default:0" json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (Wallet) TableName() string {
	return "wallets"
}

// Transaction is one append-only ledger row recording a balance mutation.
type Transaction struct {
	TransactionID string          `gorm:"primaryKey;type:varchar(64)" json:"transaction_id"`
	UserID        int64           `gorm:"not null;index" json:"user_id"`
	Type          TransactionType `gorm:"type:varchar(10);not null" json:"type"`
	Amount        float64         `gorm:"type:decimal(18,2);not null" json:"amount"`
	BalanceBefore float64         `gorm:"type:decimal(18,2);not null" json:"balance_before"`
	BalanceAfter  float64         `gorm:"type:decimal(18,2);not null" json:"balance_after"`
	Description   string          `gorm:"type:text" json:"description"`
	CreatedAt     time.Time       `gorm:"not null;index" json:"created_at"`
}

// TableName overrides the table name
func (Transaction) TableName() string {
	return "transactions"
}

// Service mutates balances. Each call is atomic per user: the wallet row is
// locked for exactly one database transaction and the ledger entry is
// written inside it. Implementations must never hold that lock across a
// network call to the shared store.
type Service interface {
	Balance(ctx context.Context, userID int64) (float64, error)
	// Debit removes amount from the balance, failing with
	// ErrInsufficientBalance when the wallet cannot cover it.
	Debit(ctx context.Context, userID int64, amount float64, txnType TransactionType, description string) (float64, error)
	// Credit adds amount to the balance.
	Credit(ctx context.Context, userID int64, amount float64, txnType TransactionType, description string) (float64, error)
}
