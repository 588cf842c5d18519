package wallet

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DBService implements Service on gorm. Balance mutation locks the wallet
// row FOR UPDATE for the duration of one transaction, serializing concurrent
// mutations per user.
type DBService struct {
	db *gorm.DB
}

// NewDBService creates a database-backed wallet service.
func NewDBService(db *gorm.DB) *DBService {
	return &DBService{db: db}
}

var (
	node *snowflake.Node
	once sync.Once
)

func initSnowflake() {
	var err error
	node, err = snowflake.NewNode(2)
	if err != nil {
		panic(err)
	}
}

func newTransactionID() string {
	once.Do(initSnowflake)
	return node.Generate().String()
}

// Balance returns the user's balance, zero for an unknown wallet.
func (s *DBService) Balance(ctx context.Context, userID int64) (float64, error) {
	var w Wallet
	err := s.db.WithContext(ctx).First(&w, "user_id = ?", userID).Error
	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return w.Balance, nil
}

// Debit removes amount from the balance inside one row-locked transaction.
func (s *DBService) Debit(ctx context.Context, userID int64, amount float64, txnType TransactionType, description string) (float64, error) {
	return s.mutate(ctx, userID, -amount, txnType, description)
}

// Credit adds amount to the balance inside one row-locked transaction.
func (s *DBService) Credit(ctx context.Context, userID int64, amount float64, txnType TransactionType, description string) (float64, error) {
	return s.mutate(ctx, userID, amount, txnType, description)
}

func (s *DBService) mutate(ctx context.Context, userID int64, delta float64, txnType TransactionType, description string) (float64, error) {
	var after float64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var w Wallet

		q := tx
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		err := q.First(&w, "user_id = ?", userID).Error
		if err == gorm.ErrRecordNotFound {
			w = Wallet{UserID: userID}
			if err := tx.Create(&w).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		before := w.Balance
		after = before + delta
		if after < 0 {
			return fmt.Errorf("%w: balance %.2f, requested %.2f", ErrInsufficientBalance, before, -delta)
		}

		if err := tx.Model(&Wallet{}).Where("user_id = ?", userID).
			Update("balance", after).Error; err != nil {
			return err
		}

		amount := delta
		if amount < 0 {
			amount = -amount
		}
		return tx.Create(&Transaction{
			TransactionID: newTransactionID(),
			UserID:        userID,
			Type:          txnType,
			Amount:        amount,
			BalanceBefore: before,
			BalanceAfter:  after,
			Description:   description,
			CreatedAt:     time.Now(),
		}).Error
	})
	if err != nil {
		return 0, err
	}
	return after, nil
}
