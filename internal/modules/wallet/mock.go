package wallet

import (
	"context"
	"fmt"
	"sync"
)

// MockService implements Service with in-memory balances
type MockService struct {
	balances map[int64]float64
	mu       sync.RWMutex
}

// NewMockService creates a new mock wallet service
func NewMockService() *MockService {
	return &MockService{
		balances: make(map[int64]float64),
	}
}

// SetBalance sets the balance for a user (for testing)
func (s *MockService) SetBalance(userID int64, balance float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[userID] = balance
}

// Balance returns the user's balance
func (s *MockService) Balance(ctx context.Context, userID int64) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balances[userID], nil
}

// Debit deducts balance, rejecting overdrafts
func (s *MockService) Debit(ctx context.Context, userID int64, amount float64, txnType TransactionType, description string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	balance := s.balances[userID]
	if balance < amount {
		return 0, fmt.Errorf("%w: balance %.2f, requested %.2f", ErrInsufficientBalance, balance, amount)
	}
	balance -= amount
	s.balances[userID] = balance
	return balance, nil
}

// Credit adds balance
func (s *MockService) Credit(ctx context.Context, userID int64, amount float64, txnType TransactionType, description string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	balance := s.balances[userID] + amount
	s.balances[userID] = balance
	return balance, nil
}
