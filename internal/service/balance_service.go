package service

import (
	"context"
	"errors"

	"github.com/KoshmareG/KHSM/internal/domain"
	"github.com/KoshmareG/KHSM/internal/repository"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrInvalidAmount = errors.New("invalid amount")
)

// TxManager runs fn in a transaction; nested calls join the outer one.
// Satisfied by trm.Manager and repository.MemoryTxManager.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type UserStore interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	AddBalance(ctx context.Context, id int64, amount int64) (int64, error)
}

type TransactionStore interface {
	Create(ctx context.Context, tx *domain.Transaction) error
	GetByUserID(ctx context.Context, userID int64, limit int) ([]*domain.Transaction, error)
}

// BalanceService handles all balance operations
type BalanceService struct {
	users           UserStore
	transactionRepo TransactionStore
	txManager       TxManager
}

// NewBalanceService creates a new balance service
func NewBalanceService(users UserStore, txs TransactionStore, tm TxManager) *BalanceService {
	return &BalanceService{
		users:           users,
		transactionRepo: txs,
		txManager:       tm,
	}
}

// GetBalance returns user's current balance
func (s *BalanceService) GetBalance(ctx context.Context, userID int64) (int64, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}
	return u.Balance, nil
}

// Credit adds amount to user's balance and records a ledger row. Joins the
// transaction in ctx when there is one.
func (s *BalanceService) Credit(ctx context.Context, userID int64, amount int64, txType string, meta map[string]interface{}) (newBalance int64, err error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		newBalance, err = s.users.AddBalance(ctx, userID, amount)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		// Record transaction
		return s.transactionRepo.Create(ctx, &domain.Transaction{
			UserID: userID,
			Type:   txType,
			Amount: amount,
			Meta:   meta,
		})
	})
	if err != nil {
		return 0, err
	}

	return newBalance, nil
}

// GetTransactionHistory returns user's transaction history
func (s *BalanceService) GetTransactionHistory(ctx context.Context, userID int64, limit int) ([]*domain.Transaction, error) {
	return s.transactionRepo.GetByUserID(ctx, userID, limit)
}
