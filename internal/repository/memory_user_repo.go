package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/KoshmareG/KHSM/internal/domain"
)

// MemoryUserRepository keeps users and balances in memory. With AutoCreate
// unknown ids are registered on first use, since accounts live outside this
// service.
type MemoryUserRepository struct {
	AutoCreate bool

	mu     sync.Mutex
	users  map[int64]*domain.User
	nextID int64
}

func NewMemoryUserRepository(autoCreate bool) *MemoryUserRepository {
	return &MemoryUserRepository{AutoCreate: autoCreate, users: make(map[int64]*domain.User)}
}

func (r *MemoryUserRepository) lookup(id int64) (*domain.User, bool) {
	u, ok := r.users[id]
	if !ok && r.AutoCreate {
		u = &domain.User{ID: id, Name: fmt.Sprintf("player%d", id), CreatedAt: time.Now()}
		r.users[id] = u
		if id > r.nextID {
			r.nextID = id
		}
		ok = true
	}
	return u, ok
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.lookup(id)
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *MemoryUserRepository) Create(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	u.ID = r.nextID
	u.Balance = 0
	u.CreatedAt = time.Now()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *MemoryUserRepository) AddBalance(ctx context.Context, id int64, amount int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.lookup(id)
	if !ok {
		return 0, ErrNotFound
	}
	u.Balance += amount
	onRollback(ctx, func() {
		r.mu.Lock()
		u.Balance -= amount
		r.mu.Unlock()
	})
	return u.Balance, nil
}

// MemoryTransactionRepository is the in-memory ledger journal.
type MemoryTransactionRepository struct {
	mu     sync.Mutex
	txs    []*domain.Transaction
	nextID int64
}

func NewMemoryTransactionRepository() *MemoryTransactionRepository {
	return &MemoryTransactionRepository{}
}

func (r *MemoryTransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	tx.ID = r.nextID
	tx.CreatedAt = time.Now()
	cp := *tx
	r.txs = append(r.txs, &cp)

	id := tx.ID
	onRollback(ctx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, t := range r.txs {
			if t.ID == id {
				r.txs = append(r.txs[:i], r.txs[i+1:]...)
				break
			}
		}
	})
	return nil
}

// GetByUserID returns the user's transactions, newest first.
func (r *MemoryTransactionRepository) GetByUserID(ctx context.Context, userID int64, limit int) ([]*domain.Transaction, error) {
	if limit <= 0 {
		limit = 100
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*domain.Transaction
	for i := len(r.txs) - 1; i >= 0 && len(result) < limit; i-- {
		if r.txs[i].UserID == userID {
			cp := *r.txs[i]
			result = append(result, &cp)
		}
	}
	return result, nil
}
