package repository

import (
	"context"
	"errors"

	"github.com/KoshmareG/KHSM/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := conn(ctx, r.db).QueryRow(ctx,
		`SELECT id, name, balance, created_at
		 FROM users
		 WHERE id = $1`,
		id,
	)

	var u domain.User
	if err := row.Scan(&u.ID, &u.Name, &u.Balance, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts a user with zero balance.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	return conn(ctx, r.db).QueryRow(ctx,
		`INSERT INTO users (name)
		 VALUES ($1)
		 RETURNING id, balance, created_at`,
		u.Name,
	).Scan(&u.ID, &u.Balance, &u.CreatedAt)
}

// AddBalance adds amount to the user's balance and returns the new balance.
func (r *UserRepository) AddBalance(ctx context.Context, id int64, amount int64) (int64, error) {
	var balance int64
	err := conn(ctx, r.db).QueryRow(ctx,
		`UPDATE users SET balance = balance + $1 WHERE id = $2 RETURNING balance`,
		amount, id,
	).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return balance, nil
}
