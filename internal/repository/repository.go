package repository

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

var (
	ErrNotFound           = errors.New("not found")
	ErrNotEnoughQuestions = errors.New("not enough questions")
	ErrActiveGameExists   = errors.New("user already has an unfinished game")
)

// Все запросы собираются под плейсхолдеры postgres ($1, $2...)
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// conn returns the transaction started by the tx manager, or the pool when
// ctx carries none.
func conn(ctx context.Context, db *pgxpool.Pool) trmpgx.Tr {
	return trmpgx.DefaultCtxGetter.DefaultTrOrDB(ctx, db)
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == constraint
}
