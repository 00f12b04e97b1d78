package main

import (
	"context"

	"github.com/KoshmareG/KHSM/internal/config"
	"github.com/KoshmareG/KHSM/internal/db"
	"github.com/KoshmareG/KHSM/internal/game"
	"github.com/KoshmareG/KHSM/internal/http/handlers"
	"github.com/KoshmareG/KHSM/internal/logger"
	"github.com/KoshmareG/KHSM/internal/repository"
	"github.com/KoshmareG/KHSM/internal/service"

	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
)

// storage is the set of stores the services run on.
type storage struct {
	games     service.GameStore
	questions service.QuestionSource
	users     service.UserStore
	txs       service.TransactionStore
	audit     service.AuditStore
	txManager service.TxManager
	checks    map[string]handlers.CheckFunc
	close     func()
}

func openStorage(cfg *config.Config) *storage {
	if cfg.Storage == config.StorageMemory {
		return memoryStorage(cfg)
	}
	return postgresStorage(cfg)
}

func postgresStorage(cfg *config.Config) *storage {
	pool := db.Connect(cfg.DatabaseURL)

	tm, err := manager.New(trmpgx.NewDefaultFactory(pool))
	if err != nil {
		logger.Fatal("failed to create tx manager", "error", err)
	}

	questions := repository.NewQuestionRepository(pool)
	logQuestionCounts(questions)

	return &storage{
		games:     repository.NewGameRepository(pool),
		questions: questions,
		users:     repository.NewUserRepository(pool),
		txs:       repository.NewTransactionRepository(pool),
		audit:     repository.NewAuditRepository(pool),
		txManager: tm,
		checks: map[string]handlers.CheckFunc{
			"database": pool.Ping,
		},
		close: pool.Close,
	}
}

func memoryStorage(cfg *config.Config) *storage {
	if cfg.QuestionsFile == "" {
		logger.Fatal("QUESTIONS_FILE is required with STORAGE=memory")
	}
	bank, err := repository.LoadQuestionBank(cfg.QuestionsFile, game.NewRand())
	if err != nil {
		logger.Fatal("failed to load questions", "file", cfg.QuestionsFile, "error", err)
	}
	logQuestionCounts(bank)
	logger.Warn("using in-memory storage, data is lost on restart")

	return &storage{
		games:     repository.NewMemoryGameRepository(),
		questions: bank,
		users:     repository.NewMemoryUserRepository(true),
		txs:       repository.NewMemoryTransactionRepository(),
		audit:     repository.NewMemoryAuditRepository(),
		txManager: repository.NewMemoryTxManager(),
		checks:    map[string]handlers.CheckFunc{},
		close:     func() {},
	}
}

type levelCounter interface {
	CountByLevel(ctx context.Context) (map[int]int, error)
}

func logQuestionCounts(c levelCounter) {
	counts, err := c.CountByLevel(context.Background())
	if err != nil {
		logger.Warn("failed to count questions", "error", err)
		return
	}
	logger.Info("question bank loaded", "levels", len(counts), "per_level", counts)
}
