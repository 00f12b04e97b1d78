package main

import (
	"context"
	"flag"
	"os"

	"github.com/KoshmareG/KHSM/internal/db"
	"github.com/KoshmareG/KHSM/internal/logger"
	"github.com/KoshmareG/KHSM/internal/repository"

	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/joho/godotenv"
)

// Загружает вопросы из YAML в таблицу questions одной транзакцией.
func main() {
	_ = godotenv.Load()
	logger.Init("info", false)

	file := flag.String("file", os.Getenv("QUESTIONS_FILE"), "questions YAML file")
	flag.Parse()

	if *file == "" {
		logger.Fatal("questions file not set (-file or QUESTIONS_FILE)")
	}
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal("DATABASE_URL not set")
	}

	questions, err := repository.ReadQuestionsFile(*file)
	if err != nil {
		logger.Fatal("read questions", "error", err)
	}
	for i, q := range questions {
		if !q.Valid() {
			logger.Fatal("invalid question", "index", i, "text", q.Text)
		}
	}

	pool := db.Connect(dsn)
	defer pool.Close()

	tm, err := manager.New(trmpgx.NewDefaultFactory(pool))
	if err != nil {
		logger.Fatal("failed to create tx manager", "error", err)
	}

	repo := repository.NewQuestionRepository(pool)
	ctx := context.Background()

	err = tm.Do(ctx, func(ctx context.Context) error {
		for i := range questions {
			if err := repo.Create(ctx, &questions[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Fatal("seed failed, nothing inserted", "error", err)
	}

	counts, err := repo.CountByLevel(ctx)
	if err != nil {
		logger.Fatal("count questions", "error", err)
	}
	logger.Info("questions seeded", "inserted", len(questions), "per_level", counts)
}
