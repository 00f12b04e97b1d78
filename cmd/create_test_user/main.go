package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/KoshmareG/KHSM/internal/db"
	"github.com/KoshmareG/KHSM/internal/domain"
	"github.com/KoshmareG/KHSM/internal/logger"
	"github.com/KoshmareG/KHSM/internal/repository"
	"github.com/KoshmareG/KHSM/internal/service"

	"github.com/joho/godotenv"
)

// Создаёт игрока и печатает JWT для него. Аккаунты живут вне этого сервиса,
// команда нужна для локальной разработки.
func main() {
	_ = godotenv.Load()
	logger.Init("info", false)

	name := flag.String("name", "tester", "player name")
	id := flag.Int64("id", 0, "issue a token for an existing user instead of creating one")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logger.Fatal("JWT_SECRET not set")
	}
	service.InitJWT(secret)

	userID := *id
	if userID == 0 {
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			logger.Fatal("DATABASE_URL not set")
		}
		pool := db.Connect(dsn)
		defer pool.Close()

		u := &domain.User{Name: *name}
		if err := repository.NewUserRepository(pool).Create(context.Background(), u); err != nil {
			logger.Fatal("create user failed", "error", err)
		}
		logger.Info("user created", "id", u.ID, "name", u.Name)
		userID = u.ID
	}

	token, err := service.GenerateJWT(userID)
	if err != nil {
		logger.Fatal("failed to generate token", "error", err)
	}
	fmt.Println(token)
}
