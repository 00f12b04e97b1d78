package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/KoshmareG/KHSM/internal/game"
	"github.com/KoshmareG/KHSM/internal/logger"

	"github.com/joho/godotenv"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	AppPort     string
	DatabaseURL string
	Storage     string
	JWTSecret   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LogLevel  string
	LogFormat string

	// Game
	GameTimeLimit time.Duration
	LadderFile    string
	QuestionsFile string

	GameRateLimit  int
	GameRateWindow int

	AllowedOrigin string
}

// Загрузка конфига из env, при ошибке процесс завершается
func Load() *Config {
	_ = godotenv.Load()

	cfg, err := FromEnv()
	if err != nil {
		logger.Fatal("invalid config", "error", err)
	}
	return cfg
}

// FromEnv reads the configuration from the process environment.
func FromEnv() (*Config, error) {
	storage := getenv("STORAGE", StoragePostgres)
	if storage != StoragePostgres && storage != StorageMemory {
		return nil, fmt.Errorf("STORAGE must be %q or %q, got %q", StoragePostgres, StorageMemory, storage)
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" && storage == StoragePostgres {
		return nil, errors.New("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("REDIS_DB: invalid value %q", v)
		}
		redisDB = n
	}

	timeLimit := game.DefaultTimeLimit
	if v := os.Getenv("GAME_TIME_LIMIT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("GAME_TIME_LIMIT: invalid duration %q", v)
		}
		timeLimit = d
	}

	gameRateLimit := 60 // макс действий за ->
	if v := os.Getenv("GAME_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			gameRateLimit = n
		}
	}

	gameRateWindow := 60 // -> 60 секунд
	if v := os.Getenv("GAME_RATE_WINDOW"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			gameRateWindow = n
		}
	}

	return &Config{
		AppPort:        getenv("APP_PORT", "8080"),
		DatabaseURL:    dbURL,
		Storage:        storage,
		JWTSecret:      jwtSecret,
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        redisDB,
		LogLevel:       getenv("LOG_LEVEL", "info"),
		LogFormat:      getenv("LOG_FORMAT", "text"),
		GameTimeLimit:  timeLimit,
		LadderFile:     os.Getenv("LADDER_FILE"),
		QuestionsFile:  os.Getenv("QUESTIONS_FILE"),
		GameRateLimit:  gameRateLimit,
		GameRateWindow: gameRateWindow,
		AllowedOrigin:  os.Getenv("ALLOWED_ORIGIN"),
	}, nil
}

// GameRules builds the rules games are played under: the ladder from
// LADDER_FILE (default ladder when unset) and the time limit.
func (c *Config) GameRules() (game.Rules, error) {
	ladder := game.DefaultLadder()
	if c.LadderFile != "" {
		l, err := game.LoadLadder(c.LadderFile)
		if err != nil {
			return game.Rules{}, err
		}
		ladder = l
	}
	return game.Rules{Ladder: ladder, TimeLimit: c.GameTimeLimit}, nil
}

// JSONLogs reports whether logs should be written as JSON.
func (c *Config) JSONLogs() bool {
	return c.LogFormat == "json"
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
