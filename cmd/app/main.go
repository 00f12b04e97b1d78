package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KoshmareG/KHSM/internal/config"
	httpServer "github.com/KoshmareG/KHSM/internal/http"
	"github.com/KoshmareG/KHSM/internal/http/handlers"
	"github.com/KoshmareG/KHSM/internal/http/middleware"
	"github.com/KoshmareG/KHSM/internal/logger"
	"github.com/KoshmareG/KHSM/internal/service"
	"github.com/KoshmareG/KHSM/internal/ws"

	"github.com/gin-gonic/gin"
)

var version = "dev"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.JSONLogs())
	service.InitJWT(cfg.JWTSecret)

	rules, err := cfg.GameRules()
	if err != nil {
		logger.Fatal("invalid ladder", "file", cfg.LadderFile, "error", err)
	}

	store := openStorage(cfg)
	defer store.close()

	redisClient := middleware.InitRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if redisClient != nil {
		defer redisClient.Close()
		store.checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}

	hub := ws.NewHub()
	audit := service.NewAuditService(store.audit)
	balance := service.NewBalanceService(store.users, store.txs, store.txManager)
	games := service.NewGameService(store.games, store.questions, balance, store.txManager, rules,
		service.WithAudit(audit),
		service.WithNotifier(hub),
	)

	r := gin.Default()

	// CORS for the frontend on a different domain
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && (cfg.AllowedOrigin == "" || origin == cfg.AllowedOrigin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	httpServer.RegisterRoutes(r, httpServer.Deps{
		Games:          games,
		Balance:        balance,
		Audit:          audit,
		Hub:            hub,
		Health:         handlers.NewHealthHandler(version, store.checks),
		GameRateLimit:  cfg.GameRateLimit,
		GameRateWindow: time.Duration(cfg.GameRateWindow) * time.Second,
		AllowedOrigin:  cfg.AllowedOrigin,
		RedisEnabled:   redisClient != nil,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "storage", cfg.Storage,
			"levels", rules.Ladder.Levels(), "time_limit", rules.TimeLimit.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
