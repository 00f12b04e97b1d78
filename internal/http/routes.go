package http

import (
	"time"

	"github.com/KoshmareG/KHSM/internal/http/handlers"
	"github.com/KoshmareG/KHSM/internal/http/middleware"
	"github.com/KoshmareG/KHSM/internal/service"
	"github.com/KoshmareG/KHSM/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	apiRateLimit  = 120
	apiRateWindow = time.Minute

	accountLockTTL = 10 * time.Second
)

// Deps is what the router needs from main.
type Deps struct {
	Games   *service.GameService
	Balance *service.BalanceService
	Audit   *service.AuditService
	Hub     *ws.Hub
	Health  *handlers.HealthHandler

	GameRateLimit  int
	GameRateWindow time.Duration
	AllowedOrigin  string
	RedisEnabled   bool
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	h := handlers.NewHandler(d.Games, d.Balance, d.Audit)

	// Health checks (no rate limiting)
	r.GET("/health", d.Health.Health)
	r.GET("/healthz", d.Health.Liveness)
	r.GET("/readyz", d.Health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	if d.RedisEnabled {
		v1.Use(middleware.RedisRateLimit(apiRateLimit, apiRateWindow))
	} else {
		v1.Use(middleware.SimpleRateLimit(apiRateLimit, apiRateWindow))
	}

	v1.GET("/ladder", h.Ladder)

	auth := v1.Group("", middleware.JWT())
	auth.GET("/me", h.Me)
	auth.GET("/me/games", h.MyGames)
	auth.GET("/me/audit", h.MyAudit)
	auth.GET("/games/current", h.CurrentGame)
	auth.GET("/games/:id", h.GetGame)

	// Игровые действия: лимит на пользователя и один запрос за раз
	play := auth.Group("",
		middleware.GameRateLimit(d.GameRateLimit, d.GameRateWindow),
		middleware.AccountLock(accountLockTTL),
	)
	play.POST("/games", h.StartGame)
	play.PUT("/games/:id/answer", h.Answer)
	play.PUT("/games/:id/take_money", h.TakeMoney)
	play.PUT("/games/:id/help", h.UseHelp)

	r.GET("/ws", ws.HandleWS(d.Hub, d.Games, d.AllowedOrigin))
}
