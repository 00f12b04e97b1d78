package handlers

import (
	"errors"
	"net/http"

	"github.com/KoshmareG/KHSM/internal/game"
	"github.com/KoshmareG/KHSM/internal/http/middleware"
	"github.com/KoshmareG/KHSM/internal/logger"
	"github.com/KoshmareG/KHSM/internal/repository"
	"github.com/KoshmareG/KHSM/internal/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Games   *service.GameService
	Balance *service.BalanceService
	Audit   *service.AuditService
}

func NewHandler(games *service.GameService, balance *service.BalanceService, audit *service.AuditService) *Handler {
	return &Handler{Games: games, Balance: balance, Audit: audit}
}

// getUserID извлекает user_id из контекста Gin
func getUserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(middleware.UserIDKey)
	if !ok {
		return 0, false
	}
	switch id := v.(type) {
	case int64:
		return id, true
	case float64:
		return int64(id), true
	default:
		return 0, false
	}
}

// writeError maps service and engine errors to HTTP statuses.
func writeError(c *gin.Context, err error) {
	var active *service.ActiveGameError
	switch {
	case errors.As(err, &active):
		c.JSON(http.StatusConflict, gin.H{"error": "game already in progress", "active_game_id": active.GameID})
	case errors.Is(err, service.ErrGameAlreadyInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "game already in progress"})
	case errors.Is(err, service.ErrGameNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case errors.Is(err, game.ErrGameFinished):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "game is finished"})
	case errors.Is(err, game.ErrHelpAlreadyUsed):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "help already used"})
	case errors.Is(err, game.ErrInvalidLetter):
		c.JSON(http.StatusBadRequest, gin.H{"error": "letter must be one of a, b, c, d"})
	case errors.Is(err, game.ErrUnknownHelp):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown help type"})
	case errors.Is(err, repository.ErrNotEnoughQuestions):
		logger.Error("question bank exhausted", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no questions available"})
	default:
		logger.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
