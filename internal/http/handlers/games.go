package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/KoshmareG/KHSM/internal/game"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

type AnswerRequest struct {
	Letter string `json:"letter" binding:"required"`
}

type HelpRequest struct {
	HelpType string `json:"help_type" binding:"required"`
}

// LadderRow - строка таблицы выигрышей
type LadderRow struct {
	Level     int   `json:"level"`
	Payout    int64 `json:"payout"`
	Fireproof bool  `json:"fireproof"`
}

// StartGame creates a new game for the current user.
func (h *Handler) StartGame(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	v, err := h.Games.Start(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

// CurrentGame returns the unfinished game of the user.
func (h *Handler) CurrentGame(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	v, err := h.Games.Current(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) GetGame(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	v, err := h.Games.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// Answer submits a letter for the current question.
func (h *Handler) Answer(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	letter := game.Letter(strings.ToLower(strings.TrimSpace(req.Letter)))
	res, err := h.Games.Answer(c.Request.Context(), userID, c.Param("id"), letter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// TakeMoney ends the game with the fireproof prize.
func (h *Handler) TakeMoney(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	v, err := h.Games.TakeMoney(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// UseHelp applies a lifeline to the current question.
func (h *Handler) UseHelp(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	var req HelpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	v, err := h.Games.UseHelp(c.Request.Context(), userID, c.Param("id"), game.HelpKind(req.HelpType))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// MyGames lists the user's games, newest first.
func (h *Handler) MyGames(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	limit := 50
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	games, err := h.Games.List(c.Request.Context(), userID, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"games": games})
}

// Ladder returns the prize table and the time limit.
func (h *Handler) Ladder(c *gin.Context) {
	rows := lo.Map(h.Games.Ladder(), func(l game.LadderLevel, i int) LadderRow {
		return LadderRow{Level: i, Payout: l.Payout, Fireproof: l.Fireproof}
	})

	c.JSON(http.StatusOK, gin.H{
		"levels":             rows,
		"time_limit_seconds": int(h.Games.Rules().TimeLimit.Seconds()),
	})
}
