package service

import (
	"context"

	"github.com/KoshmareG/KHSM/internal/domain"
	"github.com/KoshmareG/KHSM/internal/game"
	"github.com/KoshmareG/KHSM/internal/logger"
)

type AuditStore interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	GetByUserID(ctx context.Context, userID int64, limit int) ([]*domain.AuditLog, error)
}

// AuditService handles audit logging. A nil *AuditService logs nothing.
type AuditService struct {
	repo AuditStore
}

// NewAuditService creates a new audit service
func NewAuditService(repo AuditStore) *AuditService {
	return &AuditService{repo: repo}
}

// Log creates a new audit log entry. Failures are logged, never returned.
func (s *AuditService) Log(ctx context.Context, userID int64, action, category string, details map[string]interface{}) {
	if s == nil {
		return
	}

	log := &domain.AuditLog{
		UserID:   userID,
		Action:   action,
		Category: category,
		Details:  details,
	}

	if err := s.repo.Create(ctx, log); err != nil {
		logger.Error("failed to create audit log", "error", err, "action", action, "user_id", userID)
	}
}

// LogGameStart logs a new game
func (s *AuditService) LogGameStart(ctx context.Context, g *game.Game) {
	s.Log(ctx, g.UserID, domain.AuditActionGameStart, domain.AuditCategoryGame, map[string]interface{}{
		"game_id": g.ID,
		"levels":  len(g.Questions),
	})
}

// LogAnswer logs a submitted answer
func (s *AuditService) LogAnswer(ctx context.Context, g *game.Game, level int, letter game.Letter, correct bool) {
	s.Log(ctx, g.UserID, domain.AuditActionGameAnswer, domain.AuditCategoryGame, map[string]interface{}{
		"game_id": g.ID,
		"level":   level,
		"letter":  string(letter),
		"correct": correct,
	})
}

// LogHelp logs a used lifeline
func (s *AuditService) LogHelp(ctx context.Context, g *game.Game, kind game.HelpKind) {
	s.Log(ctx, g.UserID, domain.AuditActionGameHelp, domain.AuditCategoryGame, map[string]interface{}{
		"game_id": g.ID,
		"level":   g.CurrentLevel,
		"help":    string(kind),
	})
}

// LogGameEnd logs a game reaching a terminal status
func (s *AuditService) LogGameEnd(ctx context.Context, g *game.Game) {
	s.Log(ctx, g.UserID, domain.AuditActionGameEnd, domain.AuditCategoryGame, map[string]interface{}{
		"game_id": g.ID,
		"status":  string(g.Status()),
		"level":   g.CurrentLevel,
		"prize":   g.Prize,
	})
}

// LogBalanceChange logs a balance change
func (s *AuditService) LogBalanceChange(ctx context.Context, userID int64, change int64, reason string, details map[string]interface{}) {
	if details == nil {
		details = make(map[string]interface{})
	}
	details["change"] = change
	details["reason"] = reason

	s.Log(ctx, userID, domain.AuditActionBalanceCredit, domain.AuditCategoryBalance, details)
}

// GetUserAuditLogs returns audit logs for a user
func (s *AuditService) GetUserAuditLogs(ctx context.Context, userID int64, limit int) ([]*domain.AuditLog, error) {
	if s == nil {
		return nil, nil
	}
	return s.repo.GetByUserID(ctx, userID, limit)
}
