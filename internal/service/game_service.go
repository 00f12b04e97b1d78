package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/KoshmareG/KHSM/internal/domain"
	"github.com/KoshmareG/KHSM/internal/game"
	"github.com/KoshmareG/KHSM/internal/logger"
	"github.com/KoshmareG/KHSM/internal/repository"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

var (
	ErrGameAlreadyInProgress = errors.New("game already in progress")
	ErrGameNotFound          = errors.New("game not found")
)

// ActiveGameError is returned by Start when the user has an unfinished game.
// It matches ErrGameAlreadyInProgress.
type ActiveGameError struct {
	GameID string
}

func (e *ActiveGameError) Error() string {
	return fmt.Sprintf("game %s already in progress", e.GameID)
}

func (e *ActiveGameError) Is(target error) bool {
	return target == ErrGameAlreadyInProgress
}

// GameStore persists game states.
type GameStore interface {
	Create(ctx context.Context, s *game.State) error
	Save(ctx context.Context, s *game.State) error
	GetByID(ctx context.Context, id string) (*game.State, error)
	GetActiveByUser(ctx context.Context, userID int64) (*game.State, error)
	ListByUser(ctx context.Context, userID int64, limit int) ([]*game.State, error)
}

// QuestionSource draws one question per level.
type QuestionSource interface {
	DrawQuestions(ctx context.Context, levels int) ([]domain.Question, error)
}

// Ledger credits prizes.
type Ledger interface {
	Credit(ctx context.Context, userID int64, amount int64, txType string, meta map[string]interface{}) (int64, error)
}

// Notifier is told about every committed change of a user's game.
type Notifier interface {
	NotifyGame(userID int64, v *GameView)
}

// GameService runs games: every operation loads the game, applies one engine
// call and saves it, crediting the prize in the same transaction when the
// game ends.
type GameService struct {
	games     GameStore
	questions QuestionSource
	ledger    Ledger
	txManager TxManager
	rules     game.Rules

	audit    *AuditService
	notifier Notifier

	now     func() time.Time
	newRand func() *rand.Rand
	newID   func() string

	locks *userLocks
}

type GameServiceOption func(*GameService)

func WithAudit(a *AuditService) GameServiceOption {
	return func(s *GameService) { s.audit = a }
}

func WithNotifier(n Notifier) GameServiceOption {
	return func(s *GameService) { s.notifier = n }
}

func WithClock(now func() time.Time) GameServiceOption {
	return func(s *GameService) { s.now = now }
}

// WithRandSource sets the factory for per-game randomness.
func WithRandSource(f func() *rand.Rand) GameServiceOption {
	return func(s *GameService) { s.newRand = f }
}

func WithIDGenerator(f func() string) GameServiceOption {
	return func(s *GameService) { s.newID = f }
}

// NewGameService creates a new game service
func NewGameService(games GameStore, questions QuestionSource, ledger Ledger, tm TxManager, rules game.Rules, opts ...GameServiceOption) *GameService {
	s := &GameService{
		games:     games,
		questions: questions,
		ledger:    ledger,
		txManager: tm,
		rules:     rules,
		now:       time.Now,
		newRand:   game.NewRand,
		newID:     func() string { return uuid.New().String() },
		locks:     newUserLocks(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rules returns the rules new games are played under.
func (s *GameService) Rules() game.Rules {
	return s.rules
}

func (s *GameService) gameOptions() []game.Option {
	return []game.Option{game.WithClock(s.now), game.WithRand(s.newRand())}
}

// Start creates a game for userID. An unfinished game that ran out of time is
// closed first; any other unfinished game yields *ActiveGameError.
func (s *GameService) Start(ctx context.Context, userID int64) (*GameView, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	var (
		g      *game.Game
		closed *game.Game
	)
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		active, err := s.games.GetActiveByUser(ctx, userID)
		switch {
		case err == nil:
			prev := game.Restore(active, s.rules, s.gameOptions()...)
			if !prev.CheckTimeout() {
				return &ActiveGameError{GameID: prev.ID}
			}
			if err := s.persist(ctx, prev, true); err != nil {
				return err
			}
			closed = prev
		case !errors.Is(err, repository.ErrNotFound):
			return fmt.Errorf("load active game: %w", err)
		}

		questions, err := s.questions.DrawQuestions(ctx, s.rules.Ladder.Levels())
		if err != nil {
			return fmt.Errorf("draw questions: %w", err)
		}

		g, err = game.New(s.newID(), userID, questions, s.rules, s.gameOptions()...)
		if err != nil {
			return err
		}

		if err := s.games.Create(ctx, g.State); err != nil {
			if errors.Is(err, repository.ErrActiveGameExists) {
				return ErrGameAlreadyInProgress
			}
			return fmt.Errorf("create game: %w", err)
		}

		s.audit.LogGameStart(ctx, g)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if closed != nil {
		s.finished(ctx, closed)
	}
	GamesStarted.Inc()
	logger.ForGame(ctx, g.ID, userID).Info("game started")

	v := NewGameView(g)
	s.notify(userID, v)
	return v, nil
}

// Get returns the user's game, closing it first if it ran out of time.
func (s *GameService) Get(ctx context.Context, userID int64, gameID string) (*GameView, error) {
	g, err := s.mutate(ctx, userID, gameID, func(ctx context.Context, g *game.Game) (bool, error) {
		return g.CheckTimeout(), nil
	})
	if err != nil {
		return nil, err
	}
	return NewGameView(g), nil
}

// Current returns the user's unfinished game. If it ran out of time it is
// closed and returned finished.
func (s *GameService) Current(ctx context.Context, userID int64) (*GameView, error) {
	active, err := s.games.GetActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return s.Get(ctx, userID, active.ID)
}

// Answer submits letter for the current question of the game.
func (s *GameService) Answer(ctx context.Context, userID int64, gameID string, letter game.Letter) (*AnswerResult, error) {
	var correct bool
	g, err := s.mutate(ctx, userID, gameID, func(ctx context.Context, g *game.Game) (bool, error) {
		level := g.CurrentLevel
		var err error
		correct, err = g.Answer(letter)
		if err != nil {
			return false, err
		}
		s.audit.LogAnswer(ctx, g, level, letter, correct)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return &AnswerResult{Correct: correct, Game: NewGameView(g)}, nil
}

// UseHelp applies a lifeline to the current question.
func (s *GameService) UseHelp(ctx context.Context, userID int64, gameID string, kind game.HelpKind) (*GameView, error) {
	g, err := s.mutate(ctx, userID, gameID, func(ctx context.Context, g *game.Game) (bool, error) {
		if _, err := g.UseHelp(kind); err != nil {
			return false, err
		}
		s.audit.LogHelp(ctx, g, kind)
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	HelpsUsed.WithLabelValues(string(kind)).Inc()
	logger.ForGame(ctx, g.ID, userID).Info("help used", "kind", kind, "level", g.CurrentLevel)
	return NewGameView(g), nil
}

// TakeMoney ends the game paying the fireproof prize of the last completed level.
func (s *GameService) TakeMoney(ctx context.Context, userID int64, gameID string) (*GameView, error) {
	g, err := s.mutate(ctx, userID, gameID, func(ctx context.Context, g *game.Game) (bool, error) {
		if _, err := g.TakeMoney(); err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return NewGameView(g), nil
}

// List returns the user's games for the profile page, newest first.
func (s *GameService) List(ctx context.Context, userID int64, limit int) ([]domain.GameSummary, error) {
	states, err := s.games.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	return lo.Map(states, func(st *game.State, _ int) domain.GameSummary {
		return game.Restore(st, s.rules, game.WithClock(s.now)).Summary()
	}), nil
}

// Ladder returns the prize table.
func (s *GameService) Ladder() []game.LadderLevel {
	return s.rules.Ladder.Table()
}

// mutate runs fn against the stored game inside a transaction. fn reports
// whether it changed the game; nothing is saved when it did not or when it
// failed.
func (s *GameService) mutate(ctx context.Context, userID int64, gameID string, fn func(ctx context.Context, g *game.Game) (bool, error)) (*game.Game, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	var (
		g         *game.Game
		changed   bool
		justEnded bool
	)
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		st, err := s.games.GetByID(ctx, gameID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrGameNotFound
			}
			return fmt.Errorf("load game: %w", err)
		}
		if st.UserID != userID {
			return ErrGameNotFound
		}

		g = game.Restore(st, s.rules, s.gameOptions()...)
		wasFinished := g.Finished()
		changed, err = fn(ctx, g)
		if err != nil || !changed {
			return err
		}

		justEnded = !wasFinished && g.Finished()
		return s.persist(ctx, g, justEnded)
	})
	if err != nil {
		return nil, err
	}

	if justEnded {
		s.finished(ctx, g)
	}
	if changed {
		s.notify(userID, NewGameView(g))
	}
	return g, nil
}

// persist saves g and, when it has just ended, credits the prize.
func (s *GameService) persist(ctx context.Context, g *game.Game, ended bool) error {
	if err := s.games.Save(ctx, g.State); err != nil {
		return fmt.Errorf("save game: %w", err)
	}
	if !ended {
		return nil
	}

	if g.Prize > 0 {
		meta := map[string]interface{}{
			"game_id": g.ID,
			"level":   g.CurrentLevel,
			"status":  string(g.Status()),
		}
		if _, err := s.ledger.Credit(ctx, g.UserID, g.Prize, domain.TxTypeGamePrize, meta); err != nil {
			return fmt.Errorf("credit prize: %w", err)
		}
		s.audit.LogBalanceChange(ctx, g.UserID, g.Prize, domain.TxTypeGamePrize, map[string]interface{}{"game_id": g.ID})
	}
	s.audit.LogGameEnd(ctx, g)
	return nil
}

// finished records a committed terminal transition.
func (s *GameService) finished(ctx context.Context, g *game.Game) {
	st := g.Status()
	GamesFinished.WithLabelValues(string(st)).Inc()
	if g.Prize > 0 {
		PrizesPaid.Add(float64(g.Prize))
	}
	logger.ForGame(ctx, g.ID, g.UserID).Info("game finished", "status", st, "level", g.CurrentLevel, "prize", g.Prize)
}

func (s *GameService) notify(userID int64, v *GameView) {
	if s.notifier != nil {
		s.notifier.NotifyGame(userID, v)
	}
}
