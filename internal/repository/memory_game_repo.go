package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/KoshmareG/KHSM/internal/game"
)

// MemoryGameRepository keeps games in process memory. Stored and returned
// states are copies.
type MemoryGameRepository struct {
	mu    sync.RWMutex
	games map[string]*game.State
}

func NewMemoryGameRepository() *MemoryGameRepository {
	return &MemoryGameRepository{games: make(map[string]*game.State)}
}

func (r *MemoryGameRepository) Create(ctx context.Context, s *game.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s.FinishedAt == nil {
		for _, g := range r.games {
			if g.UserID == s.UserID && g.FinishedAt == nil {
				return ErrActiveGameExists
			}
		}
	}

	id := s.ID
	r.games[id] = s.Clone()
	onRollback(ctx, func() {
		r.mu.Lock()
		delete(r.games, id)
		r.mu.Unlock()
	})
	return nil
}

func (r *MemoryGameRepository) Save(ctx context.Context, s *game.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.games[s.ID]
	if !ok {
		return ErrNotFound
	}

	r.games[s.ID] = s.Clone()
	onRollback(ctx, func() {
		r.mu.Lock()
		r.games[prev.ID] = prev
		r.mu.Unlock()
	})
	return nil
}

func (r *MemoryGameRepository) GetByID(ctx context.Context, id string) (*game.State, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.games[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s.Clone(), nil
}

func (r *MemoryGameRepository) GetActiveByUser(ctx context.Context, userID int64) (*game.State, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.games {
		if s.UserID == userID && s.FinishedAt == nil {
			return s.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

// ListByUser returns the user's games, newest first. Questions are not
// included, as with the Postgres repository.
func (r *MemoryGameRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*game.State, error) {
	if limit <= 0 {
		limit = 100
	}

	r.mu.RLock()
	var result []*game.State
	for _, s := range r.games {
		if s.UserID == userID {
			cp := *s
			cp.Questions = nil
			result = append(result, &cp)
		}
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
