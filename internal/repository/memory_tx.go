package repository

import (
	"context"
	"sync"
)

type undoKey struct{}

type undoLog struct {
	fns []func()
}

// MemoryTxManager runs functions one at a time and reverts changes made by
// memory repositories when the function fails.
type MemoryTxManager struct {
	mu sync.Mutex
}

func NewMemoryTxManager() *MemoryTxManager {
	return &MemoryTxManager{}
}

// Do runs fn. Nested calls join the outer one.
func (m *MemoryTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(undoKey{}).(*undoLog); ok {
		return fn(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	log := &undoLog{}
	if err := fn(context.WithValue(ctx, undoKey{}, log)); err != nil {
		// откатываем в обратном порядке
		for i := len(log.fns) - 1; i >= 0; i-- {
			log.fns[i]()
		}
		return err
	}
	return nil
}

// onRollback registers undo to run if the surrounding Do fails. Outside of
// Do it is a no-op.
func onRollback(ctx context.Context, undo func()) {
	if log, ok := ctx.Value(undoKey{}).(*undoLog); ok {
		log.fns = append(log.fns, undo)
	}
}
