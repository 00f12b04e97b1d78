package repository

import (
	"context"
	"sync"
	"time"

	"github.com/KoshmareG/KHSM/internal/domain"
)

// MemoryAuditRepository keeps audit entries in memory.
type MemoryAuditRepository struct {
	mu     sync.Mutex
	logs   []*domain.AuditLog
	nextID int64
}

func NewMemoryAuditRepository() *MemoryAuditRepository {
	return &MemoryAuditRepository{}
}

func (r *MemoryAuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	cp := *log
	cp.ID = r.nextID
	cp.CreatedAt = time.Now()
	r.logs = append(r.logs, &cp)
	return nil
}

// GetByUserID returns audit logs for a user, newest first
func (r *MemoryAuditRepository) GetByUserID(ctx context.Context, userID int64, limit int) ([]*domain.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*domain.AuditLog
	for i := len(r.logs) - 1; i >= 0; i-- {
		if limit > 0 && len(result) >= limit {
			break
		}
		if r.logs[i].UserID == userID {
			cp := *r.logs[i]
			result = append(result, &cp)
		}
	}
	return result, nil
}
