package events

import (
	"context"
	"sync"

	"github.com/healthdot/registry/internal/server/models"
)

// MemoryRepository is a slice-backed event feed for tests and
// PostgreSQL-free deployments.
type MemoryRepository struct {
	mu   sync.RWMutex
	feed []*models.Event
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Append(ctx context.Context, e *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *e
	stored.Seq = int64(len(r.feed)) + 1
	r.feed = append(r.feed, &stored)
	e.Seq = stored.Seq
	return nil
}

func (r *MemoryRepository) SelectSince(ctx context.Context, afterSeq int64, limit int) ([]*models.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.Event
	for _, e := range r.feed {
		if e.Seq <= afterSeq {
			continue
		}
		c := *e
		result = append(result, &c)
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}
