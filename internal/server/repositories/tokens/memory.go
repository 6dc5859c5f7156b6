package tokens

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/healthdot/registry/internal/common"
	"github.com/healthdot/registry/internal/server/models"
)

// MemoryRepository is a map-backed ownership store used by tests and by
// deployments that run without PostgreSQL. Balances are maintained as a
// counter per account, mirrored against the owner map; the service-level
// tests recompute them exhaustively to catch drift.
type MemoryRepository struct {
	mu       sync.RWMutex
	byID     map[string]*models.Token
	balances map[string]uint64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:     make(map[string]*models.Token),
		balances: make(map[string]uint64),
	}
}

func clone(t *models.Token) *models.Token {
	c := *t
	return &c
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (*models.Token, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.byID[id]
	if !ok {
		return nil, common.ErrTokenNotFound
	}
	return clone(t), nil
}

func (r *MemoryRepository) GetByDataRef(ctx context.Context, dataRef string) (*models.Token, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.byID {
		if t.DataRef == dataRef {
			return clone(t), nil
		}
	}
	return nil, common.ErrTokenNotFound
}

func (r *MemoryRepository) Insert(ctx context.Context, t *models.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[t.ID]; ok {
		return common.ErrTokenExists
	}

	now := time.Now().UTC()
	stored := clone(t)
	stored.CreatedAt = now
	stored.UpdatedAt = now

	r.byID[t.ID] = stored
	r.balances[t.Owner]++
	return nil
}

func (r *MemoryRepository) UpdateOwner(ctx context.Context, id string, newOwner string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.byID[id]
	if !ok {
		return common.ErrTokenNotFound
	}

	r.balances[t.Owner]--
	if r.balances[t.Owner] == 0 {
		delete(r.balances, t.Owner)
	}
	r.balances[newOwner]++

	t.Owner = newOwner
	t.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryRepository) BalanceOf(ctx context.Context, account string) (uint64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.balances[account], nil
}

func (r *MemoryRepository) List(ctx context.Context, owner string) ([]*models.Token, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.Token
	for _, t := range r.byID {
		if owner == "" || t.Owner == owner {
			result = append(result, clone(t))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}
