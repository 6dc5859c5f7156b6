package approvals

import (
	"context"
	"sync"
)

type operatorKey struct {
	owner    string
	operator string
}

// MemoryRepository is a map-backed authorization store for tests and
// PostgreSQL-free deployments.
type MemoryRepository struct {
	mu        sync.RWMutex
	delegates map[string]string
	operators map[operatorKey]struct{}
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		delegates: make(map[string]string),
		operators: make(map[operatorKey]struct{}),
	}
}

func (r *MemoryRepository) GetApproved(ctx context.Context, tokenID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.delegates[tokenID], nil
}

func (r *MemoryRepository) SetApproved(ctx context.Context, tokenID string, delegate string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if delegate == "" {
		delete(r.delegates, tokenID)
		return nil
	}
	r.delegates[tokenID] = delegate
	return nil
}

func (r *MemoryRepository) ClearApproval(ctx context.Context, tokenID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.delegates, tokenID)
	return nil
}

func (r *MemoryRepository) SetOperator(ctx context.Context, owner, operator string, approved bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := operatorKey{owner: owner, operator: operator}
	if approved {
		r.operators[key] = struct{}{}
	} else {
		delete(r.operators, key)
	}
	return nil
}

func (r *MemoryRepository) IsOperator(ctx context.Context, owner, operator string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.operators[operatorKey{owner: owner, operator: operator}]
	return ok, nil
}
