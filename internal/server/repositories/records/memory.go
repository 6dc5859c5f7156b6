package records

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/healthdot/registry/internal/common"
	"github.com/healthdot/registry/internal/server/models"
)

// MemoryRepository is a map-backed record store for tests and
// PostgreSQL-free deployments.
type MemoryRepository struct {
	mu   sync.RWMutex
	byID map[string]*models.PatientRecord
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[string]*models.PatientRecord)}
}

func cloneRecord(rec *models.PatientRecord) *models.PatientRecord {
	c := *rec
	return &c
}

func (r *MemoryRepository) Create(ctx context.Context, rec *models.PatientRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	stored := cloneRecord(rec)
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.byID[rec.ID] = stored
	return nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (*models.PatientRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byID[id]
	if !ok {
		return nil, common.ErrRecordNotFound
	}
	return cloneRecord(rec), nil
}

func (r *MemoryRepository) MarkFinalized(ctx context.Context, id string, digestHex string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byID[id]
	if !ok {
		return common.ErrRecordNotFound
	}
	if rec.Finalized {
		return common.ErrRecordFinalized
	}
	rec.DigestHex = digestHex
	rec.Finalized = true
	rec.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryRepository) ListByPatient(ctx context.Context, patient string) ([]*models.PatientRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.PatientRecord
	for _, rec := range r.byID {
		if rec.Patient == patient {
			result = append(result, cloneRecord(rec))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}
