package repomanager

import (
	"context"
	"database/sql"

	"github.com/healthdot/registry/internal/dbx"
	"github.com/healthdot/registry/internal/server/repositories/approvals"
	"github.com/healthdot/registry/internal/server/repositories/events"
	"github.com/healthdot/registry/internal/server/repositories/records"
	"github.com/healthdot/registry/internal/server/repositories/tokens"
)

// MemoryRepositoryManager vends shared in-memory repositories. The DBTX
// argument is ignored; mutation atomicity is provided by the services
// validating before their first write.
type MemoryRepositoryManager struct {
	tokens    *tokens.MemoryRepository
	approvals *approvals.MemoryRepository
	events    *events.MemoryRepository
	records   *records.MemoryRepository
}

func NewMemoryRepositoryManager() RepositoryManager {
	return &MemoryRepositoryManager{
		tokens:    tokens.NewMemoryRepository(),
		approvals: approvals.NewMemoryRepository(),
		events:    events.NewMemoryRepository(),
		records:   records.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) Tokens(db dbx.DBTX) tokens.Repository {
	return m.tokens
}

func (m *MemoryRepositoryManager) Approvals(db dbx.DBTX) approvals.Repository {
	return m.approvals
}

func (m *MemoryRepositoryManager) Events(db dbx.DBTX) events.Repository {
	return m.events
}

func (m *MemoryRepositoryManager) Records(db dbx.DBTX) records.Repository {
	return m.records
}

func (m *MemoryRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return nil
}
