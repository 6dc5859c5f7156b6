// Package repomanager vends repository implementations bound to a DBTX,
// so services can hand every repository the same transaction handle.
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

type RepositoryManager interface {
	Tokens(db dbx.DBTX) tokens.Repository
	Approvals(db dbx.DBTX) approvals.Repository
	Events(db dbx.DBTX) events.Repository
	Records(db dbx.DBTX) records.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}
