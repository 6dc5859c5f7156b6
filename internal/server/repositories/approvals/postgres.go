package approvals

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/healthdot/registry/internal/dbx"
)

// PostgresRepository implements the authorization store over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetApproved(ctx context.Context, tokenID string) (string, error) {
	query := `SELECT delegate FROM token_approvals WHERE token_id = $1`

	var delegate string
	err := r.db.QueryRowContext(ctx, query, tokenID).Scan(&delegate)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}
	return delegate, nil
}

func (r *PostgresRepository) SetApproved(ctx context.Context, tokenID string, delegate string) error {
	if delegate == "" {
		return r.ClearApproval(ctx, tokenID)
	}

	query := `
		INSERT INTO token_approvals (token_id, delegate)
		VALUES ($1, $2)
		ON CONFLICT (token_id)
		DO UPDATE SET delegate = EXCLUDED.delegate;
	`
	if _, err := r.db.ExecContext(ctx, query, tokenID, delegate); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ClearApproval(ctx context.Context, tokenID string) error {
	query := `DELETE FROM token_approvals WHERE token_id = $1;`

	if _, err := r.db.ExecContext(ctx, query, tokenID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SetOperator(ctx context.Context, owner, operator string, approved bool) error {
	if !approved {
		query := `DELETE FROM operator_approvals WHERE owner = $1 AND operator = $2;`
		if _, err := r.db.ExecContext(ctx, query, owner, operator); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		return nil
	}

	query := `
		INSERT INTO operator_approvals (owner, operator)
		VALUES ($1, $2)
		ON CONFLICT (owner, operator) DO NOTHING;
	`
	if _, err := r.db.ExecContext(ctx, query, owner, operator); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) IsOperator(ctx context.Context, owner, operator string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM operator_approvals WHERE owner = $1 AND operator = $2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, owner, operator).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}
