package tokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/healthdot/registry/internal/common"
	"github.com/healthdot/registry/internal/dbx"
	"github.com/healthdot/registry/internal/server/models"
)

// PostgresRepository implements the ownership store over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const pgUniqueViolation = "23505"

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Token, error) {
	query := `SELECT id, owner, data_ref, created_at, updated_at FROM tokens WHERE id = $1`

	var t models.Token
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&t.ID, &t.Owner, &t.DataRef, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &t, nil
}

func (r *PostgresRepository) GetByDataRef(ctx context.Context, dataRef string) (*models.Token, error) {
	query := `SELECT id, owner, data_ref, created_at, updated_at FROM tokens WHERE data_ref = $1`

	var t models.Token
	err := r.db.QueryRowContext(ctx, query, dataRef).
		Scan(&t.ID, &t.Owner, &t.DataRef, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &t, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, t *models.Token) error {
	query := `
		INSERT INTO tokens (id, owner, data_ref, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now());
	`
	_, err := r.db.ExecContext(ctx, query, t.ID, t.Owner, t.DataRef)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return common.ErrTokenExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpdateOwner(ctx context.Context, id string, newOwner string) error {
	query := `UPDATE tokens SET owner = $2, updated_at = now() WHERE id = $1;`

	res, err := r.db.ExecContext(ctx, query, id, newOwner)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrTokenNotFound
	}
	return nil
}

func (r *PostgresRepository) BalanceOf(ctx context.Context, account string) (uint64, error) {
	query := `SELECT count(*) FROM tokens WHERE owner = $1`

	var count uint64
	if err := r.db.QueryRowContext(ctx, query, account).Scan(&count); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return count, nil
}

func (r *PostgresRepository) List(ctx context.Context, owner string) ([]*models.Token, error) {
	query := `SELECT id, owner, data_ref, created_at, updated_at FROM tokens
		WHERE ($1 = '' OR owner = $1) ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to select tokens: %w", err)
	}
	defer rows.Close()

	var result []*models.Token
	for rows.Next() {
		var t models.Token
		if err := rows.Scan(&t.ID, &t.Owner, &t.DataRef, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
