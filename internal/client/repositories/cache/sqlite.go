package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/healthdot/registry/internal/client/models"
	"github.com/healthdot/registry/internal/common"
	"github.com/healthdot/registry/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) UpsertToken(ctx context.Context, t *models.Token) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tokens (id, owner, data_ref, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET owner = excluded.owner, data_ref = excluded.data_ref, updated_at = excluded.updated_at
	`, t.ID, t.Owner, t.DataRef, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert token %s: %w", t.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) GetToken(ctx context.Context, tokenID string) (*models.Token, error) {
	t := &models.Token{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, owner, data_ref, updated_at FROM tokens WHERE id = ?`, tokenID).
		Scan(&t.ID, &t.Owner, &t.DataRef, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get token %s: %w", tokenID, err)
	}
	return t, nil
}

func (r *SQLiteRepository) ListTokens(ctx context.Context, owner string) ([]*models.Token, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner, data_ref, updated_at FROM tokens WHERE (? = '' OR owner = ?) ORDER BY id`,
		owner, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}
	defer rows.Close()

	var result []*models.Token
	for rows.Next() {
		t := &models.Token{}
		if err := rows.Scan(&t.ID, &t.Owner, &t.DataRef, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan token row: %w", err)
		}
		result = append(result, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate token rows: %w", err)
	}

	return result, nil
}

func (r *SQLiteRepository) LastSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := r.db.QueryRowContext(ctx, `SELECT last_seq FROM sync_state WHERE id = 1`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("failed to read sync state: %w", err)
	}
	return seq, nil
}

func (r *SQLiteRepository) SetLastSeq(ctx context.Context, seq int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE sync_state SET last_seq = ? WHERE id = 1`, seq)
	if err != nil {
		return fmt.Errorf("failed to update sync state: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM tokens`); err != nil {
		return fmt.Errorf("failed to clear tokens: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `UPDATE sync_state SET last_seq = 0 WHERE id = 1`); err != nil {
		return fmt.Errorf("failed to reset sync state: %w", err)
	}
	return nil
}
