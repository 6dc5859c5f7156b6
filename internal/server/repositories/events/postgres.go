package events

import (
	"context"
	"fmt"

	"github.com/healthdot/registry/internal/dbx"
	"github.com/healthdot/registry/internal/server/models"
)

// PostgresRepository implements the event feed over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Append(ctx context.Context, e *models.Event) error {
	query := `
		INSERT INTO events (id, kind, token_id, from_account, to_account, owner, delegate, operator, approved, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING seq;
	`
	err := r.db.QueryRowContext(ctx, query,
		e.ID, e.Kind, e.TokenID, e.From, e.To, e.Owner, e.Delegate, e.Operator, e.Approved, e.OccurredAt,
	).Scan(&e.Seq)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SelectSince(ctx context.Context, afterSeq int64, limit int) ([]*models.Event, error) {
	query := `SELECT seq, id, kind, token_id, from_account, to_account, owner, delegate, operator, approved, occurred_at
		FROM events WHERE seq > $1 ORDER BY seq LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, afterSeq, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select events: %w", err)
	}
	defer rows.Close()

	var result []*models.Event
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(
			&e.Seq, &e.ID, &e.Kind, &e.TokenID, &e.From, &e.To,
			&e.Owner, &e.Delegate, &e.Operator, &e.Approved, &e.OccurredAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
