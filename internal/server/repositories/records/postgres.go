package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/healthdot/registry/internal/common"
	"github.com/healthdot/registry/internal/dbx"
	"github.com/healthdot/registry/internal/server/models"
)

// PostgresRepository implements record metadata storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, rec *models.PatientRecord) error {
	query := `
		INSERT INTO patient_records (id, patient, creator, kind, name, storage_key, digest_hex, finalized, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, '', false, now(), now());
	`
	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.Patient, rec.Creator, rec.Kind, rec.Name, rec.StorageKey)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.PatientRecord, error) {
	query := `SELECT id, patient, creator, kind, name, storage_key, digest_hex, finalized, created_at, updated_at
		FROM patient_records WHERE id = $1`

	var rec models.PatientRecord
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&rec.ID, &rec.Patient, &rec.Creator, &rec.Kind, &rec.Name,
		&rec.StorageKey, &rec.DigestHex, &rec.Finalized, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &rec, nil
}

func (r *PostgresRepository) MarkFinalized(ctx context.Context, id string, digestHex string) error {
	query := `UPDATE patient_records SET digest_hex = $2, finalized = true, updated_at = now()
		WHERE id = $1 AND NOT finalized;`

	res, err := r.db.ExecContext(ctx, query, id, digestHex)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		// Distinguish "absent" from "already finalized" for the caller.
		if _, err := r.Get(ctx, id); err != nil {
			return err
		}
		return common.ErrRecordFinalized
	}
	return nil
}

func (r *PostgresRepository) ListByPatient(ctx context.Context, patient string) ([]*models.PatientRecord, error) {
	query := `SELECT id, patient, creator, kind, name, storage_key, digest_hex, finalized, created_at, updated_at
		FROM patient_records WHERE patient = $1 ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, patient)
	if err != nil {
		return nil, fmt.Errorf("failed to select records: %w", err)
	}
	defer rows.Close()

	var result []*models.PatientRecord
	for rows.Next() {
		var rec models.PatientRecord
		if err := rows.Scan(
			&rec.ID, &rec.Patient, &rec.Creator, &rec.Kind, &rec.Name,
			&rec.StorageKey, &rec.DigestHex, &rec.Finalized, &rec.CreatedAt, &rec.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
