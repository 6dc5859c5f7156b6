// Package records persists patient record metadata: who the record is
// about, where its payload lives, and the payload digest once finalized.
package records

import (
	"context"

	"github.com/healthdot/registry/internal/server/models"
)

type Repository interface {
	// Create stores a new record row.
	Create(ctx context.Context, rec *models.PatientRecord) error

	// Get returns the record or common.ErrRecordNotFound.
	Get(ctx context.Context, id string) (*models.PatientRecord, error)

	// MarkFinalized sets the payload digest and the finalized flag.
	// Returns common.ErrRecordNotFound for an unknown id and
	// common.ErrRecordFinalized if already finalized.
	MarkFinalized(ctx context.Context, id string, digestHex string) error

	// ListByPatient returns records about the given patient account.
	ListByPatient(ctx context.Context, patient string) ([]*models.PatientRecord, error)
}
