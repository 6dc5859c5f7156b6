// Package events persists the registry's emitted notifications as an
// append-only feed that off-chain observers can replay.
package events

import (
	"context"

	"github.com/healthdot/registry/internal/server/models"
)

type Repository interface {
	// Append stores the event and fills in its sequence number.
	Append(ctx context.Context, e *models.Event) error

	// SelectSince returns up to limit events with Seq > afterSeq, in
	// sequence order.
	SelectSince(ctx context.Context, afterSeq int64, limit int) ([]*models.Event, error)
}
