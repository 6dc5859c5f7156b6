// Package cache is the CLI's local mirror of registry state, rebuilt from
// the server's event feed so listing works without a round-trip.
package cache

import (
	"context"

	"github.com/healthdot/registry/internal/client/models"
)

type Repository interface {
	UpsertToken(ctx context.Context, t *models.Token) error
	GetToken(ctx context.Context, tokenID string) (*models.Token, error)
	ListTokens(ctx context.Context, owner string) ([]*models.Token, error)
	LastSeq(ctx context.Context) (int64, error)
	SetLastSeq(ctx context.Context, seq int64) error
	Clear(ctx context.Context) error
}
