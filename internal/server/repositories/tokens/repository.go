// Package tokens implements the ownership store: token id -> owner plus
// the data reference bound at mint.
package tokens

import (
	"context"

	"github.com/healthdot/registry/internal/server/models"
)

// Repository is the ownership store contract. Absence of a row is
// non-existence; no other component decides whether a token exists.
type Repository interface {
	// Get returns the token row or common.ErrTokenNotFound.
	Get(ctx context.Context, id string) (*models.Token, error)

	// GetByDataRef returns the token bound to the given record reference,
	// or common.ErrTokenNotFound if no token references it.
	GetByDataRef(ctx context.Context, dataRef string) (*models.Token, error)

	// Insert creates the row; common.ErrTokenExists on a duplicate id.
	Insert(ctx context.Context, t *models.Token) error

	// UpdateOwner rebinds the token to newOwner.
	UpdateOwner(ctx context.Context, id string, newOwner string) error

	// BalanceOf counts tokens currently owned by account.
	BalanceOf(ctx context.Context, account string) (uint64, error)

	// List returns tokens owned by owner, or all tokens when owner is "".
	List(ctx context.Context, owner string) ([]*models.Token, error)
}
