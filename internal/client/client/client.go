// Package client contains the CLI's building blocks: the API contract to
// talk to the registry server, a concrete HTTP implementation that injects
// the session token and maps response statuses to sentinel errors, and the
// SQLite bootstrap for the local cache.
package client

import (
	"context"

	"github.com/healthdot/registry/internal/client/models"
)

type Client interface {
	// CreateSession exchanges the registrar secret for a session token and
	// stores it for subsequent calls.
	CreateSession(ctx context.Context, account, registrarSecret string) error

	Mint(ctx context.Context, tokenID, dataRef string) (*models.Token, error)
	Transfer(ctx context.Context, tokenID, from, to string) error
	Approve(ctx context.Context, tokenID, delegate string) error
	SetOperator(ctx context.Context, operator string, approved bool) error

	Token(ctx context.Context, tokenID string) (*models.Token, error)
	ListTokens(ctx context.Context, owner string) ([]*models.Token, error)
	Balance(ctx context.Context, account string) (uint64, error)
	GetApproved(ctx context.Context, tokenID string) (string, error)
	IsOperator(ctx context.Context, owner, operator string) (bool, error)
	Events(ctx context.Context, after int64, limit int) ([]*models.Event, error)

	CreateRecord(ctx context.Context, patient, kind, name string) (*models.Record, string, error)
	FinalizeRecord(ctx context.Context, recordID, digestHex string) error
	Record(ctx context.Context, recordID string) (*models.Record, error)
	RecordDownloadURL(ctx context.Context, recordID string) (string, error)

	Ping(ctx context.Context) error
}
