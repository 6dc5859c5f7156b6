// Package approvals implements the authorization store: the single
// delegate per token and the blanket (owner, operator) grants.
package approvals

import "context"

// Repository is the authorization store contract. A delegate of "" means
// "no delegate"; operator grants exist only while approved.
type Repository interface {
	// GetApproved returns the token's delegate, "" when none is set.
	GetApproved(ctx context.Context, tokenID string) (string, error)

	// SetApproved sets the token's delegate, overwriting any previous
	// one. A delegate of "" clears the approval.
	SetApproved(ctx context.Context, tokenID string, delegate string) error

	// ClearApproval removes the token's delegate. Clearing an absent
	// approval is not an error; transfer calls it unconditionally.
	ClearApproval(ctx context.Context, tokenID string) error

	// SetOperator sets or clears the blanket grant for (owner, operator).
	SetOperator(ctx context.Context, owner, operator string, approved bool) error

	// IsOperator reports whether operator holds a blanket grant from owner.
	IsOperator(ctx context.Context, owner, operator string) (bool, error)
}
