package cli

import (
	"context"
	"os"
)

// Mint creates a new token owned by the logged-in account. The data
// reference is optional; typically it is a record id from addrecord.
func (a *App) Mint(ctx context.Context) error {
	tokenID, err := GetSimpleText(a.reader, "Token id", os.Stdout)
	if err != nil {
		printlnFn("Error:", err)
		return err
	}

	dataRef, err := GetSimpleText(a.reader, "Data reference (optional)", os.Stdout)
	if err != nil {
		printlnFn("Error:", err)
		return err
	}

	t, err := a.api.Mint(ctx, tokenID, dataRef)
	if err != nil {
		printlnFn("Mint failed:", err)
		return err
	}

	if err := a.cache.UpsertToken(ctx, t); err != nil {
		printlnFn("Warning: cache update failed:", err)
	}

	printlnFn("Minted", t.ID, "owned by", t.Owner)
	return nil
}
