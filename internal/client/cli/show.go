package cli

import (
	"context"
	"os"
)

// Show fetches one token from the server, including its current delegate,
// and refreshes the cached copy.
func (a *App) Show(ctx context.Context) error {
	tokenID, err := GetSimpleText(a.reader, "Token id", os.Stdout)
	if err != nil {
		printlnFn("Error:", err)
		return err
	}

	t, err := a.api.Token(ctx, tokenID)
	if err != nil {
		printlnFn("Show failed:", err)
		return err
	}

	delegate, err := a.api.GetApproved(ctx, tokenID)
	if err != nil {
		printlnFn("Show failed:", err)
		return err
	}

	if err := a.cache.UpsertToken(ctx, t); err != nil {
		printlnFn("Warning: cache update failed:", err)
	}

	printlnFn("Token:   ", t.ID)
	printlnFn("Owner:   ", t.Owner)
	printlnFn("Data ref:", t.DataRef)
	if delegate == "" {
		printlnFn("Delegate: (none)")
	} else {
		printlnFn("Delegate:", delegate)
	}
	return nil
}
