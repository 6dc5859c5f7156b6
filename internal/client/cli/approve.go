package cli

import (
	"context"
	"os"
)

// Approve sets a token's delegate. An empty delegate clears the approval.
func (a *App) Approve(ctx context.Context) error {
	tokenID, err := GetSimpleText(a.reader, "Token id", os.Stdout)
	if err != nil {
		printlnFn("Error:", err)
		return err
	}

	delegate, err := GetSimpleText(a.reader, "Delegate (empty = clear)", os.Stdout)
	if err != nil {
		printlnFn("Error:", err)
		return err
	}

	if err := a.api.Approve(ctx, tokenID, delegate); err != nil {
		printlnFn("Approve failed:", err)
		return err
	}

	if delegate == "" {
		printlnFn("Cleared approval for", tokenID)
	} else {
		printlnFn("Approved", delegate, "for", tokenID)
	}
	return nil
}
