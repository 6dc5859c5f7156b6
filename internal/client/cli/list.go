package cli

import (
	"context"
	"os"
)

// List prints tokens from the local cache, optionally filtered by owner.
// Run sync first to refresh the cache from the server's event feed.
func (a *App) List(ctx context.Context) error {
	owner, err := GetSimpleText(a.reader, "Owner filter (empty = all)", os.Stdout)
	if err != nil {
		printlnFn("Error:", err)
		return err
	}

	tokens, err := a.cache.ListTokens(ctx, owner)
	if err != nil {
		printlnFn("List failed:", err)
		return err
	}

	if len(tokens) == 0 {
		printlnFn("No tokens in cache. Run 'sync' to refresh.")
		return nil
	}

	for _, t := range tokens {
		printlnFn(t.ID, "owner:", t.Owner, "ref:", t.DataRef)
	}
	return nil
}
