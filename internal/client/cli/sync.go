package cli

import (
	"context"

	"github.com/healthdot/registry/internal/client/models"
)

const syncBatchSize = 200

// Sync pulls committed events after the locally known sequence number and
// refreshes the cached state of every token they touched.
func (a *App) Sync(ctx context.Context) error {
	lastSeq, err := a.cache.LastSeq(ctx)
	if err != nil {
		printlnFn("Sync failed:", err)
		return err
	}

	touched := make(map[string]*models.Event)
	var applied int

	for {
		events, err := a.api.Events(ctx, lastSeq, syncBatchSize)
		if err != nil {
			printlnFn("Sync failed:", err)
			return err
		}
		if len(events) == 0 {
			break
		}

		for _, e := range events {
			if e.Kind == "transfer" && e.TokenID != "" {
				touched[e.TokenID] = e
			}
			lastSeq = e.Seq
			applied++
		}
	}

	for tokenID, e := range touched {
		t, err := a.api.Token(ctx, tokenID)
		if err != nil {
			// Fall back to what the event itself tells us.
			t = tokenFromTransfer(e)
		}
		if err := a.cache.UpsertToken(ctx, t); err != nil {
			printlnFn("Warning: cache update failed:", err)
		}
	}

	if err := a.cache.SetLastSeq(ctx, lastSeq); err != nil {
		printlnFn("Sync failed:", err)
		return err
	}

	printlnFn("Applied", applied, "event(s),", len(touched), "token(s) refreshed")
	return nil
}

// tokenFromTransfer builds a minimal cache row from a transfer event when
// the authoritative fetch is unavailable.
func tokenFromTransfer(e *models.Event) *models.Token {
	return &models.Token{ID: e.TokenID, Owner: e.To, UpdatedAt: e.OccurredAt}
}
