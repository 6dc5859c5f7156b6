package cli

import (
	"context"
	"os"
)

// Transfer moves a token to a new owner. The from account defaults to the
// logged-in account but can be overridden, e.g. when acting as a delegate
// or operator.
func (a *App) Transfer(ctx context.Context) error {
	tokenID, err := GetSimpleText(a.reader, "Token id", os.Stdout)
	if err != nil {
		printlnFn("Error:", err)
		return err
	}

	from, err := GetSimpleText(a.reader, "From (empty = yourself)", os.Stdout)
	if err != nil {
		printlnFn("Error:", err)
		return err
	}
	if from == "" {
		from = a.account
	}

	to, err := GetSimpleText(a.reader, "To", os.Stdout)
	if err != nil {
		printlnFn("Error:", err)
		return err
	}

	if err := a.api.Transfer(ctx, tokenID, from, to); err != nil {
		printlnFn("Transfer failed:", err)
		return err
	}

	printlnFn("Transferred", tokenID, "to", to)
	return nil
}
