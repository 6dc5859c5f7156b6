package cli

import (
	"context"
	"os"
)

// Balance reports how many tokens an account owns.
func (a *App) Balance(ctx context.Context) error {
	account, err := GetSimpleText(a.reader, "Account (empty = yourself)", os.Stdout)
	if err != nil {
		printlnFn("Error:", err)
		return err
	}
	if account == "" {
		account = a.account
	}
	if account == "" {
		printlnFn("No account given and not logged in")
		return nil
	}

	balance, err := a.api.Balance(ctx, account)
	if err != nil {
		printlnFn("Balance failed:", err)
		return err
	}

	printlnFn(account, "owns", balance, "token(s)")
	return nil
}
