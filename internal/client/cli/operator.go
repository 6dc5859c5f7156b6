package cli

import (
	"context"
	"os"
)

// Operator grants or revokes a blanket approval for an operator over all of
// the logged-in account's tokens.
func (a *App) Operator(ctx context.Context) error {
	operator, err := GetSimpleText(a.reader, "Operator account", os.Stdout)
	if err != nil {
		printlnFn("Error:", err)
		return err
	}

	action, err := GetSimpleText(a.reader, "Action: (g)rant or (r)evoke", os.Stdout)
	if err != nil {
		printlnFn("Error:", err)
		return err
	}

	var approved bool
	switch action {
	case "g", "grant":
		approved = true
	case "r", "revoke":
		approved = false
	default:
		printlnFn("Unknown action:", action)
		return nil
	}

	if err := a.api.SetOperator(ctx, operator, approved); err != nil {
		printlnFn("Operator update failed:", err)
		return err
	}

	if approved {
		printlnFn("Granted operator", operator)
	} else {
		printlnFn("Revoked operator", operator)
	}
	return nil
}
