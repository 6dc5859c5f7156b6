package cli

import (
	"context"
	"os"
)

// Login prompts for an account name and the registrar secret, then opens a
// session on the server.
func (a *App) Login(ctx context.Context) error {
	account, err := GetSimpleText(a.reader, "Account", os.Stdout)
	if err != nil {
		printlnFn("Error:", err)
		return err
	}

	secret, err := GetSecret("Registrar secret", os.Stdout)
	if err != nil {
		printlnFn("Error:", err)
		return err
	}

	if err := a.api.CreateSession(ctx, account, string(secret)); err != nil {
		printlnFn("Login failed:", err)
		return err
	}

	a.account = account
	printlnFn("Logged in as", account)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.account = ""
	printlnFn("Logged out")
	return nil
}
