package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Mint(ctx context.Context) error
	Transfer(ctx context.Context) error
	Approve(ctx context.Context) error
	Operator(ctx context.Context) error
	List(ctx context.Context) error
	Show(ctx context.Context) error
	Balance(ctx context.Context) error
	Sync(ctx context.Context) error
	AddRecord(ctx context.Context) error
	GetRecord(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the HealthDot CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("hdot> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: mint, transfer, approve, operator, (l)ist, show, balance, sync, addrecord, getrecord, logout, exit")
			} else {
				printlnFn("Available commands: login, (l)ist, show, balance, sync, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "mint":
			_ = a.Mint(ctx)

		case "transfer":
			_ = a.Transfer(ctx)

		case "approve":
			_ = a.Approve(ctx)

		case "operator":
			_ = a.Operator(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "show":
			_ = a.Show(ctx)

		case "balance":
			_ = a.Balance(ctx)

		case "sync":
			_ = a.Sync(ctx)

		case "addrecord":
			_ = a.AddRecord(ctx)

		case "getrecord":
			_ = a.GetRecord(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
