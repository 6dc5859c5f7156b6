// Package cli implements the interactive HealthDot registry client: a REPL
// over the server's JSON API with a local SQLite cache of token state.
package cli

import (
	"bufio"
	"context"
	"log"
	"os"

	"github.com/healthdot/registry/internal/client/client"
	"github.com/healthdot/registry/internal/client/config"
	"github.com/healthdot/registry/internal/client/repositories/cache"

	_ "modernc.org/sqlite"
)

type App struct {
	config  *config.Config
	api     client.Client
	cache   cache.Repository
	account string
	reader  *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {

	ctx := context.Background()

	cacheRepo, err := client.InitDatabase(ctx, c.CachePath)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	api := client.NewHTTPClient(c.ServerEndpointAddr, c.RequestTimeout)

	return &App{config: c, api: api, cache: cacheRepo, reader: bufio.NewReader(os.Stdin)}, nil
}

func (a *App) isLoggedIn() bool {
	return a.account != ""
}

func (a *App) status() string {
	if a.account == "" {
		return "not logged in"
	}
	return a.account
}

func (a *App) Run(ctx context.Context) {
	printlnFn("HealthDot registry CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.status, scanner)
}
