// Package migrations embeds the CLI's goose SQL migrations for the local
// token cache.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
