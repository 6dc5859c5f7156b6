package client

import (
	"context"
	"database/sql"
	"log"

	"github.com/pressly/goose/v3"

	"github.com/healthdot/registry/internal/client/migrations"
	"github.com/healthdot/registry/internal/client/repositories/cache"
)

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		log.Fatal("failed to set goose dialect:", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens (or creates) the local SQLite cache, applies the
// embedded migrations, and returns a cache repository bound to it.
func InitDatabase(ctx context.Context, dsn string) (cache.Repository, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		return nil, err
	}

	return cache.NewSQLiteRepository(db), nil
}
