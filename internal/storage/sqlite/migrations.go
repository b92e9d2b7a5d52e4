package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"sync"

	"github.com/pressly/goose/v3"
)

// migrations holds the goose SQL files that set up the ledger schema.
// They run on every New; the database is in-memory, so it always starts empty.
//
//go:embed migrations/*.sql
var migrations embed.FS

var (
	gooseSetup    sync.Once
	gooseSetupErr error
)

// runMigrations applies all pending migrations.
func runMigrations(ctx context.Context, db *sql.DB) error {
	gooseSetup.Do(func() {
		goose.SetBaseFS(migrations)
		goose.SetLogger(goose.NopLogger())
		gooseSetupErr = goose.SetDialect("sqlite3")
	})
	if gooseSetupErr != nil {
		return gooseSetupErr
	}
	return goose.UpContext(ctx, db, "migrations")
}
