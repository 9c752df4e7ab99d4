package store

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"

	"soporte-itsm/core/utils"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ApplyMigrations brings the schema up to date using the embedded goose
// migrations. Safe to call on every startup.
func ApplyMigrations(ctx context.Context, db *DB, logger *utils.Logger) error {
	dialect := "sqlite3"
	if db.Driver() == DriverPostgres {
		dialect = "postgres"
	}
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migrations fs: %w", err)
	}
	provider, err := goose.NewProvider(goose.Dialect(dialect), db.DB, sub)
	if err != nil {
		return fmt.Errorf("migration provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	if logger != nil {
		for _, r := range results {
			logger.Printf("migration applied: %s", r.Source.Path)
		}
	}
	return nil
}
