// Package migrations embeds the SQL migrations for the marker store
// and applies them with goose. The schema is a single markers table
// keyed by the composed "{feedId}:{kind}:{entityId}" string.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

// FS holds the embedded migration files, applied in name order.
//
//go:embed *.sql
var FS embed.FS

// Run brings db up to the latest schema version.
func Run(db *sql.DB) error {
	goose.SetBaseFS(FS)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}
