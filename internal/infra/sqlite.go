package infra

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/psytech/suvichar/internal/migrations"
)

// OpenSQLite opens the local sqlite database at dsn and applies the record
// store migrations. dsn may be a file path or ":memory:".
func OpenSQLite(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single connection keeps ":memory:" databases coherent across calls
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if err := migrate(ctx, goose.DialectSQLite3, db, migrations.SQLite, "sqlite"); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
