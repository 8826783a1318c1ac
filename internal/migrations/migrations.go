// Package migrations embeds the goose SQL migrations for the durable record
// store, one directory per dialect.
package migrations

import "embed"

// SQLite holds migrations for the local sqlite database.
//
//go:embed sqlite/*.sql
var SQLite embed.FS

// Postgres holds migrations for the Postgres database.
//
//go:embed postgres/*.sql
var Postgres embed.FS
