// Package migrations embeds SQL migration files for the SQLite store.
//
// Files are named NNN_name.up.sql and NNN_name.down.sql. Only up
// migrations are applied automatically.
package migrations

import "embed"

// FS contains all SQL migration files embedded at compile time.
//
//go:embed *.sql
var FS embed.FS
