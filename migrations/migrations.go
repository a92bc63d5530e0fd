// Package migrations embeds the SQL schema migrations for the exchange database.
package migrations

import "embed"

// FS holds the up/down migration files.
//
//go:embed *.sql
var FS embed.FS
