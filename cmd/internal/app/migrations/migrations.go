// Package migrations embeds the CoreCMS PostgreSQL schema migrations (goose format).
package migrations

import "embed"

// FS holds the *.sql migration files.
//
//go:embed *.sql
var FS embed.FS
