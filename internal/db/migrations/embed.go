// Package migrations embeds the goose migrations applied to every data partition.
package migrations

import "embed"

// FS holds the SQL migrations
//
//go:embed *.sql
var FS embed.FS
