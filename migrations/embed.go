// Package migrations embeds the versioned Postgres schema.
package migrations

import "embed"

// FS holds every NNNNNN_name.{up,down}.sql pair in this directory.
//
//go:embed *.sql
var FS embed.FS
