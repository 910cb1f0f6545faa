// Package migrations embeds the versioned schema so the server and the
// migrate tool can apply it without a migrations directory on disk.
package migrations

import "embed"

// FS holds every NNNNNN_name.{up,down}.sql file
//
//go:embed *.sql
var FS embed.FS
