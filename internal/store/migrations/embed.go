package migrations

import "embed"

// FS holds the SQL migrations of the development backend.
//
//go:embed *.sql
var FS embed.FS
