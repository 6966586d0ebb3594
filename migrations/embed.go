package migrations

import "embed"

// FS holds the schema migrations for the SQL-backed user stores.
//
//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
