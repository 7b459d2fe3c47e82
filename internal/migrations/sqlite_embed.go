package migrations

import "embed"

// SQLite embeds the schema for the sqlite kv driver.
//
//go:embed sqlite/*.sql
var SQLite embed.FS
