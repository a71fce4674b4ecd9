// Package migrations embeds the versioned schema files applied by
// internal/database/migration.
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS
