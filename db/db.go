// Package db embeds the goose SQL migrations of the service.
package db

import "embed"

// Migrations holds migrations/*.sql, applied by pg.Migrate with the
// directory name "migrations".
//
//go:embed migrations/*.sql
var Migrations embed.FS
