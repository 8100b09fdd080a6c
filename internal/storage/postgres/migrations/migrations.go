// Package migrations holds the schema migrations applied at startup.
package migrations

import "github.com/uptrace/bun/migrate"

var Migrations = migrate.NewMigrations() //nolint:gochecknoglobals // -
