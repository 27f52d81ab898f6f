// Package migrations embeds SQL migration files into the binary,
// so schema changes ship with the executable rather than as loose files.
package migrations

import (
	"embed"

	"github.com/tillfold/tillfold-core/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "."
}
