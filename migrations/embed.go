// Package migrations embeds the SQL migration files into the binary so
// the schema can be applied without the files present on disk.
package migrations

import (
	"embed"

	"github.com/voltmesh/voltmesh-core/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "." // Files sit at the root of the embedded FS
}
