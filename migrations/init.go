package migrations

import (
	"io/fs"

	schemaregistry "github.com/goliatone/go-schema-registry"
)

func init() {
	sqlFS, err := fs.Sub(schemaregistry.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return
	}
	Register(sqlFS)
}
