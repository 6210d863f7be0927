package migrations

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed postgres/*.sql sqlite3/*.sql
var files embed.FS

// Dir returns the migration files for a database driver.
func Dir(driver string) (fs.FS, error) {
	switch driver {
	case "postgres", "sqlite3":
		return fs.Sub(files, driver)
	default:
		return nil, fmt.Errorf("no migrations for driver %q", driver)
	}
}
