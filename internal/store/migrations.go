package store

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"ipo-readiness/internal/common/database"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrations returns the schema scripts of the response store in file name order.
func Migrations() ([]database.Migration, error) {
	names, err := fs.Glob(migrationFiles, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(names)

	out := make([]database.Migration, 0, len(names))
	for _, name := range names {
		body, err := migrationFiles.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		out = append(out, database.Migration{Name: name, SQL: string(body)})
	}
	return out, nil
}
