// Package migrations embeds the goose migrations for each SQL driver.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed postgres/*.sql
var postgresFS embed.FS

//go:embed sqlite/*.sql
var sqliteFS embed.FS

// Postgres returns the PostgreSQL migrations rooted at the migration files.
func Postgres() fs.FS { return sub(postgresFS, "postgres") }

// SQLite returns the SQLite migrations rooted at the migration files.
func SQLite() fs.FS { return sub(sqliteFS, "sqlite") }

func sub(fsys embed.FS, dir string) fs.FS {
	out, err := fs.Sub(fsys, dir)
	if err != nil {
		// Only reachable if the embed directive and dir disagree.
		panic(err)
	}
	return out
}
