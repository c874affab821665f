package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migration archivo SQL embebido, identificado por su nombre (NNN_descripcion.sql).
type Migration struct {
	Name string
	SQL  string
}

// Migrations migraciones embebidas en orden de nombre.
func Migrations() ([]Migration, error) {
	names, err := fs.Glob(migrationFiles, "migrations/*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	out := make([]Migration, 0, len(names))
	for _, name := range names {
		raw, err := migrationFiles.ReadFile(name)
		if err != nil {
			return nil, err
		}
		out = append(out, Migration{Name: name[len("migrations/"):], SQL: string(raw)})
	}
	return out, nil
}

// Migrate aplica todas las migraciones embebidas en orden. Son idempotentes (IF NOT EXISTS).
func Migrate(ctx context.Context, q Querier) error {
	migrations, err := Migrations()
	if err != nil {
		return fmt.Errorf("leer migraciones: %w", err)
	}
	for _, m := range migrations {
		if _, err := q.Exec(ctx, m.SQL); err != nil {
			return fmt.Errorf("migración %s: %w", m.Name, err)
		}
	}
	return nil
}
