package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Licoreria-api/internal/domain/entity"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate aplica los scripts de migrations/ en orden. Son idempotentes.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	files, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(files)
	for _, name := range files {
		script, err := migrations.ReadFile(name)
		if err != nil {
			return err
		}
		if _, err := pool.Exec(ctx, string(script)); err != nil {
			return wrap(fmt.Sprintf("migrate %s", name), err)
		}
	}
	return nil
}

// SeedCatalog inserta los materiales del pipeline que falten, con saldo cero.
func SeedCatalog(ctx context.Context, pool *pgxpool.Pool) error {
	for _, m := range entity.CatalogMaterials() {
		_, err := pool.Exec(ctx, `
			INSERT INTO materials (id, name, category, unit, quantity)
			VALUES ($1, $2, $3, $4, 0)
			ON CONFLICT (id) DO NOTHING`, m.ID, m.Name, m.Category, m.Unit)
		if err != nil {
			return wrap("seed material "+m.ID, err)
		}
	}
	return nil
}
