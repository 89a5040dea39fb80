package migrations

import (
	"context"
	"fmt"

	"zenith-sync/internal/storage/postgres"
)

// RunPostgresMigrations applies the embedded PostgreSQL migrations. Each file
// runs in its own transaction; the schema statements are idempotent.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool) error {
	migrations, err := Postgres()
	if err != nil {
		return err
	}
	for _, m := range migrations {
		if err := applyPostgres(ctx, pool, m); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.Name, err)
		}
	}
	return nil
}

func applyPostgres(ctx context.Context, pool *postgres.Pool, m Migration) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, stmt := range m.Statements {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
