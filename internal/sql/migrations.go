package sql

import (
	"context"
	"embed"
	"io/fs"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	tern "github.com/jackc/tern/v2/migrate"
	"github.com/supplychain-resilience/scr/internal/logr"
)

var (
	mu sync.Mutex

	//go:embed migrations/*.sql
	migrations embed.FS
)

func migrate(ctx context.Context, logger logr.Logger, pool *pgxpool.Pool) error {
	mu.Lock()
	defer mu.Unlock()

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	m, err := tern.NewMigrator(ctx, conn.Conn(), "schema_version")
	if err != nil {
		return err
	}
	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return err
	}
	if err := m.LoadMigrations(sub); err != nil {
		return err
	}
	m.OnStart = func(sequence int32, name, direction, sql string) {
		logger.V(1).Info("migrating database", "sequence", sequence, "name", name, "direction", direction)
	}
	return m.Migrate(ctx)
}
