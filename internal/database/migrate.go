package database

import (
	"context"
	"embed"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

// Migrate applies all pending schema migrations on the pool's database.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if pool == nil {
		return eris.New("database: pool is nil")
	}

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return eris.Wrap(err, "database: set goose dialect")
	}
	if err := goose.UpContext(ctx, db, migrationsDir); err != nil {
		return eris.Wrap(err, "database: apply migrations")
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err == nil {
		zap.L().Info("database: schema up to date", zap.Int64("version", version))
	}
	return nil
}
