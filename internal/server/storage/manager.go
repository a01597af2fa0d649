package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/cal/internal/server/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

const (
	pingTimeout     = 5 * time.Second
	maxOpenConns    = 20
	connMaxIdleTime = 5 * time.Minute
)

// Seams for tests.
var (
	sqlOpen = sql.Open
	migrate = func(ctx context.Context, db *sql.DB) ([]*goose.MigrationResult, error) {
		p, err := goose.NewProvider(goose.DialectPostgres, db, migrations.Migrations)
		if err != nil {
			return nil, err
		}
		return p.Up(ctx)
	}
)

// Open connects to PostgreSQL through the pgx stdlib driver and checks the
// connection within pingTimeout.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sqlOpen("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: ping: %w", err)
	}
	return db, nil
}

// RunMigrations applies the embedded migrations that are not applied yet
// and reports how many ran.
func RunMigrations(ctx context.Context, db *sql.DB) (int, error) {
	results, err := migrate(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("storage: migrate: %w", err)
	}
	return len(results), nil
}
