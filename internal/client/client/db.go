package client

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/cal/internal/client/migrations"
	"github.com/dmitrijs2005/cal/internal/client/repositories/metadata"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// Repositories groups the client's local stores and the database behind them.
type Repositories struct {
	DB       *sql.DB
	Metadata metadata.Repository
}

func (r *Repositories) Close() error {
	return r.DB.Close()
}

// RunMigrations brings the local schema up to date. Already applied
// versions are skipped.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	p, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.Migrations)
	if err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	if _, err := p.Up(ctx); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	return nil
}

// sqliteDSN turns a plain file path into a modernc DSN with a busy timeout,
// so the reminder watcher and REPL commands wait on each other instead of
// failing with SQLITE_BUSY.
func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") || strings.Contains(path, "?") {
		return path
	}
	return "file:" + path + "?_pragma=busy_timeout(5000)"
}

// InitDatabase opens the SQLite file at path, migrates it and binds the
// repositories to it.
func InitDatabase(ctx context.Context, path string) (*Repositories, error) {
	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repositories{DB: db, Metadata: metadata.NewSQLiteRepository(db)}, nil
}
