package metadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/dmitrijs2005/cal/internal/dbx"
)

const table = "metadata"

// SQLiteRepository keeps values in the local "metadata" table.
type SQLiteRepository struct {
	db   dbx.DBTX
	conn *sql.DB
	sb   sq.StatementBuilderType
}

// NewSQLiteRepository binds a repository to db. Given a *sql.DB, SetMany
// opens its own transaction; given a *sql.Tx, it joins that one.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	r := &SQLiteRepository{db: db, sb: sq.StatementBuilder.PlaceholderFormat(sq.Question)}
	r.conn, _ = db.(*sql.DB)
	return r
}

func (r *SQLiteRepository) exec(ctx context.Context, b sq.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}

func (r *SQLiteRepository) Get(ctx context.Context, key string) ([]byte, error) {
	query, args, err := r.sb.Select("value").From(table).Where(sq.Eq{"key": key}).ToSql()
	if err != nil {
		return nil, err
	}

	var value []byte
	switch err := r.db.QueryRowContext(ctx, query, args...).Scan(&value); {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("metadata: get %q: %w", key, err)
	}
	return value, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, key string, value []byte) error {
	b := r.sb.Insert(table).Columns("key", "value").Values(key, value).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value")
	if err := r.exec(ctx, b); err != nil {
		return fmt.Errorf("metadata: set %q: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) SetMany(ctx context.Context, values map[string][]byte) error {
	if len(values) == 0 {
		return nil
	}
	if r.conn == nil {
		return r.setEach(ctx, values)
	}
	return dbx.WithTx(ctx, r.conn, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return NewSQLiteRepository(tx).setEach(ctx, values)
	})
}

func (r *SQLiteRepository) setEach(ctx context.Context, values map[string][]byte) error {
	for k, v := range values {
		if err := r.Set(ctx, k, v); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, key string) error {
	if err := r.exec(ctx, r.sb.Delete(table).Where(sq.Eq{"key": key})); err != nil {
		return fmt.Errorf("metadata: delete %q: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if err := r.exec(ctx, r.sb.Delete(table)); err != nil {
		return fmt.Errorf("metadata: clear: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context) (map[string][]byte, error) {
	query, args, err := r.sb.Select("key", "value").From(table).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("metadata: list: %w", err)
	}
	defer rows.Close()

	out := map[string][]byte{}
	for rows.Next() {
		var (
			k string
			v []byte
		)
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("metadata: list: %w", err)
		}
		out[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("metadata: list: %w", err)
	}
	return out, nil
}
