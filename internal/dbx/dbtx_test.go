package dbx

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openKV(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE metadata (key TEXT PRIMARY KEY, value BLOB)`)
	require.NoError(t, err)
	return db
}

func keys(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM metadata`).Scan(&n))
	return n
}

func put(ctx context.Context, tx DBTX, key string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO metadata(key, value) VALUES (?, ?)`, key, []byte("v"))
	return err
}

func TestWithTx_CommitsBothWrites(t *testing.T) {
	db := openKV(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		if err := put(ctx, tx, "cal_session_token"); err != nil {
			return err
		}
		return put(ctx, tx, "cal_active_user")
	})
	require.NoError(t, err)
	assert.Equal(t, 2, keys(t, db))
}

func TestWithTx_ErrorRollsBackEverything(t *testing.T) {
	db := openKV(t)
	boom := errors.New("boom")

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		require.NoError(t, put(ctx, tx, "cal_session_token"))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, keys(t, db))
}

func TestWithTx_PanicRollsBackAndPropagates(t *testing.T) {
	db := openKV(t)

	assert.PanicsWithValue(t, "kaput", func() {
		_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
			require.NoError(t, put(ctx, tx, "cal_session_token"))
			panic("kaput")
		})
	})
	assert.Zero(t, keys(t, db))
}

func TestWithTx_BeginFails(t *testing.T) {
	db := openKV(t)
	require.NoError(t, db.Close())

	called := false
	err := WithTx(context.Background(), db, nil, func(context.Context, DBTX) error {
		called = true
		return nil
	})
	assert.ErrorContains(t, err, "begin")
	assert.False(t, called)
}

func TestWithTx_CommitFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO metadata`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit().WillReturnError(errors.New("disk I/O error"))

	err = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		return put(ctx, tx, "cal_device_id")
	})
	assert.ErrorContains(t, err, "commit: disk I/O error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollbackFailureIsJoined(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback().WillReturnError(errors.New("conn lost"))

	fnErr := errors.New("validation failed")
	err = WithTx(context.Background(), db, nil, func(context.Context, DBTX) error {
		return fnErr
	})
	assert.ErrorIs(t, err, fnErr)
	assert.ErrorContains(t, err, "rollback: conn lost")
	assert.NoError(t, mock.ExpectationsWereMet())
}
