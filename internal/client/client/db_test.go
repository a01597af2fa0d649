package client

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func tables(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`)
	require.NoError(t, err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		require.NoError(t, rows.Scan(&n))
		names = append(names, n)
	}
	require.NoError(t, rows.Err())
	return names
}

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, "file:cal.db?_pragma=busy_timeout(5000)", sqliteDSN("cal.db"))
	assert.Equal(t, "file:x.db?mode=ro", sqliteDSN("file:x.db?mode=ro"))
	assert.Equal(t, ":memory:?cache=shared", sqliteDSN(":memory:?cache=shared"))
}

func TestInitDatabase_FreshFileGetsSchema(t *testing.T) {
	ctx := context.Background()

	repos, err := InitDatabase(ctx, filepath.Join(t.TempDir(), "cal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })

	assert.Contains(t, tables(t, repos.DB), "metadata")
}

func TestInitDatabase_SessionSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cal.db")

	repos, err := InitDatabase(ctx, path)
	require.NoError(t, err)
	require.NoError(t, repos.Metadata.SetMany(ctx, map[string][]byte{
		"cal_device_id":     []byte("dev-1"),
		"cal_session_token": []byte("tok"),
	}))
	require.NoError(t, repos.Close())

	repos, err = InitDatabase(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })

	all, err := repos.Metadata.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{
		"cal_device_id":     []byte("dev-1"),
		"cal_session_token": []byte("tok"),
	}, all)
}

func TestInitDatabase_UnopenablePath(t *testing.T) {
	_, err := InitDatabase(context.Background(), filepath.Join(t.TempDir(), "missing", "cal.db"))
	assert.Error(t, err)
}

func TestRunMigrations_SecondRunIsNoop(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, RunMigrations(ctx, db))
	before := tables(t, db)
	require.NoError(t, RunMigrations(ctx, db))
	assert.Equal(t, before, tables(t, db))
}
