package storage

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/cal/internal/common"
	"github.com/dmitrijs2005/cal/internal/rowstore"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStoreWithMock(t *testing.T) (*PostgresStore, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresStore(db, rowstore.DefaultSchema), mock, db
}

var reminderCols = []string{"id", "user_id", "event_id", "event_time", "notified"}

func TestSelect_FiltersOrderLimit(t *testing.T) {
	s, mock, db := newStoreWithMock(t)
	defer db.Close()

	at := time.Date(2024, 6, 1, 18, 30, 0, 0, time.UTC)
	q := `(?s)^SELECT "id", "user_id", "event_id", "event_time", "notified" FROM reminders ` +
		`WHERE "user_id" = \$1 AND "event_time" < \$2 ORDER BY "event_time" DESC LIMIT 5$`
	mock.ExpectQuery(q).
		WithArgs("u1", "2024-07-01T00:00:00Z").
		WillReturnRows(sqlmock.NewRows(reminderCols).AddRow("r1", "u1", "e1", at, false))

	rows, err := s.Select(context.Background(), common.TableReminders, rowstore.Query{
		Where:   []rowstore.Cond{rowstore.Eq("user_id", "u1"), rowstore.Lt("event_time", "2024-07-01T00:00:00Z")},
		OrderBy: "event_time",
		Desc:    true,
		Limit:   5,
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, rowstore.Row{
		"id": "r1", "user_id": "u1", "event_id": "e1",
		"event_time": "2024-06-01T18:30:00Z", "notified": false,
	}, rows[0])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSelect_EmptyIsNotNil(t *testing.T) {
	s, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`^SELECT .* FROM app_config WHERE "key" = \$1 LIMIT 1$`).
		WithArgs("master_password_hash").
		WillReturnRows(sqlmock.NewRows([]string{"key", "value"}))

	rows, err := s.Select(context.Background(), common.TableAppConfig, rowstore.Query{
		Where: []rowstore.Cond{rowstore.Eq("key", "master_password_hash")}, Limit: 1,
	})
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestSelect_UndefinedTable(t *testing.T) {
	s, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`^SELECT .* FROM app_config`).
		WillReturnError(&pgconn.PgError{Code: "42P01", Message: `relation "app_config" does not exist`})

	_, err := s.Select(context.Background(), common.TableAppConfig, rowstore.Query{})
	assert.ErrorIs(t, err, rowstore.ErrTableMissing)
}

func TestSelect_RejectsUnknownColumn(t *testing.T) {
	s, mock, db := newStoreWithMock(t)
	defer db.Close()

	_, err := s.Select(context.Background(), common.TableAdmins, rowstore.Query{
		Where: []rowstore.Cond{rowstore.Eq("1=1; --", "x")},
	})
	assert.ErrorIs(t, err, rowstore.ErrInvalidQuery)

	_, err = s.Select(context.Background(), "pg_shadow", rowstore.Query{})
	assert.ErrorIs(t, err, rowstore.ErrUnknownTable)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSelect_NullCondition(t *testing.T) {
	s, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`^SELECT .* FROM users WHERE "device_id" IS NULL$`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "device_id", "last_seen"}))

	_, err := s.Select(context.Background(), common.TableUsers, rowstore.Query{
		Where: []rowstore.Cond{rowstore.Eq("device_id", nil)},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert_ReturnsStoredRow(t *testing.T) {
	s, mock, db := newStoreWithMock(t)
	defer db.Close()

	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	q := `(?s)^INSERT INTO admins \("email","hashed_password","name","role","username"\) ` +
		`VALUES \(\$1,\$2,\$3,\$4,\$5\) RETURNING "id", "role", "name", "username", "email", "hashed_password", "created_at"$`
	mock.ExpectQuery(q).
		WithArgs("ana@cal.admin", "h", "Ana Ruiz", "admin", "ana").
		WillReturnRows(sqlmock.NewRows([]string{"id", "role", "name", "username", "email", "hashed_password", "created_at"}).
			AddRow([]byte("a1"), "admin", "Ana Ruiz", "ana", "ana@cal.admin", "h", created))

	row, err := s.Insert(context.Background(), common.TableAdmins, rowstore.Row{
		"role": "admin", "name": "Ana Ruiz", "username": "ana", "email": "ana@cal.admin", "hashed_password": "h",
	})
	require.NoError(t, err)
	assert.Equal(t, "a1", row.String("id"))
	assert.Equal(t, "2024-01-02T03:04:05Z", row.String("created_at"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert_UniqueViolation(t *testing.T) {
	s, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`^INSERT INTO reminders`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "reminders_user_id_event_id_key"})

	_, err := s.Insert(context.Background(), common.TableReminders, rowstore.Row{"user_id": "u", "event_id": "e"})
	assert.ErrorIs(t, err, rowstore.ErrConflict)
}

func TestInsert_EmptyRow(t *testing.T) {
	s, _, db := newStoreWithMock(t)
	defer db.Close()

	_, err := s.Insert(context.Background(), common.TableReminders, rowstore.Row{})
	assert.ErrorIs(t, err, rowstore.ErrInvalidQuery)
}

func TestUpsert_OnConflictUpdate(t *testing.T) {
	s, mock, db := newStoreWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT INTO reminders \("event_id","event_time","notified","user_id"\) VALUES \(\$1,\$2,\$3,\$4\) ` +
		`ON CONFLICT \("user_id", "event_id"\) DO UPDATE SET "event_time" = EXCLUDED."event_time", "notified" = EXCLUDED."notified"$`
	mock.ExpectExec(q).
		WithArgs("e1", "2024-06-01T18:30:00Z", false, "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.Upsert(context.Background(), common.TableReminders, rowstore.Row{
		"user_id": "u1", "event_id": "e1", "event_time": "2024-06-01T18:30:00Z", "notified": false,
	}, "user_id", "event_id")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_DoNothingWhenOnlyKey(t *testing.T) {
	s, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectExec(`ON CONFLICT \("key"\) DO NOTHING$`).
		WithArgs("k").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.Upsert(context.Background(), common.TableAppConfig, rowstore.Row{"key": "k"}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_RequiresUniqueKey(t *testing.T) {
	s, _, db := newStoreWithMock(t)
	defer db.Close()

	err := s.Upsert(context.Background(), common.TableReminders, rowstore.Row{"user_id": "u"}, "user_id")
	assert.ErrorIs(t, err, rowstore.ErrInvalidQuery)
}

func TestUpdate(t *testing.T) {
	s, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectExec(`^UPDATE reminders SET "notified" = \$1 WHERE "user_id" = \$2 AND "event_id" = \$3$`).
		WithArgs(true, "u1", "e1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.Update(context.Background(), common.TableReminders, rowstore.Row{"notified": true},
		rowstore.Eq("user_id", "u1"), rowstore.Eq("event_id", "e1"))
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	s, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectExec(`^DELETE FROM reminders WHERE "user_id" = \$1 AND "notified" = \$2 AND "event_time" < \$3$`).
		WithArgs("u1", true, "2024-05-25T00:00:00Z").
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := s.Delete(context.Background(), common.TableReminders,
		rowstore.Eq("user_id", "u1"), rowstore.Eq("notified", true), rowstore.Lt("event_time", "2024-05-25T00:00:00Z"))
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_DBError(t *testing.T) {
	s, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectExec(`^DELETE FROM reminders`).WillReturnError(errors.New("db down"))

	err := s.Delete(context.Background(), common.TableReminders, rowstore.Eq("user_id", "u1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete reminders: db down")
}

func TestCount(t *testing.T) {
	s, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`^SELECT COUNT\(\*\) FROM users$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(3)))

	n, err := s.Count(context.Background(), common.TableUsers)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestNormalize(t *testing.T) {
	id := [16]byte{0x12, 0x34}
	assert.Equal(t, "12340000-0000-0000-0000-000000000000", normalize(id))
	assert.Equal(t, int64(4), normalize(int32(4)))
	assert.Equal(t, "x", normalize([]byte("x")))
	assert.Nil(t, normalize(nil))
}
