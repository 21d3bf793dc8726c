package sqlite_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jrsteele09/go-dbgate/internal/errors"
	"github.com/jrsteele09/go-dbgate/internal/utils"
	"github.com/jrsteele09/go-dbgate/storage"
	"github.com/jrsteele09/go-dbgate/storage/sqlite"
)

func setupMockStore(t *testing.T) (*sqlite.Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlite.NewFromDB(db), mock
}

func TestListTables(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectQuery("SELECT name FROM sqlite_master WHERE type='table' ORDER BY name").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("posts").AddRow("users"))

	tables, err := store.ListTables(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"posts", "users"}, tables)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReadBuildsDeterministicQuery(t *testing.T) {
	store, mock := setupMockStore(t)

	// Filter keys are sorted, so the WHERE clause is always the same
	// regardless of map iteration order.
	mock.ExpectQuery("SELECT * FROM users WHERE active = ? AND name = ? ORDER BY id LIMIT ?").
		WithArgs(int64(1), "John Doe", 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(1), []byte("John Doe")))

	rows, err := store.Read(context.Background(), "users",
		map[string]any{"name": "John Doe", "active": int64(1)}, utils.Ptr(5), "id")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, int64(1), rows[0]["id"])
	// Byte slices come back as strings.
	require.Equal(t, "John Doe", rows[0]["name"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReadWithoutFilter(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectQuery("SELECT * FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rows, err := store.Read(context.Background(), "users", nil, nil, "")
	require.NoError(t, err)
	require.Empty(t, rows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertSortsColumns(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectExec("INSERT INTO users (email,name) VALUES (?,?)").
		WithArgs("john@example.com", "John Doe").
		WillReturnResult(sqlmock.NewResult(7, 1))

	id, err := store.Insert(context.Background(), "users",
		map[string]any{"name": "John Doe", "email": "john@example.com"})
	require.NoError(t, err)
	require.Equal(t, int64(7), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertRejectsEmptyRow(t *testing.T) {
	store, _ := setupMockStore(t)

	_, err := store.Insert(context.Background(), "users", nil)
	require.Error(t, err)
}

func TestUpdate(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectExec("UPDATE users SET email = ?,name = ? WHERE id = ?").
		WithArgs("new@example.com", "New Name", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	count, err := store.Update(context.Background(), "users",
		map[string]any{"name": "New Name", "email": "new@example.com"},
		map[string]any{"id": int64(1)})
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectExec("DELETE FROM users WHERE id = ?").
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	count, err := store.Delete(context.Background(), "users", map[string]any{"id": int64(1)})
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRequiresFilter(t *testing.T) {
	store, mock := setupMockStore(t)

	_, err := store.Delete(context.Background(), "users", nil)
	require.ErrorIs(t, err, apperrors.ErrFilterRequired)

	// The statement never reaches the database.
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTable(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectExec("CREATE TABLE people (id INTEGER PRIMARY KEY,name TEXT NOT NULL,email TEXT UNIQUE,created_at DATETIME DEFAULT CURRENT_TIMESTAMP)").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.CreateTable(context.Background(), "people", storage.TableSchema{
		Columns: []storage.ColumnDef{
			{Name: "id", Type: "INTEGER", PrimaryKey: true},
			{Name: "name", Type: "TEXT", NotNull: true},
			{Name: "email", Type: "TEXT", Unique: true},
			{Name: "created_at", Type: "DATETIME", Default: "CURRENT_TIMESTAMP"},
		},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTableDefaultsColumnType(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectExec("CREATE TABLE notes (body TEXT)").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.CreateTable(context.Background(), "notes", storage.TableSchema{
		Columns: []storage.ColumnDef{{Name: "body"}},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTableRequiresColumns(t *testing.T) {
	store, _ := setupMockStore(t)

	err := store.CreateTable(context.Background(), "empty", storage.TableSchema{})
	require.Error(t, err)
}

func TestDropTable(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectExec("DROP TABLE people").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.DropTable(context.Background(), "people"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDescribeTable(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectQuery("PRAGMA table_info(posts)").
		WillReturnRows(sqlmock.NewRows([]string{"cid", "name", "type", "notnull", "dflt_value", "pk"}).
			AddRow(0, "id", "INTEGER", 0, nil, 1).
			AddRow(1, "title", "TEXT", 1, nil, 0).
			AddRow(2, "user_id", "INTEGER", 0, nil, 0))
	mock.ExpectQuery("PRAGMA foreign_key_list(posts)").
		WillReturnRows(sqlmock.NewRows([]string{"id", "seq", "table", "from", "to", "on_update", "on_delete", "match"}).
			AddRow(0, 0, "users", "user_id", "id", "NO ACTION", "NO ACTION", "NONE"))
	mock.ExpectQuery("PRAGMA index_list(posts)").
		WillReturnRows(sqlmock.NewRows([]string{"seq", "name", "unique", "origin", "partial"}).
			AddRow(0, "idx_posts_title", 1, "c", 0))

	info, err := store.DescribeTable(context.Background(), "posts")
	require.NoError(t, err)
	require.Equal(t, "posts", info.Table)
	require.Len(t, info.Columns, 3)
	require.True(t, info.Columns[0].PrimaryKey)
	require.True(t, info.Columns[1].NotNull)
	require.Equal(t, []storage.ForeignKeyInfo{{Table: "users", From: "user_id", To: "id"}}, info.ForeignKeys)
	require.Equal(t, []storage.IndexInfo{{Name: "idx_posts_title", Unique: true}}, info.Indexes)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDescribeUnknownTable(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectQuery("PRAGMA table_info(missing)").
		WillReturnRows(sqlmock.NewRows([]string{"cid", "name", "type", "notnull", "dflt_value", "pk"}))

	_, err := store.DescribeTable(context.Background(), "missing")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRejectsMaliciousIdentifiers(t *testing.T) {
	store, mock := setupMockStore(t)
	ctx := context.Background()

	for _, identifier := range []string{"users; DROP TABLE users", "users--", "a b", "café", ""} {
		_, err := store.Read(ctx, identifier, nil, nil, "")
		require.ErrorIs(t, err, apperrors.ErrInvalidIdentifier, "table %q", identifier)
	}

	// Filter keys and order-by columns go through the same validation.
	_, err := store.Read(ctx, "users", map[string]any{"id = 1 OR 1=1 --": int64(1)}, nil, "")
	require.ErrorIs(t, err, apperrors.ErrInvalidIdentifier)
	_, err = store.Read(ctx, "users", nil, nil, "name; DROP")
	require.ErrorIs(t, err, apperrors.ErrInvalidIdentifier)
	_, err = store.Insert(ctx, "users", map[string]any{"name); --": "x"})
	require.ErrorIs(t, err, apperrors.ErrInvalidIdentifier)

	// Nothing reached the database.
	require.NoError(t, mock.ExpectationsWereMet())
}
