// Package sqlite implements storage.Store on SQLite with parameterized
// queries and identifier sanitization.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	apperrors "github.com/jrsteele09/go-dbgate/internal/errors"
	"github.com/jrsteele09/go-dbgate/storage"
)

var _ storage.Store = (*Store)(nil)

// Store is a SQLite-backed storage.Store. Writes are serialized; SQLite
// permits a single writer at a time.
type Store struct {
	db      *sql.DB
	writeMu sync.Mutex
}

// Open opens (or creates) the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "[sqlite.Open] sql.Open")
	}
	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "[sqlite.Open] db.Ping")
	}
	return &Store{db: db}, nil
}

// NewFromDB wraps an existing database handle (used by tests).
func NewFromDB(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// sanitizeIdentifier validates table and column names so they can be
// interpolated into SQL safely. Only letters, digits, underscores and
// hyphens are allowed; values are always bound as parameters instead.
func sanitizeIdentifier(identifier string) (string, error) {
	if identifier == "" {
		return "", apperrors.Wrapf(apperrors.ErrInvalidIdentifier, "empty identifier")
	}
	for _, r := range identifier {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return "", apperrors.Wrapf(apperrors.ErrInvalidIdentifier, "%q", identifier)
		}
	}
	return identifier, nil
}

// buildWhereClause builds a parameterized WHERE clause from a filter map.
// Keys are sorted so the generated SQL is deterministic.
func buildWhereClause(filter map[string]any) (string, []any, error) {
	if len(filter) == 0 {
		return "", nil, nil
	}

	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	conditions := make([]string, 0, len(keys))
	params := make([]any, 0, len(keys))
	for _, key := range keys {
		safeKey, err := sanitizeIdentifier(key)
		if err != nil {
			return "", nil, err
		}
		conditions = append(conditions, fmt.Sprintf("%s = ?", safeKey))
		params = append(params, filter[key])
	}

	return "WHERE " + strings.Join(conditions, " AND "), params, nil
}

func (s *Store) ListTables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' ORDER BY name")
	if err != nil {
		return nil, errors.Wrap(err, "[ListTables] query")
	}
	defer rows.Close()

	tables := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, "[ListTables] scan")
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func (s *Store) DescribeTable(ctx context.Context, table string) (*storage.TableInfo, error) {
	safeTable, err := sanitizeIdentifier(table)
	if err != nil {
		return nil, err
	}

	info := &storage.TableInfo{
		Table:       table,
		Columns:     []storage.ColumnInfo{},
		ForeignKeys: []storage.ForeignKeyInfo{},
		Indexes:     []storage.IndexInfo{},
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", safeTable))
	if err != nil {
		return nil, errors.Wrap(err, "[DescribeTable] table_info")
	}
	defer rows.Close()
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			defaultVal sql.NullString
			primaryKey int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &primaryKey); err != nil {
			return nil, errors.Wrap(err, "[DescribeTable] table_info scan")
		}
		col := storage.ColumnInfo{
			Name:       name,
			Type:       typ,
			NotNull:    notNull != 0,
			PrimaryKey: primaryKey != 0,
		}
		if defaultVal.Valid {
			col.Default = defaultVal.String
		}
		info.Columns = append(info.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "[DescribeTable] table_info rows")
	}
	if len(info.Columns) == 0 {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "table %q", table)
	}

	fkRows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list(%s)", safeTable))
	if err != nil {
		return nil, errors.Wrap(err, "[DescribeTable] foreign_key_list")
	}
	defer fkRows.Close()
	for fkRows.Next() {
		var (
			id, seq                         int
			refTable, from, to              string
			onUpdate, onDelete, matchClause string
		)
		if err := fkRows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &matchClause); err != nil {
			return nil, errors.Wrap(err, "[DescribeTable] foreign_key_list scan")
		}
		info.ForeignKeys = append(info.ForeignKeys, storage.ForeignKeyInfo{Table: refTable, From: from, To: to})
	}
	if err := fkRows.Err(); err != nil {
		return nil, errors.Wrap(err, "[DescribeTable] foreign_key_list rows")
	}

	idxRows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA index_list(%s)", safeTable))
	if err != nil {
		return nil, errors.Wrap(err, "[DescribeTable] index_list")
	}
	defer idxRows.Close()
	for idxRows.Next() {
		var (
			seq          int
			name, origin string
			unique       int
			partial      int
		)
		if err := idxRows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			return nil, errors.Wrap(err, "[DescribeTable] index_list scan")
		}
		info.Indexes = append(info.Indexes, storage.IndexInfo{Name: name, Unique: unique != 0})
	}
	if err := idxRows.Err(); err != nil {
		return nil, errors.Wrap(err, "[DescribeTable] index_list rows")
	}

	return info, nil
}

func (s *Store) Read(ctx context.Context, table string, filter map[string]any, limit *int, orderBy string) ([]map[string]any, error) {
	safeTable, err := sanitizeIdentifier(table)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT * FROM %s", safeTable)
	params := make([]any, 0)

	if len(filter) > 0 {
		whereClause, whereParams, err := buildWhereClause(filter)
		if err != nil {
			return nil, err
		}
		query += " " + whereClause
		params = append(params, whereParams...)
	}

	if orderBy != "" {
		safeOrder, err := sanitizeIdentifier(orderBy)
		if err != nil {
			return nil, err
		}
		query += fmt.Sprintf(" ORDER BY %s", safeOrder)
	}

	if limit != nil {
		query += " LIMIT ?"
		params = append(params, *limit)
	}

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, errors.Wrap(err, "[Read] query")
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, "[Read] columns")
	}

	results := make([]map[string]any, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, errors.Wrap(err, "[Read] scan")
		}
		record := make(map[string]any, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				record[col] = string(b)
			} else {
				record[col] = values[i]
			}
		}
		results = append(results, record)
	}
	return results, rows.Err()
}

func (s *Store) Insert(ctx context.Context, table string, row map[string]any) (int64, error) {
	safeTable, err := sanitizeIdentifier(table)
	if err != nil {
		return 0, err
	}
	if len(row) == 0 {
		return 0, errors.New("[Insert] empty row")
	}

	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	columns := make([]string, 0, len(keys))
	placeholders := make([]string, 0, len(keys))
	params := make([]any, 0, len(keys))
	for _, key := range keys {
		safeKey, err := sanitizeIdentifier(key)
		if err != nil {
			return 0, err
		}
		columns = append(columns, safeKey)
		placeholders = append(placeholders, "?")
		params = append(params, row[key])
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		safeTable, strings.Join(columns, ","), strings.Join(placeholders, ","))

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	result, err := s.db.ExecContext(ctx, query, params...)
	if err != nil {
		return 0, errors.Wrap(err, "[Insert] exec")
	}
	return result.LastInsertId()
}

func (s *Store) Update(ctx context.Context, table string, changes, filter map[string]any) (int64, error) {
	safeTable, err := sanitizeIdentifier(table)
	if err != nil {
		return 0, err
	}
	if len(changes) == 0 {
		return 0, errors.New("[Update] empty changes")
	}

	keys := make([]string, 0, len(changes))
	for k := range changes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	setClauses := make([]string, 0, len(keys))
	params := make([]any, 0, len(keys))
	for _, key := range keys {
		safeKey, err := sanitizeIdentifier(key)
		if err != nil {
			return 0, err
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = ?", safeKey))
		params = append(params, changes[key])
	}

	query := fmt.Sprintf("UPDATE %s SET %s", safeTable, strings.Join(setClauses, ","))
	if len(filter) > 0 {
		whereClause, whereParams, err := buildWhereClause(filter)
		if err != nil {
			return 0, err
		}
		query += " " + whereClause
		params = append(params, whereParams...)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	result, err := s.db.ExecContext(ctx, query, params...)
	if err != nil {
		return 0, errors.Wrap(err, "[Update] exec")
	}
	return result.RowsAffected()
}

func (s *Store) Delete(ctx context.Context, table string, filter map[string]any) (int64, error) {
	safeTable, err := sanitizeIdentifier(table)
	if err != nil {
		return 0, err
	}
	// A full-table delete must be expressed deliberately, not by omission.
	if len(filter) == 0 {
		return 0, apperrors.Wrapf(apperrors.ErrFilterRequired, "delete from %q", table)
	}

	whereClause, params, err := buildWhereClause(filter)
	if err != nil {
		return 0, err
	}
	query := fmt.Sprintf("DELETE FROM %s %s", safeTable, whereClause)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	result, err := s.db.ExecContext(ctx, query, params...)
	if err != nil {
		return 0, errors.Wrap(err, "[Delete] exec")
	}
	return result.RowsAffected()
}

func (s *Store) CreateTable(ctx context.Context, table string, schema storage.TableSchema) error {
	safeTable, err := sanitizeIdentifier(table)
	if err != nil {
		return err
	}
	if len(schema.Columns) == 0 {
		return errors.New("[CreateTable] schema has no columns")
	}

	columns := make([]string, 0, len(schema.Columns))
	for _, col := range schema.Columns {
		safeCol, err := sanitizeIdentifier(col.Name)
		if err != nil {
			return err
		}
		colType := col.Type
		if colType == "" {
			colType = "TEXT"
		}
		def := safeCol + " " + colType
		if col.PrimaryKey {
			def += " PRIMARY KEY"
		}
		if col.NotNull {
			def += " NOT NULL"
		}
		if col.Unique {
			def += " UNIQUE"
		}
		if col.Default != "" {
			def += " DEFAULT " + col.Default
		}
		columns = append(columns, def)
	}

	query := fmt.Sprintf("CREATE TABLE %s (%s)", safeTable, strings.Join(columns, ","))

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return errors.Wrap(err, "[CreateTable] exec")
	}
	return nil
}

func (s *Store) DropTable(ctx context.Context, table string) error {
	safeTable, err := sanitizeIdentifier(table)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("DROP TABLE %s", safeTable)); err != nil {
		return errors.Wrap(err, "[DropTable] exec")
	}
	return nil
}

func (s *Store) FullSchema(ctx context.Context) (map[string]*storage.TableInfo, error) {
	tables, err := s.ListTables(ctx)
	if err != nil {
		return nil, err
	}

	schema := make(map[string]*storage.TableInfo, len(tables))
	for _, table := range tables {
		info, err := s.DescribeTable(ctx, table)
		if err != nil {
			return nil, err
		}
		schema[table] = info
	}
	return schema, nil
}
