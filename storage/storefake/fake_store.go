package storefake

import (
	"context"
	"sort"
	"sync"

	apperrors "github.com/jrsteele09/go-dbgate/internal/errors"
	"github.com/jrsteele09/go-dbgate/storage"
)

var _ storage.Store = (*FakeStore)(nil)

// FakeStore is an in-memory storage.Store for tests. Filters are exact
// equality matches, mirroring the SQL implementation's WHERE building.
type FakeStore struct {
	mu      sync.Mutex
	schemas map[string]storage.TableSchema
	rows    map[string][]map[string]any
	nextID  int64

	// FailWith, when set, is returned by every operation.
	FailWith error
}

func NewFakeStore() *FakeStore {
	return &FakeStore{
		schemas: make(map[string]storage.TableSchema),
		rows:    make(map[string][]map[string]any),
	}
}

func (f *FakeStore) ListTables(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return nil, f.FailWith
	}

	tables := make([]string, 0, len(f.schemas))
	for table := range f.schemas {
		tables = append(tables, table)
	}
	sort.Strings(tables)
	return tables, nil
}

func (f *FakeStore) DescribeTable(_ context.Context, table string) (*storage.TableInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return nil, f.FailWith
	}

	schema, ok := f.schemas[table]
	if !ok {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "table %q", table)
	}
	info := &storage.TableInfo{Table: table, ForeignKeys: []storage.ForeignKeyInfo{}, Indexes: []storage.IndexInfo{}}
	for _, col := range schema.Columns {
		info.Columns = append(info.Columns, storage.ColumnInfo{
			Name:       col.Name,
			Type:       col.Type,
			NotNull:    col.NotNull,
			PrimaryKey: col.PrimaryKey,
		})
	}
	return info, nil
}

func (f *FakeStore) Read(_ context.Context, table string, filter map[string]any, limit *int, orderBy string) ([]map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return nil, f.FailWith
	}

	if _, ok := f.schemas[table]; !ok {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "table %q", table)
	}

	results := make([]map[string]any, 0)
	for _, row := range f.rows[table] {
		if matches(row, filter) {
			copied := make(map[string]any, len(row))
			for k, v := range row {
				copied[k] = v
			}
			results = append(results, copied)
		}
	}
	if orderBy != "" {
		sort.SliceStable(results, func(i, j int) bool {
			return lessValues(results[i][orderBy], results[j][orderBy])
		})
	}
	if limit != nil && len(results) > *limit {
		results = results[:*limit]
	}
	return results, nil
}

func (f *FakeStore) Insert(_ context.Context, table string, row map[string]any) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return 0, f.FailWith
	}

	if _, ok := f.schemas[table]; !ok {
		return 0, apperrors.Wrapf(apperrors.ErrNotFound, "table %q", table)
	}
	f.nextID++
	copied := make(map[string]any, len(row)+1)
	for k, v := range row {
		copied[k] = v
	}
	if _, ok := copied["id"]; !ok {
		copied["id"] = f.nextID
	}
	f.rows[table] = append(f.rows[table], copied)
	return f.nextID, nil
}

func (f *FakeStore) Update(_ context.Context, table string, changes, filter map[string]any) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return 0, f.FailWith
	}

	if _, ok := f.schemas[table]; !ok {
		return 0, apperrors.Wrapf(apperrors.ErrNotFound, "table %q", table)
	}
	var count int64
	for _, row := range f.rows[table] {
		if matches(row, filter) {
			for k, v := range changes {
				row[k] = v
			}
			count++
		}
	}
	return count, nil
}

func (f *FakeStore) Delete(_ context.Context, table string, filter map[string]any) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return 0, f.FailWith
	}

	if _, ok := f.schemas[table]; !ok {
		return 0, apperrors.Wrapf(apperrors.ErrNotFound, "table %q", table)
	}
	if len(filter) == 0 {
		return 0, apperrors.Wrapf(apperrors.ErrFilterRequired, "delete from %q", table)
	}
	kept := make([]map[string]any, 0, len(f.rows[table]))
	var count int64
	for _, row := range f.rows[table] {
		if matches(row, filter) {
			count++
			continue
		}
		kept = append(kept, row)
	}
	f.rows[table] = kept
	return count, nil
}

func (f *FakeStore) CreateTable(_ context.Context, table string, schema storage.TableSchema) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return f.FailWith
	}

	if _, ok := f.schemas[table]; ok {
		return apperrors.Wrapf(apperrors.ErrInternal, "table %q already exists", table)
	}
	f.schemas[table] = schema
	return nil
}

func (f *FakeStore) DropTable(_ context.Context, table string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return f.FailWith
	}

	if _, ok := f.schemas[table]; !ok {
		return apperrors.Wrapf(apperrors.ErrNotFound, "table %q", table)
	}
	delete(f.schemas, table)
	delete(f.rows, table)
	return nil
}

func (f *FakeStore) FullSchema(ctx context.Context) (map[string]*storage.TableInfo, error) {
	tables, err := f.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	schema := make(map[string]*storage.TableInfo, len(tables))
	for _, table := range tables {
		info, err := f.DescribeTable(ctx, table)
		if err != nil {
			return nil, err
		}
		schema[table] = info
	}
	return schema, nil
}

func matches(row, filter map[string]any) bool {
	for k, v := range filter {
		if row[k] != v {
			return false
		}
	}
	return true
}

func lessValues(a, b any) bool {
	ai, aok := a.(int64)
	bi, bok := b.(int64)
	if aok && bok {
		return ai < bi
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return as < bs
	}
	return false
}
