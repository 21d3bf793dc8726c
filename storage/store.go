// Package storage defines the tabular-data collaborator the gateway
// delegates to after its authorization checks pass.
package storage

import "context"

// ColumnDef describes one column of a table being created.
type ColumnDef struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	PrimaryKey bool   `json:"primary_key,omitempty"`
	NotNull    bool   `json:"not_null,omitempty"`
	Unique     bool   `json:"unique,omitempty"`
	Default    string `json:"default,omitempty"`
}

// TableSchema is the column list for create_table. Column order is
// preserved in the generated DDL.
type TableSchema struct {
	Columns []ColumnDef `json:"columns"`
}

// ColumnInfo describes one column of an existing table.
type ColumnInfo struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	NotNull    bool   `json:"not_null"`
	Default    any    `json:"default"`
	PrimaryKey bool   `json:"primary_key"`
}

// ForeignKeyInfo describes one foreign-key reference of a table.
type ForeignKeyInfo struct {
	Table string `json:"table"`
	From  string `json:"from"`
	To    string `json:"to"`
}

// IndexInfo describes one index on a table.
type IndexInfo struct {
	Name   string `json:"name"`
	Unique bool   `json:"unique"`
}

// TableInfo is the full schema description of one table.
type TableInfo struct {
	Table       string           `json:"table"`
	Columns     []ColumnInfo     `json:"columns"`
	ForeignKeys []ForeignKeyInfo `json:"foreign_keys"`
	Indexes     []IndexInfo      `json:"indexes"`
}

// Store exposes the tabular-data operations the gateway fronts. All
// failures are storage-layer errors that the gateway surfaces as generic
// operation errors.
type Store interface {
	ListTables(ctx context.Context) ([]string, error)
	DescribeTable(ctx context.Context, table string) (*TableInfo, error)
	Read(ctx context.Context, table string, filter map[string]any, limit *int, orderBy string) ([]map[string]any, error)
	Insert(ctx context.Context, table string, row map[string]any) (int64, error)
	Update(ctx context.Context, table string, changes, filter map[string]any) (int64, error)
	Delete(ctx context.Context, table string, filter map[string]any) (int64, error)
	CreateTable(ctx context.Context, table string, schema TableSchema) error
	DropTable(ctx context.Context, table string) error
	FullSchema(ctx context.Context) (map[string]*TableInfo, error)
}
