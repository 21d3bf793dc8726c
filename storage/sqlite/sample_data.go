package sqlite

import (
	"context"

	"github.com/pkg/errors"

	"github.com/jrsteele09/go-dbgate/storage"
)

// SeedSampleData creates the demo users/posts tables with one row each.
// It is a no-op when the database already contains tables.
func (s *Store) SeedSampleData(ctx context.Context) error {
	tables, err := s.ListTables(ctx)
	if err != nil {
		return errors.Wrap(err, "[SeedSampleData] ListTables")
	}
	if len(tables) > 0 {
		return nil
	}

	if err := s.CreateTable(ctx, "users", storage.TableSchema{
		Columns: []storage.ColumnDef{
			{Name: "id", Type: "INTEGER", PrimaryKey: true},
			{Name: "name", Type: "TEXT", NotNull: true},
			{Name: "email", Type: "TEXT", Unique: true, NotNull: true},
			{Name: "created_at", Type: "DATETIME", Default: "CURRENT_TIMESTAMP"},
		},
	}); err != nil {
		return errors.Wrap(err, "[SeedSampleData] create users")
	}

	if err := s.CreateTable(ctx, "posts", storage.TableSchema{
		Columns: []storage.ColumnDef{
			{Name: "id", Type: "INTEGER", PrimaryKey: true},
			{Name: "user_id", Type: "INTEGER", NotNull: true},
			{Name: "title", Type: "TEXT", NotNull: true},
			{Name: "content", Type: "TEXT"},
			{Name: "created_at", Type: "DATETIME", Default: "CURRENT_TIMESTAMP"},
		},
	}); err != nil {
		return errors.Wrap(err, "[SeedSampleData] create posts")
	}

	userID, err := s.Insert(ctx, "users", map[string]any{
		"name":  "John Doe",
		"email": "john@example.com",
	})
	if err != nil {
		return errors.Wrap(err, "[SeedSampleData] insert user")
	}

	if _, err := s.Insert(ctx, "posts", map[string]any{
		"user_id": userID,
		"title":   "Welcome Post",
		"content": "This is a sample post",
	}); err != nil {
		return errors.Wrap(err, "[SeedSampleData] insert post")
	}

	return nil
}
