package schema

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/sqlbridge/sqltool-mcp/internal/client"
)

func newTestIntrospector(t *testing.T) *Introspector {
	t.Helper()

	p, err := client.NewProvider(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	db, err := p.Acquire(context.Background(), false)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	seedFixture(t, db)
	return NewIntrospector(db, client.DialectSQLite)
}

func seedFixture(t *testing.T, db *sqlx.DB) {
	t.Helper()
	statements := []string{
		`CREATE TABLE users (
			id INTEGER PRIMARY KEY,
			email TEXT NOT NULL,
			nickname TEXT DEFAULT 'anon'
		)`,
		`CREATE TABLE orders (
			id INTEGER PRIMARY KEY,
			user_id INTEGER NOT NULL REFERENCES users(id),
			note TEXT
		)`,
		`CREATE TABLE order_audit (
			order_id INTEGER REFERENCES orders(id)
		)`,
	}
	for _, stmt := range statements {
		_, err := db.ExecContext(context.Background(), stmt)
		require.NoError(t, err)
	}
}

func TestListTables_SortedByName(t *testing.T) {
	t.Parallel()
	in := newTestIntrospector(t)

	tables, err := in.ListTables(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"order_audit", "orders", "users"}, tables)
}

func TestFilterTables_SubsequenceOfListTables(t *testing.T) {
	t.Parallel()
	in := newTestIntrospector(t)
	ctx := context.Background()

	t.Run("substring containment", func(t *testing.T) {
		got, err := in.FilterTables(ctx, "order")
		require.NoError(t, err)
		require.Equal(t, []string{"order_audit", "orders"}, got)
	})

	t.Run("case-sensitive", func(t *testing.T) {
		got, err := in.FilterTables(ctx, "ORDER")
		require.NoError(t, err)
		require.Empty(t, got)
	})

	t.Run("empty substring matches everything", func(t *testing.T) {
		all, err := in.ListTables(ctx)
		require.NoError(t, err)
		got, err := in.FilterTables(ctx, "")
		require.NoError(t, err)
		require.Equal(t, all, got)
	})

	t.Run("no match is empty not nil error", func(t *testing.T) {
		got, err := in.FilterTables(ctx, "zzz")
		require.NoError(t, err)
		require.Empty(t, got)
	})
}

func TestDescribe_Columns(t *testing.T) {
	t.Parallel()
	in := newTestIntrospector(t)

	defs, err := in.Describe(context.Background(), []string{"users"})
	require.NoError(t, err)
	users := defs["users"]
	require.NotNil(t, users)
	require.Equal(t, "users", users.Name)
	require.Len(t, users.Columns, 3)

	byName := map[string]Column{}
	for _, c := range users.Columns {
		byName[c.Name] = c
	}

	require.True(t, byName["id"].PrimaryKey)
	require.False(t, byName["email"].PrimaryKey)
	require.False(t, byName["nickname"].PrimaryKey)

	require.False(t, byName["email"].Nullable)
	require.True(t, byName["nickname"].Nullable)

	require.NotNil(t, byName["nickname"].Default)
	require.Contains(t, *byName["nickname"].Default, "anon")

	// Lone INTEGER primary key aliases the rowid.
	require.NotNil(t, byName["id"].Autoincrement)
	require.True(t, *byName["id"].Autoincrement)
	require.Nil(t, byName["email"].Autoincrement)
}

func TestDescribe_ForeignKeys(t *testing.T) {
	t.Parallel()
	in := newTestIntrospector(t)

	defs, err := in.Describe(context.Background(), []string{"orders"})
	require.NoError(t, err)
	orders := defs["orders"]
	require.Len(t, orders.ForeignKeys, 1)

	fk := orders.ForeignKeys[0]
	require.Equal(t, []string{"user_id"}, fk.ConstrainedColumns)
	require.Equal(t, "users", fk.ReferredTable)
	require.Equal(t, []string{"id"}, fk.ReferredColumns)
}

func TestDescribe_NeverEmitsCommentField(t *testing.T) {
	t.Parallel()
	in := newTestIntrospector(t)

	defs, err := in.Describe(context.Background(), []string{"users", "orders"})
	require.NoError(t, err)

	raw, err := json.Marshal(defs)
	require.NoError(t, err)
	require.NotContains(t, string(raw), `"comment"`)
}

func TestDescribe_UnknownTableFailsWholeBatch(t *testing.T) {
	t.Parallel()
	in := newTestIntrospector(t)

	defs, err := in.Describe(context.Background(), []string{"users", "nope"})
	require.Error(t, err)
	require.Nil(t, defs)
	require.Contains(t, err.Error(), "nope")

	var notFound *NotFoundError
	require.True(t, errors.As(err, &notFound))
	require.Equal(t, "nope", notFound.Table)
}

func TestTableSchemaRender(t *testing.T) {
	t.Parallel()
	in := newTestIntrospector(t)

	defs, err := in.Describe(context.Background(), []string{"orders"})
	require.NoError(t, err)

	text := defs["orders"].Render()
	require.Contains(t, text, "orders:")
	require.Contains(t, text, "    id: primary key, INTEGER")
	require.Contains(t, text, "Relationships:")
	require.Contains(t, text, "user_id -> users.id")
}
