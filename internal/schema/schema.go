// Package schema discovers tables, columns, and constraints through the
// database's own metadata catalog. Nothing here is cached: every request
// reads the catalog fresh.
package schema

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/sqlbridge/sqltool-mcp/internal/client"
)

// Column describes one table column. Per-column comment metadata is never
// fetched, so no comment field exists on this struct.
type Column struct {
	Name          string  `json:"name"`
	Type          string  `json:"type"`
	Nullable      bool    `json:"nullable"`
	Default       *string `json:"default,omitempty"`
	Autoincrement *bool   `json:"autoincrement,omitempty"`
	PrimaryKey    bool    `json:"primary_key"`
}

// ForeignKey maps constrained columns to the referred table's columns, in
// constraint order.
type ForeignKey struct {
	ConstrainedColumns []string `json:"constrained_columns"`
	ReferredTable      string   `json:"referred_table"`
	ReferredColumns    []string `json:"referred_columns"`
}

type TableSchema struct {
	Name        string       `json:"table_name"`
	Columns     []Column     `json:"columns"`
	ForeignKeys []ForeignKey `json:"relationships"`
}

// Render writes the table definition in the indented text form the schema
// tool returns: one line per column, then the relationships block.
func (t *TableSchema) Render() string {
	lines := []string{t.Name + ":"}

	for _, c := range t.Columns {
		var parts []string
		if c.PrimaryKey {
			parts = append(parts, "primary key")
		}
		parts = append(parts, c.Type)
		if c.Nullable {
			parts = append(parts, "nullable")
		}
		if c.Default != nil {
			parts = append(parts, "default="+*c.Default)
		}
		if c.Autoincrement != nil && *c.Autoincrement {
			parts = append(parts, "autoincrement")
		}
		lines = append(lines, "    "+c.Name+": "+strings.Join(parts, ", "))
	}

	if len(t.ForeignKeys) > 0 {
		lines = append(lines, "", "    Relationships:")
		for _, fk := range t.ForeignKeys {
			lines = append(lines, fmt.Sprintf("      %s -> %s.%s",
				strings.Join(fk.ConstrainedColumns, ", "),
				fk.ReferredTable,
				strings.Join(fk.ReferredColumns, ", ")))
		}
	}

	return strings.Join(lines, "\n")
}

// NotFoundError reports a requested table that does not exist in the
// current schema.
type NotFoundError struct {
	Table string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("table %q not found", e.Table)
}

// Introspector reads catalog metadata over a single acquired handle.
type Introspector struct {
	db      *sqlx.DB
	dialect client.Dialect
}

func NewIntrospector(db *sqlx.DB, dialect client.Dialect) *Introspector {
	return &Introspector{db: db, dialect: dialect}
}

// ListTables returns all table names visible to the connection's current
// schema, name-sorted.
func (in *Introspector) ListTables(ctx context.Context) ([]string, error) {
	var query string
	switch in.dialect {
	case client.DialectMySQL:
		query = mysqlListTablesQuery
	case client.DialectSQLite:
		query = sqliteListTablesQuery
	default:
		query = pgListTablesQuery
	}

	tables := []string{}
	if err := in.db.SelectContext(ctx, &tables, query); err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return tables, nil
}

// FilterTables returns the subsequence of ListTables whose names contain q
// as a case-sensitive substring, preserving order.
func (in *Introspector) FilterTables(ctx context.Context, q string) ([]string, error) {
	tables, err := in.ListTables(ctx)
	if err != nil {
		return nil, err
	}

	filtered := []string{}
	for _, name := range tables {
		if strings.Contains(name, q) {
			filtered = append(filtered, name)
		}
	}
	return filtered, nil
}

// Describe fetches columns, primary-key membership, and foreign keys for
// each named table. The batch is all-or-nothing: an unknown table fails the
// whole call with a NotFoundError naming it, and no partial map is returned.
func (in *Introspector) Describe(ctx context.Context, tableNames []string) (map[string]*TableSchema, error) {
	out := make(map[string]*TableSchema, len(tableNames))
	for _, name := range tableNames {
		var (
			ts  *TableSchema
			err error
		)
		switch in.dialect {
		case client.DialectMySQL:
			ts, err = in.describeMySQL(ctx, name)
		case client.DialectSQLite:
			ts, err = in.describeSQLite(ctx, name)
		default:
			ts, err = in.describePostgres(ctx, name)
		}
		if err != nil {
			return nil, err
		}
		out[name] = ts
	}
	return out, nil
}
