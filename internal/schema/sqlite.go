package schema

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
)

const sqliteListTablesQuery = `
	SELECT name
	FROM sqlite_master
	WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
	ORDER BY name`

func (in *Introspector) describeSQLite(ctx context.Context, tableName string) (*TableSchema, error) {
	var count int
	err := in.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, tableName)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", tableName, err)
	}
	if count == 0 {
		return nil, &NotFoundError{Table: tableName}
	}

	columns, pkColumns, err := in.sqliteColumns(ctx, tableName)
	if err != nil {
		return nil, err
	}

	// A lone INTEGER primary key aliases the rowid and autoincrements.
	if len(pkColumns) == 1 {
		for i := range columns {
			if columns[i].Name == pkColumns[0] && strings.EqualFold(columns[i].Type, "INTEGER") {
				t := true
				columns[i].Autoincrement = &t
			}
		}
	}

	fks, err := in.foreignKeysSQLite(ctx, tableName)
	if err != nil {
		return nil, err
	}

	return &TableSchema{Name: tableName, Columns: columns, ForeignKeys: fks}, nil
}

// sqliteColumns reads PRAGMA table_info. Pragmas cannot take bound
// parameters, so the already-verified table name is quoted as an
// identifier instead.
func (in *Introspector) sqliteColumns(ctx context.Context, tableName string) ([]Column, []string, error) {
	rows, err := in.db.QueryContext(ctx, "PRAGMA table_info("+quoteIdent(tableName)+")")
	if err != nil {
		return nil, nil, fmt.Errorf("columns of %s: %w", tableName, err)
	}
	defer rows.Close()

	var (
		columns []Column
		pkByOrd = map[int]string{}
	)
	for rows.Next() {
		var (
			cid, notNull, pk int
			name, colType    string
			def              sql.NullString
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &def, &pk); err != nil {
			return nil, nil, fmt.Errorf("scan column of %s: %w", tableName, err)
		}

		col := Column{
			Name:       name,
			Type:       colType,
			Nullable:   notNull == 0 && pk == 0,
			PrimaryKey: pk > 0,
		}
		if def.Valid {
			v := def.String
			col.Default = &v
		}
		columns = append(columns, col)
		if pk > 0 {
			pkByOrd[pk] = name
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("columns of %s: %w", tableName, err)
	}

	ords := make([]int, 0, len(pkByOrd))
	for ord := range pkByOrd {
		ords = append(ords, ord)
	}
	sort.Ints(ords)
	pkColumns := make([]string, 0, len(ords))
	for _, ord := range ords {
		pkColumns = append(pkColumns, pkByOrd[ord])
	}

	return columns, pkColumns, nil
}

func (in *Introspector) foreignKeysSQLite(ctx context.Context, tableName string) ([]ForeignKey, error) {
	rows, err := in.db.QueryContext(ctx, "PRAGMA foreign_key_list("+quoteIdent(tableName)+")")
	if err != nil {
		return nil, fmt.Errorf("foreign keys of %s: %w", tableName, err)
	}
	defer rows.Close()

	var (
		fks       []ForeignKey
		currentID = -1
	)
	for rows.Next() {
		var id, seq int
		var refTable, from string
		var to sql.NullString
		var onUpdate, onDelete, match string
		if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return nil, fmt.Errorf("scan foreign key of %s: %w", tableName, err)
		}

		if id != currentID {
			fks = append(fks, ForeignKey{ReferredTable: refTable})
			currentID = id
		}
		last := &fks[len(fks)-1]
		last.ConstrainedColumns = append(last.ConstrainedColumns, from)
		if to.Valid {
			last.ReferredColumns = append(last.ReferredColumns, to.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("foreign keys of %s: %w", tableName, err)
	}

	// "to" is NULL when the constraint references the implicit primary key.
	for i := range fks {
		if len(fks[i].ReferredColumns) == 0 {
			_, pk, err := in.sqliteColumns(ctx, fks[i].ReferredTable)
			if err != nil {
				return nil, err
			}
			fks[i].ReferredColumns = pk
		}
	}

	return fks, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
