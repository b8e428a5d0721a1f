package schema

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

const pgListTablesQuery = `
	SELECT table_name
	FROM information_schema.tables
	WHERE table_schema = current_schema() AND table_type = 'BASE TABLE'
	ORDER BY table_name`

const pgColumnsQuery = `
	SELECT column_name, data_type, is_nullable, column_default, is_identity
	FROM information_schema.columns
	WHERE table_schema = current_schema() AND table_name = $1
	ORDER BY ordinal_position`

const pgPrimaryKeyQuery = `
	SELECT kcu.column_name
	FROM information_schema.table_constraints tc
	JOIN information_schema.key_column_usage kcu
		ON tc.constraint_name = kcu.constraint_name
		AND tc.table_schema = kcu.table_schema
	WHERE tc.constraint_type = 'PRIMARY KEY'
		AND tc.table_schema = current_schema()
		AND tc.table_name = $1
	ORDER BY kcu.ordinal_position`

const pgForeignKeysQuery = `
	SELECT tc.constraint_name, kcu.column_name, ccu.table_name, ccu.column_name
	FROM information_schema.table_constraints tc
	JOIN information_schema.key_column_usage kcu
		ON tc.constraint_name = kcu.constraint_name
		AND tc.table_schema = kcu.table_schema
	JOIN information_schema.constraint_column_usage ccu
		ON tc.constraint_name = ccu.constraint_name
		AND tc.table_schema = ccu.table_schema
	WHERE tc.constraint_type = 'FOREIGN KEY'
		AND tc.table_schema = current_schema()
		AND tc.table_name = $1
	ORDER BY tc.constraint_name, kcu.ordinal_position`

func (in *Introspector) describePostgres(ctx context.Context, tableName string) (*TableSchema, error) {
	pk, err := in.stringSet(ctx, pgPrimaryKeyQuery, tableName)
	if err != nil {
		return nil, fmt.Errorf("primary key of %s: %w", tableName, err)
	}

	rows, err := in.db.QueryContext(ctx, pgColumnsQuery, tableName)
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", tableName, err)
	}
	defer rows.Close()

	var columns []Column
	for rows.Next() {
		var (
			name, dataType, isNullable, isIdentity string
			def                                    sql.NullString
		)
		if err := rows.Scan(&name, &dataType, &isNullable, &def, &isIdentity); err != nil {
			return nil, fmt.Errorf("scan column of %s: %w", tableName, err)
		}

		col := Column{
			Name:       name,
			Type:       dataType,
			Nullable:   isNullable == "YES",
			PrimaryKey: pk[name],
		}
		if def.Valid {
			v := def.String
			col.Default = &v
		}
		if isIdentity == "YES" || (def.Valid && strings.HasPrefix(def.String, "nextval(")) {
			t := true
			col.Autoincrement = &t
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("columns of %s: %w", tableName, err)
	}
	if len(columns) == 0 {
		return nil, &NotFoundError{Table: tableName}
	}

	fks, err := in.foreignKeysPostgres(ctx, tableName)
	if err != nil {
		return nil, err
	}

	return &TableSchema{Name: tableName, Columns: columns, ForeignKeys: fks}, nil
}

func (in *Introspector) foreignKeysPostgres(ctx context.Context, tableName string) ([]ForeignKey, error) {
	rows, err := in.db.QueryContext(ctx, pgForeignKeysQuery, tableName)
	if err != nil {
		return nil, fmt.Errorf("foreign keys of %s: %w", tableName, err)
	}
	defer rows.Close()

	var (
		fks     []ForeignKey
		current string
	)
	for rows.Next() {
		var constraint, column, refTable, refColumn string
		if err := rows.Scan(&constraint, &column, &refTable, &refColumn); err != nil {
			return nil, fmt.Errorf("scan foreign key of %s: %w", tableName, err)
		}

		if constraint != current || len(fks) == 0 {
			fks = append(fks, ForeignKey{ReferredTable: refTable})
			current = constraint
		}
		last := &fks[len(fks)-1]
		last.ConstrainedColumns = append(last.ConstrainedColumns, column)
		last.ReferredColumns = append(last.ReferredColumns, refColumn)
	}
	return fks, rows.Err()
}

func (in *Introspector) stringSet(ctx context.Context, query, arg string) (map[string]bool, error) {
	var names []string
	if err := in.db.SelectContext(ctx, &names, query, arg); err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set, nil
}
