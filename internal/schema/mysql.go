package schema

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

const mysqlListTablesQuery = `
	SELECT table_name
	FROM information_schema.tables
	WHERE table_schema = DATABASE() AND table_type = 'BASE TABLE'
	ORDER BY table_name`

const mysqlColumnsQuery = `
	SELECT column_name, column_type, is_nullable, column_default, extra
	FROM information_schema.columns
	WHERE table_schema = DATABASE() AND table_name = ?
	ORDER BY ordinal_position`

const mysqlPrimaryKeyQuery = `
	SELECT column_name
	FROM information_schema.key_column_usage
	WHERE table_schema = DATABASE() AND table_name = ? AND constraint_name = 'PRIMARY'
	ORDER BY ordinal_position`

const mysqlForeignKeysQuery = `
	SELECT constraint_name, column_name, referenced_table_name, referenced_column_name
	FROM information_schema.key_column_usage
	WHERE table_schema = DATABASE()
		AND table_name = ?
		AND referenced_table_name IS NOT NULL
	ORDER BY constraint_name, ordinal_position`

func (in *Introspector) describeMySQL(ctx context.Context, tableName string) (*TableSchema, error) {
	pk, err := in.stringSet(ctx, mysqlPrimaryKeyQuery, tableName)
	if err != nil {
		return nil, fmt.Errorf("primary key of %s: %w", tableName, err)
	}

	rows, err := in.db.QueryContext(ctx, mysqlColumnsQuery, tableName)
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", tableName, err)
	}
	defer rows.Close()

	var columns []Column
	for rows.Next() {
		var (
			name, columnType, isNullable, extra string
			def                                 sql.NullString
		)
		if err := rows.Scan(&name, &columnType, &isNullable, &def, &extra); err != nil {
			return nil, fmt.Errorf("scan column of %s: %w", tableName, err)
		}

		col := Column{
			Name:       name,
			Type:       columnType,
			Nullable:   isNullable == "YES",
			PrimaryKey: pk[name],
		}
		if def.Valid {
			v := def.String
			col.Default = &v
		}
		if strings.Contains(strings.ToLower(extra), "auto_increment") {
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

	fks, err := in.foreignKeysMySQL(ctx, tableName)
	if err != nil {
		return nil, err
	}

	return &TableSchema{Name: tableName, Columns: columns, ForeignKeys: fks}, nil
}

func (in *Introspector) foreignKeysMySQL(ctx context.Context, tableName string) ([]ForeignKey, error) {
	rows, err := in.db.QueryContext(ctx, mysqlForeignKeysQuery, tableName)
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
