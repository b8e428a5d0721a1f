// Package query executes SQL statements with named-parameter binding and
// normalizes every driver failure into the result's error variant.
package query

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/sqlbridge/sqltool-mcp/internal/client"
	"github.com/sqlbridge/sqltool-mcp/internal/format"
	"github.com/sqlbridge/sqltool-mcp/internal/logger"
)

// Result is the uniform response shape for execute_query. Exactly one of
// the three variants is populated: Columns+Rows for reads, Status for
// writes, Err for failures.
type Result struct {
	Columns   []string   `json:"columns,omitempty" jsonschema_description:"Column names for a SELECT result"`
	Rows      [][]string `json:"rows" jsonschema_description:"Formatted row values for a SELECT result"`
	Status    string     `json:"status,omitempty" jsonschema_description:"Set to 'ok' after a successful write"`
	Err       string     `json:"error,omitempty" jsonschema_description:"Error message when the statement failed"`
	Truncated bool       `json:"truncated,omitempty" jsonschema_description:"True when rows were cut at the character budget"`
}

// MarshalJSON keeps exactly one variant on the wire: reads always carry a
// rows key, even for an empty result set, while writes serialize as only
// their status and failures as only their error.
func (r Result) MarshalJSON() ([]byte, error) {
	switch {
	case r.Err != "":
		return json.Marshal(struct {
			Err string `json:"error"`
		}{r.Err})
	case r.Status != "":
		return json.Marshal(struct {
			Status string `json:"status"`
		}{r.Status})
	default:
		rows := r.Rows
		if rows == nil {
			rows = [][]string{}
		}
		return json.Marshal(struct {
			Columns   []string   `json:"columns"`
			Rows      [][]string `json:"rows"`
			Truncated bool       `json:"truncated,omitempty"`
		}{r.Columns, rows, r.Truncated})
	}
}

// IsRead reports whether the statement's first token is SELECT. This is a
// textual heuristic, not parsing: a CTE ("WITH ... SELECT") classifies as
// a write and returns a bare acknowledgment.
func IsRead(query string) bool {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return false
	}
	return strings.ToUpper(fields[0]) == "SELECT"
}

type Executor struct {
	provider *client.Provider
	maxChars int
	readOnly bool
}

func NewExecutor(provider *client.Provider, maxChars int, readOnly bool) *Executor {
	return &Executor{provider: provider, maxChars: maxChars, readOnly: readOnly}
}

// Execute runs one statement over a fresh connection. Named parameters are
// bound through the driver's placeholder mechanism; parameter values never
// touch the statement text. Read results are cut at the character budget
// without exceeding it, with the cut flagged on the Result. All errors come
// back inside the Result.
func (e *Executor) Execute(ctx context.Context, query string, params map[string]any) Result {
	isRead := IsRead(query)

	if e.readOnly && !isRead {
		return Result{Err: "read-only mode: only SELECT statements are allowed"}
	}

	db, err := e.provider.Acquire(ctx, e.readOnly)
	if err != nil {
		return Result{Err: err.Error()}
	}
	defer db.Close()

	stmt := query
	var args []any
	if len(params) > 0 {
		bound, boundArgs, err := sqlx.Named(query, params)
		if err != nil {
			return Result{Err: err.Error()}
		}
		stmt = db.Rebind(bound)
		args = boundArgs
	}

	if !isRead {
		res, err := db.ExecContext(ctx, stmt, args...)
		if err != nil {
			logger.LogDatabaseOperation("EXEC", query, 0, err)
			return Result{Err: err.Error()}
		}
		affected, _ := res.RowsAffected()
		logger.LogDatabaseOperation("EXEC", query, affected, nil)
		return Result{Status: "ok"}
	}

	rows, err := db.QueryContext(ctx, stmt, args...)
	if err != nil {
		logger.LogDatabaseOperation("SELECT", query, 0, err)
		return Result{Err: err.Error()}
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return Result{Err: err.Error()}
	}

	out := Result{Columns: columns, Rows: [][]string{}}
	budget := e.maxChars
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return Result{Err: err.Error()}
		}

		row := make([]string, len(columns))
		rowChars := 0
		for i, v := range values {
			row[i] = format.Value(v)
			rowChars += len(row[i])
		}

		// The row that would cross the budget is dropped, so the collected
		// cell text never exceeds maxChars.
		if rowChars > budget {
			out.Truncated = true
			break
		}
		budget -= rowChars
		out.Rows = append(out.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return Result{Err: err.Error()}
	}

	logger.LogDatabaseOperation("SELECT", query, int64(len(out.Rows)), nil)
	return out
}
