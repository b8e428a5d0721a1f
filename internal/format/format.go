// Package format renders raw column values and result sets as stable text.
package format

import (
	"fmt"
	"strings"
	"time"
)

// Value renders a single result cell. SQL NULL becomes the literal token
// "NULL", temporal values are rendered ISO-8601, byte slices are treated
// as text, and everything else keeps its default string form.
func Value(v any) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case time.Time:
		return t.Format(time.RFC3339)
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}

// Table renders a result set as a pipe-separated table: a header row, a
// dash rule sized to the header, then one line per row. An empty result
// set renders as an explicit message rather than a bare header.
func Table(columns []string, rows [][]string) string {
	if len(rows) == 0 {
		return "no results"
	}

	header := strings.Join(columns, " | ")
	lines := make([]string, 0, len(rows)+2)
	lines = append(lines, header, strings.Repeat("-", len(header)))
	for _, row := range rows {
		lines = append(lines, strings.Join(row, " | "))
	}
	return strings.Join(lines, "\n")
}
