package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sqlbridge/sqltool-mcp/internal/format"
	"github.com/sqlbridge/sqltool-mcp/internal/query"
)

type ExecuteQueryInput struct {
	Query  string         `json:"query" jsonschema:"required" jsonschema_description:"SQL statement to execute, with :name placeholders for parameters"`
	Params map[string]any `json:"params,omitempty" jsonschema_description:"Named parameter values bound into the query (default empty)"`
}

func GetExecuteQueryTool(deps Deps) *ToolDefinition[ExecuteQueryInput, query.Result] {
	return NewToolDefinition(
		deps.Prefix+"_execute_query",
		executeQueryDescription(deps),
		func(ctx context.Context, req *mcp.CallToolRequest, input ExecuteQueryInput) (*mcp.CallToolResult, query.Result, error) {
			return executeQueryHandler(ctx, input, deps)
		},
	)
}

func executeQueryDescription(deps Deps) string {
	parts := []string{
		fmt.Sprintf("Execute a SQL query and return results in a readable format. Results will be truncated after %d characters.", deps.MaxChars),
		"IMPORTANT: Always use the params parameter for query parameter substitution (e.g. 'WHERE id = :id' with params={'id': 123}) to prevent SQL injection. Direct string concatenation is a serious security risk.",
		fmt.Sprintf("Database info: %s", deps.Identity),
	}
	return strings.Join(parts, " ")
}

func executeQueryHandler(ctx context.Context, input ExecuteQueryInput, deps Deps) (*mcp.CallToolResult, query.Result, error) {
	executor := query.NewExecutor(deps.Provider, deps.MaxChars, deps.ReadOnly)
	result := executor.Execute(ctx, input.Query, input.Params)
	return textResult(renderResult(result)), result, nil
}

func renderResult(result query.Result) string {
	switch {
	case result.Err != "":
		return "error: " + result.Err
	case result.Status != "":
		return result.Status
	default:
		text := format.Table(result.Columns, result.Rows)
		if result.Truncated {
			text += "\n(results truncated)"
		}
		return text
	}
}
