package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sqlbridge/sqltool-mcp/internal/schema"
)

type FilterTableNamesInput struct {
	Q string `json:"q" jsonschema:"required" jsonschema_description:"Substring the table name must contain (case-sensitive)"`
}

type FilterTableNamesOutput struct {
	Tables []string `json:"tables" jsonschema_description:"Table names containing the substring, in catalog order"`
}

func GetFilterTableNamesTool(deps Deps) *ToolDefinition[FilterTableNamesInput, FilterTableNamesOutput] {
	return NewToolDefinition(
		deps.Prefix+"_filter_table_names",
		fmt.Sprintf("Return all table names in the database containing the substring 'q' separated by comma. Database info: %s", deps.Identity),
		func(ctx context.Context, req *mcp.CallToolRequest, input FilterTableNamesInput) (*mcp.CallToolResult, FilterTableNamesOutput, error) {
			return filterTableNamesHandler(ctx, input, deps)
		},
	)
}

func filterTableNamesHandler(ctx context.Context, input FilterTableNamesInput, deps Deps) (*mcp.CallToolResult, FilterTableNamesOutput, error) {
	db, err := deps.Provider.Acquire(ctx, true)
	if err != nil {
		return nil, FilterTableNamesOutput{}, err
	}
	defer db.Close()

	tables, err := schema.NewIntrospector(db, deps.Provider.Dialect()).FilterTables(ctx, input.Q)
	if err != nil {
		return nil, FilterTableNamesOutput{}, err
	}

	output := FilterTableNamesOutput{Tables: tables}
	return textResult(strings.Join(tables, ", ")), output, nil
}
