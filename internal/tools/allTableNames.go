package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sqlbridge/sqltool-mcp/internal/schema"
)

type AllTableNamesInput struct{}

type AllTableNamesOutput struct {
	Tables []string `json:"tables" jsonschema_description:"All table names visible to the connection"`
}

func GetAllTableNamesTool(deps Deps) *ToolDefinition[AllTableNamesInput, AllTableNamesOutput] {
	return NewToolDefinition(
		deps.Prefix+"_all_table_names",
		fmt.Sprintf("Return all table names in the database separated by comma. Database info: %s", deps.Identity),
		func(ctx context.Context, req *mcp.CallToolRequest, input AllTableNamesInput) (*mcp.CallToolResult, AllTableNamesOutput, error) {
			return allTableNamesHandler(ctx, input, deps)
		},
	)
}

func allTableNamesHandler(ctx context.Context, _ AllTableNamesInput, deps Deps) (*mcp.CallToolResult, AllTableNamesOutput, error) {
	db, err := deps.Provider.Acquire(ctx, true)
	if err != nil {
		return nil, AllTableNamesOutput{}, err
	}
	defer db.Close()

	tables, err := schema.NewIntrospector(db, deps.Provider.Dialect()).ListTables(ctx)
	if err != nil {
		return nil, AllTableNamesOutput{}, err
	}

	output := AllTableNamesOutput{Tables: tables}
	return textResult(strings.Join(tables, ", ")), output, nil
}
