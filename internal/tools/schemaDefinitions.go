package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sqlbridge/sqltool-mcp/internal/schema"
)

type SchemaDefinitionsInput struct {
	TableNames []string `json:"table_names" jsonschema:"required" jsonschema_description:"Names of the tables to describe"`
}

type SchemaDefinitionsOutput struct {
	Definitions map[string]*schema.TableSchema `json:"definitions" jsonschema_description:"Schema definition per requested table"`
}

func GetSchemaDefinitionsTool(deps Deps) *ToolDefinition[SchemaDefinitionsInput, SchemaDefinitionsOutput] {
	return NewToolDefinition(
		deps.Prefix+"_schema_definitions",
		fmt.Sprintf("Returns schema and relation information for the given tables. Database info: %s", deps.Identity),
		func(ctx context.Context, req *mcp.CallToolRequest, input SchemaDefinitionsInput) (*mcp.CallToolResult, SchemaDefinitionsOutput, error) {
			return schemaDefinitionsHandler(ctx, input, deps)
		},
	)
}

func schemaDefinitionsHandler(ctx context.Context, input SchemaDefinitionsInput, deps Deps) (*mcp.CallToolResult, SchemaDefinitionsOutput, error) {
	db, err := deps.Provider.Acquire(ctx, true)
	if err != nil {
		return nil, SchemaDefinitionsOutput{}, err
	}
	defer db.Close()

	definitions, err := schema.NewIntrospector(db, deps.Provider.Dialect()).Describe(ctx, input.TableNames)
	if err != nil {
		return nil, SchemaDefinitionsOutput{}, err
	}

	// Render in the order the caller asked for, not map order.
	rendered := make([]string, 0, len(input.TableNames))
	for _, name := range input.TableNames {
		rendered = append(rendered, definitions[name].Render())
	}

	output := SchemaDefinitionsOutput{Definitions: definitions}
	return textResult(strings.Join(rendered, "\n")), output, nil
}
