package tools

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sqlbridge/sqltool-mcp/internal/client"
)

// Deps carries everything a tool set needs for one database target. The
// identity is computed once at startup and shared read-only; every handler
// acquires and releases its own connection.
type Deps struct {
	Provider *client.Provider
	Identity client.Identity
	Prefix   string
	MaxChars int
	ReadOnly bool
}

// Register adds the four prefixed tools for one database target.
func Register(s *mcp.Server, deps Deps) {
	GetAllTableNamesTool(deps).Register(s)
	GetFilterTableNamesTool(deps).Register(s)
	GetSchemaDefinitionsTool(deps).Register(s)
	GetExecuteQueryTool(deps).Register(s)
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}
