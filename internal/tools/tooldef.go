package tools

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sqlbridge/sqltool-mcp/internal/logger"
)

// ToolDefinition pairs a tool's metadata with its typed handler.
type ToolDefinition[TInput, TOutput any] struct {
	Tool    *mcp.Tool
	Handler func(ctx context.Context, req *mcp.CallToolRequest, input TInput) (*mcp.CallToolResult, TOutput, error)
}

func NewToolDefinition[TInput, TOutput any](
	name, description string,
	handler func(ctx context.Context, req *mcp.CallToolRequest, input TInput) (*mcp.CallToolResult, TOutput, error),
) *ToolDefinition[TInput, TOutput] {
	return &ToolDefinition[TInput, TOutput]{
		Tool: &mcp.Tool{
			Name:        name,
			Description: description,
		},
		Handler: handler,
	}
}

// Register adds this tool to the MCP server, logging every invocation with
// a fresh request ID and its duration.
func (td *ToolDefinition[TInput, TOutput]) Register(s *mcp.Server) {
	name := td.Tool.Name
	handler := td.Handler

	wrapped := func(ctx context.Context, req *mcp.CallToolRequest, input TInput) (*mcp.CallToolResult, TOutput, error) {
		callID := uuid.NewString()
		start := time.Now()
		result, output, err := handler(ctx, req, input)
		logger.LogToolCall(name, callID, time.Since(start), err)
		return result, output, err
	}

	mcp.AddTool(s, td.Tool, wrapped)
}
