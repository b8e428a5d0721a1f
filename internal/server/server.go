package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sqlbridge/sqltool-mcp/internal/client"
	"github.com/sqlbridge/sqltool-mcp/internal/config"
	"github.com/sqlbridge/sqltool-mcp/internal/logger"
	"github.com/sqlbridge/sqltool-mcp/internal/tools"
)

// New builds the MCP server and registers the tool set for every configured
// database. Identity computation happens here, once, before registration:
// a target that cannot be reached fails startup since every descriptor
// depends on its identity.
func New(ctx context.Context, cfg *config.Config, version string) (*mcp.Server, error) {
	impl := &mcp.Implementation{Name: "sqltool-mcp", Version: version}
	s := mcp.NewServer(impl, nil)

	for _, db := range cfg.Databases {
		provider, err := client.NewProvider(db.URL)
		if err != nil {
			return nil, fmt.Errorf("database %q: %w", db.Name, err)
		}

		identity, err := provider.FetchIdentity(ctx)
		if err != nil {
			return nil, fmt.Errorf("database %q identity: %w", db.Name, err)
		}

		logger.Info("registering tools",
			"database", db.Name,
			"prefix", db.Prefix,
			"dialect", identity.Dialect,
		)

		tools.Register(s, tools.Deps{
			Provider: provider,
			Identity: identity,
			Prefix:   db.Prefix,
			MaxChars: cfg.MaxChars,
			ReadOnly: cfg.ReadOnly,
		})
	}

	return s, nil
}

// RunStdio serves the tool set over the stdio transport until the context
// is cancelled by SIGINT or SIGTERM.
func RunStdio(cfg *config.Config, version string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := New(ctx, cfg, version)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	return s.Run(ctx, &mcp.StdioTransport{})
}
