package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sqlbridge/sqltool-mcp/internal/config"
	"github.com/sqlbridge/sqltool-mcp/internal/logger"
	"github.com/sqlbridge/sqltool-mcp/internal/server"
)

const version = "v0.1.0"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sqltool-mcp",
	Short: "MCP server exposing SQL schema and query tools",
	Long:  `A Model Context Protocol (MCP) server that lets AI clients inspect a relational database's schema and run parameterized SQL queries against it.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("db-url", "d", "", "database connection URL (defaults to $DB_URL)")
	rootCmd.PersistentFlags().StringP("prefix", "p", "", "tool name prefix (defaults to $PREFIX, then \"sql_tool\")")
	rootCmd.PersistentFlags().String("databases", "", "path to a databases.json with multiple named targets")
	rootCmd.PersistentFlags().Int("max-chars", 0, "truncation budget for query output (defaults to $EXECUTE_QUERY_MAX_CHARS, then 4000)")
	rootCmd.PersistentFlags().BoolP("read-only", "r", false, "refuse non-SELECT statements in execute_query")
	rootCmd.PersistentFlags().String("log-file", "", "log file path (rotated by size)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	// Subcommand: stdio (local transport, like IDE integration)
	stdioCmd := &cobra.Command{
		Use:   "stdio",
		Short: "Run over stdio transport (for local MCP clients)",
		RunE:  runStdioServer,
	}
	rootCmd.AddCommand(stdioCmd)
}

func runStdioServer(cmd *cobra.Command, args []string) error {
	dbURL, _ := cmd.Flags().GetString("db-url")
	prefix, _ := cmd.Flags().GetString("prefix")
	databasesPath, _ := cmd.Flags().GetString("databases")
	maxChars, _ := cmd.Flags().GetInt("max-chars")
	readOnly, _ := cmd.Flags().GetBool("read-only")
	logFile, _ := cmd.Flags().GetString("log-file")
	logLevel, _ := cmd.Flags().GetString("log-level")

	cfg, err := config.Load(config.Options{
		DBURL:         dbURL,
		Prefix:        prefix,
		DatabasesPath: databasesPath,
		MaxChars:      maxChars,
		ReadOnly:      readOnly,
		LogFile:       logFile,
		LogLevel:      logLevel,
	})
	if err != nil {
		return err
	}

	if err := logger.Initialize(logger.FromLoggingConfig(cfg.Logging)); err != nil {
		return err
	}
	defer logger.Shutdown()

	logger.Info("starting server", "version", version, "read_only", cfg.ReadOnly)

	return server.RunStdio(cfg, version)
}
