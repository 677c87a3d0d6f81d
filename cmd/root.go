package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hakimbh/sql-agent-mcp/internal/config"
	"github.com/hakimbh/sql-agent-mcp/internal/db"
	"github.com/hakimbh/sql-agent-mcp/internal/logger"
	"github.com/hakimbh/sql-agent-mcp/internal/server"
)

const version = "v0.1.0"

var rootCmd = &cobra.Command{
	Use:   "sql-agent-mcp",
	Short: "Natural-language SQL assistant core over MCP",
	Long: `Exposes guarded read-only database tools to a tool-calling AI client.
A background monitor closes the database connection after a period of
inactivity; it is reopened transparently on the next query.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		logFile, _ := cmd.Flags().GetString("log-file")
		return logger.Initialize(logger.Config{
			Level:      logger.ParseLogLevel(level),
			OutputFile: logFile,
			MaxSize:    10,
			Console:    logFile == "",
		})
	},
}

func Execute() {
	err := rootCmd.Execute()
	logger.Shutdown()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("backend", "b", config.BackendPostgres, "Database backend (postgres or supabase)")
	rootCmd.PersistentFlags().Int("idle-timeout", 0, "Idle seconds before the connection is closed (overrides POSTGRES_CONNECTION_TIMEOUT)")
	rootCmd.PersistentFlags().String("log-level", "INFO", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().String("log-file", "", "Log to this file instead of stderr")

	stdioCmd := &cobra.Command{
		Use:   "stdio",
		Short: "Serve the tool surface over stdio for a local MCP client",
		RunE:  runStdio,
	}
	rootCmd.AddCommand(stdioCmd)

	queryCmd := &cobra.Command{
		Use:   "query <sql>",
		Short: "Run one statement through the safety gate and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runQuery,
	}
	rootCmd.AddCommand(queryCmd)
}

func runStdio(cmd *cobra.Command, args []string) error {
	backend, _ := cmd.Flags().GetString("backend")
	idleSeconds, _ := cmd.Flags().GetInt("idle-timeout")

	return server.RunStdio(server.StdioConfig{
		Version:     version,
		Backend:     backend,
		IdleTimeout: time.Duration(idleSeconds) * time.Second,
	})
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(config.BackendPostgres)
	if err != nil {
		return err
	}

	conn := db.NewConn(db.Params{
		Driver:      cfg.Driver,
		DSN:         cfg.DSN(),
		IdleTimeout: cfg.IdleTimeout,
	})
	defer conn.Close(true)

	result := conn.Execute(context.Background(), args[0])

	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(payload))

	if !result.Success {
		os.Exit(1)
	}
	return nil
}
