package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hakimbh/sql-agent-mcp/internal/config"
	"github.com/hakimbh/sql-agent-mcp/internal/db"
	"github.com/hakimbh/sql-agent-mcp/internal/logger"
	"github.com/hakimbh/sql-agent-mcp/internal/supabase"
	"github.com/hakimbh/sql-agent-mcp/internal/tools"
)

type StdioConfig struct {
	Version string
	Backend string
	// IdleTimeout overrides the environment-sourced timeout when positive.
	IdleTimeout time.Duration
}

// RunStdio assembles the selected backend and serves the tool surface over
// stdio until the context is cancelled. The MCP client on the other end of
// the transport is the reasoning loop.
func RunStdio(cfg StdioConfig) error {
	appCfg, err := config.Load(cfg.Backend)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	impl := &mcp.Implementation{Name: "sql-agent-mcp", Version: cfg.Version}
	srv := mcp.NewServer(impl, nil)

	switch cfg.Backend {
	case config.BackendSupabase:
		client := supabase.NewClient(appCfg.SupabaseURL, appCfg.SupabaseAPIKey)
		tools.RegisterSupabaseTools(srv, client)

	case config.BackendPostgres:
		idle := appCfg.IdleTimeout
		if cfg.IdleTimeout > 0 {
			idle = cfg.IdleTimeout
		}
		conn := db.NewConn(db.Params{
			Driver:      appCfg.Driver,
			DSN:         appCfg.DSN(),
			IdleTimeout: idle,
		})
		monitor := db.NewMonitor(conn, idle)
		defer monitor.Stop()
		tools.RegisterPostgresTools(srv, conn, monitor)

	default:
		return fmt.Errorf("unknown backend %q (postgres, supabase)", cfg.Backend)
	}

	logger.Info("sql agent server running", map[string]interface{}{"backend": cfg.Backend})

	return srv.Run(ctx, &mcp.StdioTransport{})
}
