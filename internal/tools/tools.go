package tools

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hakimbh/sql-agent-mcp/internal/db"
	"github.com/hakimbh/sql-agent-mcp/internal/supabase"
)

// RegisterPostgresTools exposes the direct-connection tool surface: a single
// execute_query tool backed by the guarded connection handle.
func RegisterPostgresTools(s *mcp.Server, conn *db.Conn, monitor *db.Monitor) {
	GetExecuteQueryTool(conn, monitor).Register(s)
}

// RegisterSupabaseTools exposes the RPC-backed tool surface: four read-only
// schema introspection tools plus execute_query.
func RegisterSupabaseTools(s *mcp.Server, client *supabase.Client) {
	GetListSchemasTool(client).Register(s)
	GetListTablesTool(client).Register(s)
	GetTableSchemaTool(client).Register(s)
	GetForeignKeysTool(client).Register(s)
	GetExecuteQueryTool(client, nil).Register(s)
}
