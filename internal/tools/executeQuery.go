package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hakimbh/sql-agent-mcp/internal/db"
)

// QueryExecutor runs one SQL statement and reports the outcome as a value.
// Both the direct connection handle and the Supabase RPC client satisfy it.
type QueryExecutor interface {
	Execute(ctx context.Context, query string) db.Result
}

type ExecuteQueryInput struct {
	Query string `json:"query" jsonschema:"required" jsonschema_description:"SQL query to execute. Only read-only statements are allowed."`
}

type ExecuteQueryOutput struct {
	Success bool                     `json:"success" jsonschema_description:"Whether the query ran"`
	Data    []map[string]interface{} `json:"data,omitempty" jsonschema_description:"Result rows as column-to-value mappings"`
	Error   string                   `json:"error,omitempty" jsonschema_description:"Failure reason when success is false"`
}

// GetExecuteQueryTool exposes query execution to the reasoning loop. Every
// failure mode (gate rejection, connect failure, driver error) comes back as
// a successful tool call carrying {success:false, error}, so the loop can
// read it and retry with different SQL. monitor may be nil for backends with
// no held connection.
func GetExecuteQueryTool(executor QueryExecutor, monitor *db.Monitor) *ToolDefinition[ExecuteQueryInput, ExecuteQueryOutput] {
	return NewToolDefinition(
		"execute_query",
		"Executes a SQL query. Input should be a valid SQL query string.",
		func(ctx context.Context, req *mcp.CallToolRequest, input ExecuteQueryInput) (*mcp.CallToolResult, ExecuteQueryOutput, error) {
			if monitor != nil {
				monitor.UpdateActivity()
			}

			result := executor.Execute(ctx, input.Query)
			return jsonResult(ExecuteQueryOutput{
				Success: result.Success,
				Data:    result.Data,
				Error:   result.Error,
			})
		},
	)
}
