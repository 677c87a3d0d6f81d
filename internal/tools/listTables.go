package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hakimbh/sql-agent-mcp/internal/supabase"
)

type ListTablesInput struct {
	Schema string `json:"schema,omitempty" jsonschema_description:"Schema to list tables from (defaults to 'public')"`
}

type ListTablesOutput struct {
	Schema string   `json:"schema" jsonschema_description:"Schema that was listed"`
	Tables []string `json:"tables" jsonschema_description:"Table names in the schema"`
}

func GetListTablesTool(client *supabase.Client) *ToolDefinition[ListTablesInput, ListTablesOutput] {
	return NewToolDefinition(
		"list_tables",
		"List all tables in a schema.",
		func(ctx context.Context, req *mcp.CallToolRequest, input ListTablesInput) (*mcp.CallToolResult, ListTablesOutput, error) {
			schema := input.Schema
			if schema == "" {
				schema = "public"
			}
			return jsonResult(ListTablesOutput{
				Schema: schema,
				Tables: client.GetTablesInSchema(ctx, schema),
			})
		},
	)
}
