package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hakimbh/sql-agent-mcp/internal/supabase"
)

type ForeignKeysInput struct {
	Table string `json:"table" jsonschema:"required" jsonschema_description:"Qualified table name as 'schema.table'; bare names default to the public schema"`
}

type ForeignKeysOutput struct {
	ForeignKeys []map[string]interface{} `json:"foreign_keys" jsonschema_description:"Foreign key relationships for the table"`
}

func GetForeignKeysTool(client *supabase.Client) *ToolDefinition[ForeignKeysInput, ForeignKeysOutput] {
	return NewToolDefinition(
		"get_foreign_keys",
		"Get foreign key relationships for a table given as 'schema.table'.",
		func(ctx context.Context, req *mcp.CallToolRequest, input ForeignKeysInput) (*mcp.CallToolResult, ForeignKeysOutput, error) {
			schema, table := splitQualified(input.Table)
			return jsonResult(ForeignKeysOutput{
				ForeignKeys: client.GetForeignKeys(ctx, schema, table),
			})
		},
	)
}
