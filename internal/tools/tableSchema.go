package tools

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hakimbh/sql-agent-mcp/internal/supabase"
)

type TableSchemaInput struct {
	Table string `json:"table" jsonschema:"required" jsonschema_description:"Qualified table name as 'schema.table'; bare names default to the public schema"`
}

type TableSchemaOutput struct {
	Columns []map[string]interface{} `json:"columns" jsonschema_description:"Column metadata in ordinal position order"`
}

func GetTableSchemaTool(client *supabase.Client) *ToolDefinition[TableSchemaInput, TableSchemaOutput] {
	return NewToolDefinition(
		"get_table_schema",
		"Get column metadata for a table given as 'schema.table'.",
		func(ctx context.Context, req *mcp.CallToolRequest, input TableSchemaInput) (*mcp.CallToolResult, TableSchemaOutput, error) {
			schema, table := splitQualified(input.Table)
			return jsonResult(TableSchemaOutput{
				Columns: client.GetTableSchema(ctx, schema, table),
			})
		},
	)
}

// splitQualified splits a dotted "schema.table" name on the first dot. A
// bare table name maps to the public schema.
func splitQualified(name string) (schema, table string) {
	parts := strings.SplitN(name, ".", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return "public", name
}
