package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hakimbh/sql-agent-mcp/internal/supabase"
)

type ListSchemasInput struct{}

type ListSchemasOutput struct {
	Schemas []string `json:"schemas" jsonschema_description:"Schema names available in the database"`
}

func GetListSchemasTool(client *supabase.Client) *ToolDefinition[ListSchemasInput, ListSchemasOutput] {
	return NewToolDefinition(
		"list_schemas",
		"List all schemas in the database.",
		func(ctx context.Context, req *mcp.CallToolRequest, input ListSchemasInput) (*mcp.CallToolResult, ListSchemasOutput, error) {
			return jsonResult(ListSchemasOutput{Schemas: client.GetSchemas(ctx)})
		},
	)
}
