package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hakimbh/sql-agent-mcp/internal/db"
	"github.com/hakimbh/sql-agent-mcp/internal/logger"
	"github.com/hakimbh/sql-agent-mcp/internal/safety"
)

// Client calls the stored procedures the assistant relies on through the
// PostgREST RPC endpoint. Each method is a straight passthrough to one
// remote procedure; schema introspection degrades to empty results on RPC
// failure rather than erroring, matching how the tools treat missing
// metadata as advisory.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) rpc(ctx context.Context, fn string, args interface{}, out interface{}) error {
	body := []byte("{}")
	if args != nil {
		var err error
		body, err = json.Marshal(args)
		if err != nil {
			return fmt.Errorf("marshal rpc args: %w", err)
		}
	}

	url := c.baseURL + "/rest/v1/rpc/" + fn
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build rpc request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("rpc %s: %w", fn, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("rpc %s: status %d: %s", fn, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode rpc %s response: %w", fn, err)
	}
	return nil
}

// GetSchemas lists schema names, falling back to the public schema when the
// RPC is unavailable.
func (c *Client) GetSchemas(ctx context.Context) []string {
	var rows []struct {
		SchemaName string `json:"schema_name"`
	}
	if err := c.rpc(ctx, "get_schemas", nil, &rows); err != nil || len(rows) == 0 {
		if err != nil {
			logger.Error("get_schemas rpc failed", err)
		}
		return []string{"public"}
	}

	schemas := make([]string, 0, len(rows))
	for _, row := range rows {
		schemas = append(schemas, row.SchemaName)
	}
	return schemas
}

// GetTablesInSchema lists table names in one schema.
func (c *Client) GetTablesInSchema(ctx context.Context, schema string) []string {
	var rows []struct {
		TableName string `json:"table_name"`
	}
	err := c.rpc(ctx, "get_tables_in_schema", map[string]string{"p_schema_name": schema}, &rows)
	if err != nil {
		logger.Error("get_tables_in_schema rpc failed", err, map[string]interface{}{"schema": schema})
		return nil
	}

	tables := make([]string, 0, len(rows))
	for _, row := range rows {
		tables = append(tables, row.TableName)
	}
	return tables
}

// GetTableSchema returns column metadata for one table in ordinal position
// order.
func (c *Client) GetTableSchema(ctx context.Context, schema, table string) []map[string]interface{} {
	var rows []map[string]interface{}
	err := c.rpc(ctx, "get_table_schema", map[string]string{
		"p_schema_name": schema,
		"p_table_name":  table,
	}, &rows)
	if err != nil {
		logger.Error("get_table_schema rpc failed", err, map[string]interface{}{"schema": schema, "table": table})
		return nil
	}
	return rows
}

// GetForeignKeys returns foreign key metadata for one table.
func (c *Client) GetForeignKeys(ctx context.Context, schema, table string) []map[string]interface{} {
	var rows []map[string]interface{}
	err := c.rpc(ctx, "get_foreign_keys", map[string]string{
		"p_schema_name": schema,
		"p_table_name":  table,
	}, &rows)
	if err != nil {
		logger.Error("get_foreign_keys rpc failed", err, map[string]interface{}{"schema": schema, "table": table})
		return nil
	}
	return rows
}

// Execute runs one SQL statement via the execute_sql procedure. The safety
// gate applies before anything goes over the wire, so a rejected statement
// never leaves the process.
func (c *Client) Execute(ctx context.Context, query string) db.Result {
	if decision := safety.Evaluate(query); !decision.Allowed {
		return db.Failure(decision.Reason)
	}

	var data []map[string]interface{}
	if err := c.rpc(ctx, "execute_sql", map[string]string{"p_query": query}, &data); err != nil {
		logger.LogDatabaseOperation("RPC", query, 0, err)
		return db.Failure(err.Error())
	}
	if data == nil {
		data = []map[string]interface{}{}
	}
	logger.LogDatabaseOperation("RPC", query, int64(len(data)), nil)
	return db.Result{Success: true, Data: data}
}
