package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTablesInSchema(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/v1/rpc/get_tables_in_schema", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var args map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&args))
		assert.Equal(t, "public", args["p_schema_name"])

		w.Write([]byte(`[{"table_name":"employees"},{"table_name":"countries"}]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	tables := client.GetTablesInSchema(context.Background(), "public")
	assert.Equal(t, []string{"employees", "countries"}, tables)
}

func TestGetSchemasFallsBackToPublic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "function get_schemas does not exist", http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	assert.Equal(t, []string{"public"}, client.GetSchemas(context.Background()))
}

func TestGetTableSchemaPassthrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/rpc/get_table_schema", r.URL.Path)

		var args map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&args))
		assert.Equal(t, "hr", args["p_schema_name"])
		assert.Equal(t, "employees", args["p_table_name"])

		w.Write([]byte(`[{"column_name":"id","data_type":"integer","is_nullable":"NO"}]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	columns := client.GetTableSchema(context.Background(), "hr", "employees")
	require.Len(t, columns, 1)
	assert.Equal(t, "id", columns[0]["column_name"])
}

func TestExecuteSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/rpc/execute_sql", r.URL.Path)
		w.Write([]byte(`[{"count":42}]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	result := client.Execute(context.Background(), "SELECT count(*) FROM employees")
	require.True(t, result.Success, result.Error)
	require.Len(t, result.Data, 1)
	assert.Equal(t, float64(42), result.Data[0]["count"])
}

func TestExecuteGateBlocksBeforeNetwork(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	result := client.Execute(context.Background(), "DROP TABLE employees")

	require.False(t, result.Success)
	assert.Contains(t, result.Error, "DROP operations are not allowed")
	assert.Zero(t, calls.Load(), "rejected statements must never reach the wire")
}

func TestExecuteRPCFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "syntax error at or near", http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	result := client.Execute(context.Background(), "SELECT broken")
	require.False(t, result.Success)
	assert.Contains(t, result.Error, "syntax error")
}
