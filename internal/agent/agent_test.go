package agent

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hakimbh/sql-agent-mcp/internal/db"

	_ "modernc.org/sqlite"
)

// runnerFunc adapts a closure into a scripted reasoning loop for tests.
type runnerFunc func(ctx context.Context, input string, history []Turn) (string, error)

func (f runnerFunc) Run(ctx context.Context, input string, history []Turn) (string, error) {
	return f(ctx, input, history)
}

func newTestAgent(t *testing.T, runner Runner) (*Agent, *db.Conn) {
	t.Helper()

	conn := db.NewConn(db.Params{
		Driver:      "sqlite",
		DSN:         filepath.Join(t.TempDir(), "agent.db"),
		IdleTimeout: time.Minute,
	})
	monitor := db.NewMonitor(conn, time.Minute)

	a := New(conn, monitor, runner)
	t.Cleanup(a.Close)
	return a, conn
}

func TestAskReturnsRunnerOutput(t *testing.T) {
	a, _ := newTestAgent(t, runnerFunc(func(_ context.Context, input string, _ []Turn) (string, error) {
		return "answer: " + input, nil
	}))

	reply := a.Ask(context.Background(), "how many employees?")
	require.True(t, reply.Success)
	assert.Equal(t, "answer: how many employees?", reply.Response)
	assert.Empty(t, reply.Error)
}

func TestAskPassesBoundedHistoryToRunner(t *testing.T) {
	var seen []Turn
	a, _ := newTestAgent(t, runnerFunc(func(_ context.Context, input string, history []Turn) (string, error) {
		seen = history
		return "ok", nil
	}))

	a.Ask(context.Background(), "first")
	a.Ask(context.Background(), "second")

	require.Len(t, seen, 2)
	assert.Equal(t, Turn{Role: RoleUser, Text: "first"}, seen[0])
	assert.Equal(t, Turn{Role: RoleAgent, Text: "ok"}, seen[1])
}

func TestAskTruncatesHistoryToTenPairs(t *testing.T) {
	a, _ := newTestAgent(t, runnerFunc(func(_ context.Context, input string, _ []Turn) (string, error) {
		return "re: " + input, nil
	}))

	for i := 1; i <= 11; i++ {
		a.Ask(context.Background(), fmt.Sprintf("q%d", i))
	}

	history := a.History()
	require.Len(t, history, 20)

	// Oldest pair (q1) evicted, window starts at q2 and stays ordered.
	assert.Equal(t, Turn{Role: RoleUser, Text: "q2"}, history[0])
	assert.Equal(t, Turn{Role: RoleAgent, Text: "re: q2"}, history[1])
	assert.Equal(t, Turn{Role: RoleUser, Text: "q11"}, history[18])
	assert.Equal(t, Turn{Role: RoleAgent, Text: "re: q11"}, history[19])
}

func TestAskReportsQueryExecutedThisTurn(t *testing.T) {
	var a *Agent
	var conn *db.Conn
	a, conn = newTestAgent(t, runnerFunc(func(ctx context.Context, _ string, _ []Turn) (string, error) {
		conn.Execute(ctx, "SELECT 1")
		return "done", nil
	}))

	reply := a.Ask(context.Background(), "ping the database")
	require.True(t, reply.Success)
	assert.Equal(t, "SELECT 1", reply.LastQuery)
}

func TestAskFallsBackToFencedSQLBlock(t *testing.T) {
	a, _ := newTestAgent(t, runnerFunc(func(_ context.Context, _ string, _ []Turn) (string, error) {
		return "I would run:\n```sql\nSELECT name FROM employees\n```\n", nil
	}))

	reply := a.Ask(context.Background(), "what would you run?")
	require.True(t, reply.Success)
	assert.Equal(t, "SELECT name FROM employees", reply.LastQuery)
}

func TestAskWithoutQueryIsNotAnError(t *testing.T) {
	a, _ := newTestAgent(t, runnerFunc(func(_ context.Context, _ string, _ []Turn) (string, error) {
		return "hello!", nil
	}))

	reply := a.Ask(context.Background(), "hi")
	require.True(t, reply.Success)
	assert.Empty(t, reply.LastQuery)
}

func TestAskConvertsRunnerErrorToReply(t *testing.T) {
	a, _ := newTestAgent(t, runnerFunc(func(_ context.Context, _ string, _ []Turn) (string, error) {
		return "", errors.New("model unavailable")
	}))

	reply := a.Ask(context.Background(), "anything")
	assert.False(t, reply.Success)
	assert.Equal(t, "model unavailable", reply.Error)
	assert.Empty(t, a.History(), "failed turns are not recorded")
}

func TestCloseStopsMonitorAndConnection(t *testing.T) {
	conn := db.NewConn(db.Params{
		Driver:      "sqlite",
		DSN:         filepath.Join(t.TempDir(), "agent.db"),
		IdleTimeout: time.Minute,
	})
	conn.EnsureConnected()
	monitor := db.NewMonitor(conn, time.Minute)

	a := New(conn, monitor, runnerFunc(func(_ context.Context, _ string, _ []Turn) (string, error) {
		return "", nil
	}))
	a.Close()

	assert.False(t, conn.Connected())
}
