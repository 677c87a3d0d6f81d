package agent

import (
	"context"

	"github.com/google/uuid"

	"github.com/hakimbh/sql-agent-mcp/internal/db"
	"github.com/hakimbh/sql-agent-mcp/internal/logger"
)

// Runner is the external tool-calling reasoning loop. Given a user
// utterance and the bounded transcript, it decides which tools to invoke
// (zero or more times) and returns the final narrated answer. Treated as a
// black box; its internals are never inspected.
type Runner interface {
	Run(ctx context.Context, input string, history []Turn) (string, error)
}

// Reply is the agent-to-caller response contract.
type Reply struct {
	Success   bool   `json:"success"`
	Response  string `json:"response,omitempty"`
	LastQuery string `json:"last_query,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Agent ties one conversation session to one database connection and its
// idle monitor. It is constructed explicitly and torn down with Close; there
// is no implicit shared instance.
type Agent struct {
	SessionID string

	conn    *db.Conn
	monitor *db.Monitor
	runner  Runner
	history transcript
}

func New(conn *db.Conn, monitor *db.Monitor, runner Runner) *Agent {
	return &Agent{
		SessionID: uuid.New().String(),
		conn:      conn,
		monitor:   monitor,
		runner:    runner,
	}
}

// Ask runs one user turn through the reasoning loop. The monitor's idle
// clock is reset first so the connection survives the turn. The SQL reported
// in the reply is whatever the connection handle recorded during this turn,
// falling back to a fenced sql block in the answer text; finding none is not
// an error. Runner failures come back as a failed Reply, never as a panic or
// error value.
func (a *Agent) Ask(ctx context.Context, question string) Reply {
	a.monitor.UpdateActivity()

	execsBefore := a.conn.ExecCount()

	answer, err := a.runner.Run(ctx, question, a.history.snapshot())
	if err != nil {
		logger.Error("agent run failed", err, map[string]interface{}{"session": a.SessionID})
		return Reply{Error: err.Error()}
	}

	lastQuery := ""
	if a.conn.ExecCount() != execsBefore {
		lastQuery = a.conn.LastQuery()
	} else {
		lastQuery = extractSQLBlock(answer)
	}

	a.history.append(question, answer)

	return Reply{Success: true, Response: answer, LastQuery: lastQuery}
}

// History returns a copy of the current transcript.
func (a *Agent) History() []Turn {
	return a.history.snapshot()
}

// Close stops the idle monitor and force-closes the connection. Teardown is
// deterministic; no goroutine or socket outlives the agent.
func (a *Agent) Close() {
	a.monitor.Stop()
	a.conn.Close(true)
}
