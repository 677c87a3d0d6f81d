package db

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/hakimbh/sql-agent-mcp/internal/logger"
	"github.com/hakimbh/sql-agent-mcp/internal/safety"
)

// Params holds everything needed to open or reopen the database connection.
// Immutable after construction.
type Params struct {
	Driver      string
	DSN         string
	IdleTimeout time.Duration
}

// Conn owns a single physical database connection for the lifetime of one
// agent session. The connection is opened lazily, probed before reuse, and
// may be torn down and reopened many times. All state lives behind one
// mutex, so a forced close from the idle monitor serializes with an
// in-flight Execute instead of racing it.
type Conn struct {
	params Params

	mu        sync.Mutex
	db        *sql.DB
	lastUsed  time.Time
	lastQuery string
	execCount uint64
	opens     int
}

func NewConn(params Params) *Conn {
	return &Conn{params: params}
}

// EnsureConnected opens the connection if absent, or probes the existing one
// and reopens on a failed probe. It never returns an error: an unrecoverable
// failure leaves the handle disconnected, which the next Execute reports as
// a connect failure. Updates the last-used timestamp on entry regardless of
// outcome.
func (c *Conn) EnsureConnected() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureConnectedLocked()
}

func (c *Conn) ensureConnectedLocked() {
	c.lastUsed = time.Now()

	if c.db == nil {
		c.openLocked()
		return
	}

	if _, err := c.db.Exec("SELECT 1"); err != nil {
		// Stale connection, discard and reconnect.
		c.db.Close()
		c.db = nil
		c.openLocked()
	}
}

func (c *Conn) openLocked() {
	db, err := sql.Open(c.params.Driver, c.params.DSN)
	if err == nil {
		err = db.Ping()
	}
	if err != nil {
		if db != nil {
			db.Close()
		}
		logger.LogConnectionEvent("open", c.params.Driver, err)
		return
	}

	// Pin the pool to one physical connection; the handle is the whole
	// resource model.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	c.db = db
	c.opens++
	logger.LogConnectionEvent("open", c.params.Driver, nil)
}

// Execute runs one statement and reports the outcome as a value. The safety
// gate is applied first; a rejected statement never touches the connection.
// Select-shaped statements return all rows in database order with the
// projection column order preserved in Columns. Anything else that clears
// the gate is executed and reported as a single synthetic row carrying the
// affected-row count. Driver errors roll the transaction back.
func (c *Conn) Execute(ctx context.Context, query string) Result {
	if decision := safety.Evaluate(query); !decision.Allowed {
		return Failure(decision.Reason)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.ensureConnectedLocked()
	if c.db == nil {
		return Failure("unable to connect to the database")
	}

	c.lastUsed = time.Now()
	c.lastQuery = query
	c.execCount++

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		logger.LogDatabaseOperation("BEGIN", query, 0, err)
		return Failure(err.Error())
	}

	if safety.IsSelect(query) {
		rows, err := tx.QueryContext(ctx, query)
		if err != nil {
			tx.Rollback()
			logger.LogDatabaseOperation("SELECT", query, 0, err)
			return Failure(err.Error())
		}
		data, columns, err := scanRows(rows)
		rows.Close()
		if err != nil {
			tx.Rollback()
			logger.LogDatabaseOperation("SELECT", query, 0, err)
			return Failure(err.Error())
		}
		// A read-only commit is harmless and clears the implicit transaction.
		if err := tx.Commit(); err != nil {
			return Failure(err.Error())
		}
		logger.LogDatabaseOperation("SELECT", query, int64(len(data)), nil)
		return Result{Success: true, Data: data, Columns: columns}
	}

	result, err := tx.ExecContext(ctx, query)
	if err != nil {
		tx.Rollback()
		logger.LogDatabaseOperation("EXEC", query, 0, err)
		return Failure(err.Error())
	}
	affected, err := result.RowsAffected()
	if err != nil {
		affected = 0
	}
	if err := tx.Commit(); err != nil {
		return Failure(err.Error())
	}
	logger.LogDatabaseOperation("EXEC", query, affected, nil)
	return Result{Success: true, Data: []map[string]interface{}{
		{"message": fmt.Sprintf("Query executed successfully. Rows affected: %d", affected)},
	}}
}

func scanRows(rows *sql.Rows) ([]map[string]interface{}, []string, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("error getting columns: %v", err)
	}

	var data []map[string]interface{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range columns {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, nil, fmt.Errorf("error scanning row: %v", err)
		}

		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		data = append(data, row)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating rows: %v", err)
	}

	return data, columns, nil
}

// LastQuery returns the most recently executed statement, empty if nothing
// has run yet. Gate-rejected statements are not recorded.
func (c *Conn) LastQuery() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastQuery
}

// ExecCount returns the number of statements that have reached the database.
// Callers compare counts across an operation to detect whether it executed
// anything.
func (c *Conn) ExecCount() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.execCount
}

// Connected reports whether a live connection is currently held.
func (c *Conn) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.db != nil
}

// Close tears down the connection when force is set or the handle has been
// idle past the configured timeout. Reports whether a close happened.
func (c *Conn) Close(force bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db == nil {
		return false
	}
	if !force && time.Since(c.lastUsed) <= c.params.IdleTimeout {
		return false
	}

	c.db.Close()
	c.db = nil
	logger.LogConnectionEvent("close", c.params.Driver, nil)
	return true
}
