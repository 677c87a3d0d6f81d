package db

import (
	"sync"
	"time"

	"github.com/hakimbh/sql-agent-mcp/internal/logger"
)

const defaultPollInterval = 30 * time.Second

// stopJoinTimeout bounds how long Stop waits for the poll loop to exit.
const stopJoinTimeout = time.Second

// Monitor force-closes the connection after a period with no foreground
// activity, independent of individual calls. Its lifecycle is one-way: once
// stopped it cannot be restarted, a fresh instance must be created.
type Monitor struct {
	conn        *Conn
	idleTimeout time.Duration
	poll        time.Duration

	mu           sync.Mutex
	lastActivity time.Time

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewMonitor starts a monitor polling every 30 seconds.
func NewMonitor(conn *Conn, idleTimeout time.Duration) *Monitor {
	return newMonitor(conn, idleTimeout, defaultPollInterval)
}

func newMonitor(conn *Conn, idleTimeout, poll time.Duration) *Monitor {
	m := &Monitor{
		conn:         conn,
		idleTimeout:  idleTimeout,
		poll:         poll,
		lastActivity: time.Now(),
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
	go m.loop()
	return m
}

func (m *Monitor) loop() {
	defer close(m.done)

	ticker := time.NewTicker(m.poll)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			if time.Since(m.LastActivity()) > m.idleTimeout {
				if m.conn.Close(true) {
					logger.Info("closed idle database connection", map[string]interface{}{
						"idle_timeout": m.idleTimeout.String(),
					})
				}
			}
		}
	}
}

// UpdateActivity resets the idle clock. Foreground callers invoke this on
// every user turn so the monitor does not close a connection mid-conversation.
func (m *Monitor) UpdateActivity() {
	m.mu.Lock()
	m.lastActivity = time.Now()
	m.mu.Unlock()
}

func (m *Monitor) LastActivity() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastActivity
}

// Stop signals the poll loop, waits briefly for it to exit, and force-closes
// the connection. Safe to call more than once.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
		select {
		case <-m.done:
		case <-time.After(stopJoinTimeout):
			logger.Warn("idle monitor did not stop in time")
		}
		m.conn.Close(true)
	})
}
