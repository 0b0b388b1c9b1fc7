// Package enginetest provides primitives for testing code built on the engine.
package enginetest

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"testing"

	"github.com/mediatek86/catalog/pkg/engine"
)

// Call is one statement received by a Recorder
type Call struct {
	Op        string // "query" or "execute"
	Statement engine.Statement
}

// Param returns the value bound to name
func (c Call) Param(name string) (engine.Value, bool) {
	return c.Statement.Params.Get(name)
}

type queryReply struct {
	rows []engine.Row
	err  error
}

type execReply struct {
	res engine.ExecResult
	err error
}

// Recorder is a Primitive that records statements and answers from scripts.
// Unscripted queries return no rows; unscripted writes affect one row.
type Recorder struct {
	mu        sync.Mutex
	connected bool
	driver    engine.Driver
	calls     []Call
	queries   []queryReply
	execs     []execReply
}

// NewRecorder returns a connected recorder
func NewRecorder() *Recorder {
	return &Recorder{connected: true}
}

// Disconnected returns a recorder that reports no live connection
func Disconnected() *Recorder {
	return &Recorder{}
}

// WithDriver makes the recorder report driver
func (r *Recorder) WithDriver(driver engine.Driver) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.driver = driver
	return r
}

func (r *Recorder) Driver() engine.Driver {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.driver
}

// OnQuery queues the reply of the next query
func (r *Recorder) OnQuery(rows []engine.Row, err error) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, queryReply{rows: rows, err: err})
	return r
}

// OnExecute queues the reply of the next write
func (r *Recorder) OnExecute(affected int64, err error) *Recorder {
	return r.OnExecuteResult(engine.ExecResult{RowsAffected: affected}, err)
}

// OnExecuteResult queues a full write reply
func (r *Recorder) OnExecuteResult(res engine.ExecResult, err error) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.execs = append(r.execs, execReply{res: res, err: err})
	return r
}

func (r *Recorder) IsConnected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.connected
}

func (r *Recorder) Query(ctx context.Context, stmt engine.Statement) ([]engine.Row, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Op: "query", Statement: stmt})
	if len(r.queries) == 0 {
		return []engine.Row{}, nil
	}
	reply := r.queries[0]
	r.queries = r.queries[1:]
	return reply.rows, reply.err
}

func (r *Recorder) Execute(ctx context.Context, stmt engine.Statement) (engine.ExecResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Op: "execute", Statement: stmt})
	if len(r.execs) == 0 {
		return engine.ExecResult{RowsAffected: 1}, nil
	}
	reply := r.execs[0]
	r.execs = r.execs[1:]
	return reply.res, reply.err
}

// Calls returns the statements received so far
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// SQL returns the SQL text of every statement received so far
func (r *Recorder) SQL() []string {
	calls := r.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Statement.SQL
	}
	return out
}

// ============================================================
// SQLITE FIXTURE
// ============================================================

// OpenSQLite connects an in-memory SQLite database and runs schema on it.
// The connection is closed when the test ends.
func OpenSQLite(t testing.TB, schema string) *engine.SQLConnector {
	t.Helper()

	db, err := sql.Open(string(engine.DriverSQLite), ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// each connection to ":memory:" is a distinct database
	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(0)

	conn := engine.NewSQLConnectorFromDB(db, engine.DriverSQLite)
	t.Cleanup(conn.Close)
	if err := conn.Ping(context.Background()); err != nil {
		t.Fatalf("ping sqlite: %v", err)
	}

	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := conn.DB().Exec(stmt); err != nil {
			t.Fatalf("apply schema: %v\n%s", err, stmt)
		}
	}
	return conn
}
