package engine

import "context"

// Executor runs statements through a Primitive for the handlers.
// It traces every statement and wraps driver failures into *StoreError.
type Executor struct {
	primitive Primitive
	debug     *DebugContext
}

// NewExecutor creates an executor over a primitive
func NewExecutor(primitive Primitive, debug *DebugContext) *Executor {
	if debug == nil {
		debug = DefaultDebugContext()
	}
	return &Executor{primitive: primitive, debug: debug}
}

// Query runs a row-returning statement
func (ex *Executor) Query(ctx context.Context, stmt Statement) ([]Row, error) {
	if ex.primitive == nil || !ex.primitive.IsConnected() {
		return nil, ErrNoConnection
	}

	ex.debug.logStatement(stmt)

	rows, err := ex.primitive.Query(ctx, stmt)
	if err != nil {
		ex.debug.Tracef("query failed: %v", err)
		return nil, mapStoreError(err, "query", stmt)
	}
	ex.debug.Tracef("%d row(s)", len(rows))
	return rows, nil
}

// Execute runs a write statement
func (ex *Executor) Execute(ctx context.Context, stmt Statement) (ExecResult, error) {
	if ex.primitive == nil || !ex.primitive.IsConnected() {
		return ExecResult{}, ErrNoConnection
	}

	ex.debug.logStatement(stmt)

	res, err := ex.primitive.Execute(ctx, stmt)
	if err != nil {
		ex.debug.Tracef("execute failed: %v", err)
		return ExecResult{}, mapStoreError(err, "execute", stmt)
	}
	ex.debug.Tracef("%d row(s) affected", res.RowsAffected)
	return res, nil
}

// Driver returns the store driver, empty when the primitive does not report it
func (ex *Executor) Driver() Driver {
	if d, ok := ex.primitive.(DriverReporter); ok {
		return d.Driver()
	}
	return ""
}

// Tracef forwards a note to the debug context
func (ex *Executor) Tracef(format string, args ...interface{}) {
	ex.debug.Tracef(format, args...)
}
