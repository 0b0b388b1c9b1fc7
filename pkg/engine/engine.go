package engine

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
)

// Engine is the verb dispatcher: it routes each request to exactly one
// handler, special or generic, and runs it against the primitive.
// It keeps no state between dispatches.
type Engine struct {
	primitive Primitive
	registry  *Registry
	journal   Journal

	// Debug context
	Debug *DebugContext
}

// Option configures an Engine
type Option func(*Engine)

// WithJournal records every write dispatch into j
func WithJournal(j Journal) Option {
	return func(e *Engine) {
		e.journal = j
	}
}

// WithDebugContext replaces the default debug context
func WithDebugContext(d *DebugContext) Option {
	return func(e *Engine) {
		if d != nil {
			e.Debug = d
		}
	}
}

// ============================================================
// ENGINE INITIALIZATION
// ============================================================

// New creates a dispatcher over a primitive.
// A nil registry dispatches every resource to the generic builders.
func New(primitive Primitive, registry *Registry, opts ...Option) *Engine {
	if registry == nil {
		registry = NewRegistry()
	}
	e := &Engine{
		primitive: primitive,
		registry:  registry,
		Debug:     DefaultDebugContext(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithDebug enables colored debug output on stdout
func (e *Engine) WithDebug(level DebugLevel) *Engine {
	e.Debug = &DebugContext{
		Level:       level,
		Writer:      os.Stdout,
		ColorOutput: true,
	}
	return e
}

// IsConnected returns true if statements can be issued
func (e *Engine) IsConnected() bool {
	return e.primitive != nil && e.primitive.IsConnected()
}

// Registry returns the route table
func (e *Engine) Registry() *Registry {
	return e.registry
}

// ─────────────────────────────────────────────────────────────
// Dispatch
// ─────────────────────────────────────────────────────────────

// Demande is the inbound entry point: method is one of GET, POST, PUT, DELETE
// (exact case), id and fields may be nil.
//
// Any other method yields an absent result with ErrUnroutableVerb. Nothing
// reaches the store, so callers may treat UNROUTABLE_VERB as "no route"
// rather than a failure.
func (e *Engine) Demande(ctx context.Context, method, resource string, id *string, fields *FieldMap) (Result, error) {
	if !e.IsConnected() {
		return Absent(), ErrNoConnection
	}
	verb, ok := ParseVerb(method)
	if !ok {
		e.Debug.Tracef("verb %q not routable", method)
		return Absent(), ErrUnroutableVerb
	}
	return e.Dispatch(ctx, Request{Verb: verb, Resource: resource, ID: id, Fields: fields})
}

// Dispatch routes req to its handler.
// The connection check runs before verb routing: with no live primitive
// nothing is attempted.
func (e *Engine) Dispatch(ctx context.Context, req Request) (Result, error) {
	if !e.IsConnected() {
		return Absent(), ErrNoConnection
	}
	if !req.Verb.Valid() {
		return Absent(), ErrUnroutableVerb
	}
	if req.Fields == nil {
		req.Fields = NewFieldMap()
	}

	requestID := uuid.NewString()
	route := e.registry.Resolve(req.Verb, req.Resource)
	e.Debug.Tracef("request=%s %s -> %s (%s)", requestID, req, route.Description, route.Category)

	res, err := route.Handler(ctx, NewExecutor(e.primitive, e.Debug), req)
	if err != nil {
		e.Debug.Tracef("request=%s failed: %v", requestID, err)
	}

	if req.Verb.IsWrite() {
		e.record(requestID, req, route, res, err)
	}
	return res, err
}

// ─────────────────────────────────────────────────────────────
// Journal
// ─────────────────────────────────────────────────────────────

// JournalEntry describes one write dispatch
type JournalEntry struct {
	Time      time.Time
	RequestID string
	Verb      Verb
	Resource  string
	Category  Category
	Result    Result
	Err       error
}

// Outcome is "ok", "failed" or "error: <code>"
func (j JournalEntry) Outcome() string {
	if j.Err != nil {
		if code := ErrorCode(j.Err); code != "" {
			return "error: " + code
		}
		return "error"
	}
	if j.Result.Truthy() {
		return "ok"
	}
	return "failed"
}

func (e *Engine) record(requestID string, req Request, route Route, res Result, err error) {
	if e.journal == nil {
		return
	}
	entry := JournalEntry{
		Time:      time.Now(),
		RequestID: requestID,
		Verb:      req.Verb,
		Resource:  req.Resource,
		Category:  route.Category,
		Result:    res,
		Err:       err,
	}
	if jerr := e.journal.Record(entry); jerr != nil {
		e.Debug.Tracef("journal: %v", jerr)
	}
}
