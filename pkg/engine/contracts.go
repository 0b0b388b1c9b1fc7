package engine

import (
	"context"
	"strings"
)

// ============================================================
// VERBS
// ============================================================

// Verb selects the handler category of a request
type Verb int

const (
	VerbRead Verb = iota
	VerbCreate
	VerbUpdate
	VerbDelete
)

// Verbs lists the routable verbs in category order
var Verbs = []Verb{VerbRead, VerbCreate, VerbUpdate, VerbDelete}

// ParseVerb maps an HTTP method to a verb. Matching is exact: "get" is not routable.
func ParseVerb(method string) (Verb, bool) {
	switch method {
	case "GET":
		return VerbRead, true
	case "POST":
		return VerbCreate, true
	case "PUT":
		return VerbUpdate, true
	case "DELETE":
		return VerbDelete, true
	default:
		return -1, false
	}
}

func (v Verb) Valid() bool {
	return v >= VerbRead && v <= VerbDelete
}

// IsWrite reports whether the verb mutates the store
func (v Verb) IsWrite() bool {
	return v == VerbCreate || v == VerbUpdate || v == VerbDelete
}

// Method returns the HTTP method bound to the verb
func (v Verb) Method() string {
	switch v {
	case VerbRead:
		return "GET"
	case VerbCreate:
		return "POST"
	case VerbUpdate:
		return "PUT"
	case VerbDelete:
		return "DELETE"
	default:
		return ""
	}
}

func (v Verb) String() string {
	switch v {
	case VerbRead:
		return "read"
	case VerbCreate:
		return "create"
	case VerbUpdate:
		return "update"
	case VerbDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// ============================================================
// REQUEST
// ============================================================

// Request is one already-authenticated call into the engine
type Request struct {
	Verb     Verb
	Resource string
	// ID is only consulted by the generic update
	ID     *string
	Fields *FieldMap
}

func (r Request) String() string {
	var b strings.Builder
	b.WriteString(r.Verb.Method())
	b.WriteString(" ")
	b.WriteString(r.Resource)
	if r.ID != nil {
		b.WriteString("/")
		b.WriteString(*r.ID)
	}
	if !r.Fields.IsEmpty() {
		b.WriteString(" ")
		b.WriteString(r.Fields.String())
	}
	return b.String()
}

// ============================================================
// STATEMENT PRIMITIVE
// ============================================================

// ExecResult is what the store reports for a write statement
type ExecResult struct {
	RowsAffected int64
	// LastInsertID is 0 when the driver cannot report it
	LastInsertID int64
}

// Primitive executes named-placeholder SQL against the store.
// Pooling and connection concurrency are the implementation's business.
type Primitive interface {
	// IsConnected reports whether statements can be issued
	IsConnected() bool

	// Query runs a statement that returns rows
	Query(ctx context.Context, stmt Statement) ([]Row, error)

	// Execute runs a statement that returns an affected-row count
	Execute(ctx context.Context, stmt Statement) (ExecResult, error)
}

// DriverReporter is implemented by primitives that know their store driver
type DriverReporter interface {
	Driver() Driver
}

// StoreConnector is a Primitive that owns a live connection
type StoreConnector interface {
	Primitive
	Connect(ctx context.Context) error
	Ping(ctx context.Context) error
	Close()
}

// ============================================================
// HANDLERS
// ============================================================

// Handler serves one (verb, resource) route.
// It must not keep state between calls.
type Handler func(ctx context.Context, ex *Executor, req Request) (Result, error)

// Journal receives one entry per write dispatch
type Journal interface {
	Record(entry JournalEntry) error
}
