package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// EngineError is implemented by every error the dispatcher reports
type EngineError interface {
	error
	Code() string
}

type codedError struct {
	code string
	msg  string
}

func (e *codedError) Error() string { return e.msg }
func (e *codedError) Code() string  { return e.code }

var (
	// ErrNoConnection is reported when the store is unreachable; nothing is dispatched
	ErrNoConnection EngineError = &codedError{code: "NO_CONNECTION", msg: "no connection to the store"}

	// ErrUnroutableVerb is reported for a verb outside GET/POST/PUT/DELETE.
	// It comes with an absent result and means "no route": the store was not touched.
	ErrUnroutableVerb EngineError = &codedError{code: "UNROUTABLE_VERB", msg: "verb is not routable"}
)

// ============================================================
// PRECONDITION ERRORS
// ============================================================

// MissingFieldError means a handler precondition on a field was not met
type MissingFieldError struct {
	Resource string
	Field    string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: required field '%s' is missing", e.Resource, e.Field)
}

func (e *MissingFieldError) Code() string { return "MISSING_FIELD" }

// EmptyFieldsError means a generic write was given no fields
type EmptyFieldsError struct {
	Table     string
	Operation string
}

func (e *EmptyFieldsError) Error() string {
	return fmt.Sprintf("%s on '%s' needs at least one field", e.Operation, e.Table)
}

func (e *EmptyFieldsError) Code() string { return "EMPTY_FIELDS" }

// MissingIdentifierError means a generic update was given no id
type MissingIdentifierError struct {
	Table string
}

func (e *MissingIdentifierError) Error() string {
	return fmt.Sprintf("update on '%s' needs an id", e.Table)
}

func (e *MissingIdentifierError) Code() string { return "MISSING_IDENTIFIER" }

// InvalidIdentifierError means a table or column name would not be safe to interpolate
type InvalidIdentifierError struct {
	Identifier string
	Role       string // "table" or "column"
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("invalid %s name '%s'", e.Role, e.Identifier)
}

func (e *InvalidIdentifierError) Code() string { return "INVALID_IDENTIFIER" }

// ============================================================
// STORE ERRORS
// ============================================================

// StoreErrorKind classifies a driver failure
type StoreErrorKind string

const (
	StoreUnknown         StoreErrorKind = "unknown"
	StoreUniqueViolation StoreErrorKind = "unique_violation"
	StoreForeignKey      StoreErrorKind = "foreign_key_violation"
	StoreNotNull         StoreErrorKind = "not_null_violation"
	StoreCheck           StoreErrorKind = "check_violation"
	StoreUndefinedTable  StoreErrorKind = "undefined_table"
	StoreUndefinedColumn StoreErrorKind = "undefined_column"
	StoreConnection      StoreErrorKind = "connection"
)

// StoreError wraps a statement failure reported by the primitive
type StoreError struct {
	Operation string // "query" or "execute"
	Statement string
	Kind      StoreErrorKind
	// Detail is the column, table or constraint the driver named, if any
	Detail string
	Err    error
}

func (e *StoreError) Error() string {
	msg := fmt.Sprintf("%s failed (%s)", e.Operation, e.Kind)
	if e.Detail != "" {
		msg += fmt.Sprintf(" on '%s'", e.Detail)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StoreError) Code() string { return "STORE_ERROR" }

func (e *StoreError) Unwrap() error { return e.Err }

// StepOutcome records one statement of a composite write
type StepOutcome struct {
	Table    string
	Affected int64
	Err      error
}

func (s StepOutcome) Succeeded() bool {
	return s.Err == nil && s.Affected > 0
}

// PartialWriteError reports a composite write where at least one step did not succeed.
// Earlier steps are not rolled back.
type PartialWriteError struct {
	Operation string
	Steps     []StepOutcome
}

func (e *PartialWriteError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: partial write", e.Operation)
	for _, s := range e.Steps {
		switch {
		case s.Err != nil:
			fmt.Fprintf(&b, "; %s failed: %v", s.Table, s.Err)
		case s.Affected == 0:
			fmt.Fprintf(&b, "; %s affected no rows", s.Table)
		default:
			fmt.Fprintf(&b, "; %s ok (%d)", s.Table, s.Affected)
		}
	}
	return b.String()
}

func (e *PartialWriteError) Code() string { return "PARTIAL_WRITE" }

// Unwrap exposes the step errors to errors.Is / errors.As
func (e *PartialWriteError) Unwrap() []error {
	var errs []error
	for _, s := range e.Steps {
		if s.Err != nil {
			errs = append(errs, s.Err)
		}
	}
	return errs
}

// ErrorCode returns the code of the first EngineError in err's chain, or ""
func ErrorCode(err error) string {
	var ee EngineError
	if errors.As(err, &ee) {
		return ee.Code()
	}
	return ""
}

// ============================================================
// FORMATTING
// ============================================================

// FormatError renders an error for a terminal
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var b strings.Builder

	errorColor := color.New(color.FgRed, color.Bold)
	errorColor.Fprintf(&b, "Error: ")
	fmt.Fprintf(&b, "%s\n", err.Error())

	if code := ErrorCode(err); code != "" {
		codeColor := color.New(color.FgCyan)
		codeColor.Fprintf(&b, "  --> ")
		fmt.Fprintf(&b, "%s\n", code)
	}

	if help := suggestion(err); help != "" {
		b.WriteString("\n")
		helpColor := color.New(color.FgYellow, color.Bold)
		helpColor.Fprintf(&b, "  Help: ")
		fmt.Fprintf(&b, "%s\n", help)
	}

	return b.String()
}

func suggestion(err error) string {
	var missing *MissingFieldError
	var store *StoreError
	var partial *PartialWriteError
	switch {
	case errors.Is(err, ErrNoConnection):
		return "Check the BDD_* settings and that the database is running"
	case errors.Is(err, ErrUnroutableVerb):
		return "Use one of GET, POST, PUT or DELETE"
	case errors.As(err, &missing):
		return fmt.Sprintf("Provide a value for %s", missing.Field)
	case errors.As(err, &partial):
		return "Earlier steps were kept; inspect the affected rows before retrying"
	case errors.As(err, &store):
		switch store.Kind {
		case StoreUniqueViolation:
			return "Use a different value, or update the existing record"
		case StoreForeignKey:
			return "Ensure the referenced row exists first"
		case StoreNotNull:
			return "Provide every required column"
		case StoreUndefinedTable, StoreUndefinedColumn:
			return "Check the resource and field names against the database schema"
		}
	}
	return ""
}
