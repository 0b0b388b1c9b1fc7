package engine

import "fmt"

// Row represents a single result row as a map of field name → value
// Values are typed: string, int64, float64, bool, nil, time.Time
type Row map[string]interface{}

// Get returns the value of a field
func (r Row) Get(field string) interface{} {
	return r[field]
}

// String returns the string value of a field, or empty string if not found/not string
func (r Row) String(field string) string {
	v, ok := r[field]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Int returns the int64 value of a field, or 0 if not found/not int
func (r Row) Int(field string) int64 {
	v, ok := r[field]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int64:
		return n
	case int32:
		return int64(n)
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

// ============================================================
// DISPATCH RESULT
// ============================================================

// ResultKind tells which shape a Result carries
type ResultKind int

const (
	// ResultAbsent means nothing happened: no route, no connection,
	// an unmet precondition or a store failure
	ResultAbsent ResultKind = iota
	// ResultRows carries the rows of a read, possibly none
	ResultRows
	// ResultCount carries an affected-row count
	ResultCount
	// ResultFlag carries the success flag of a composite write
	ResultFlag
)

func (k ResultKind) String() string {
	switch k {
	case ResultRows:
		return "rows"
	case ResultCount:
		return "count"
	case ResultFlag:
		return "flag"
	default:
		return "absent"
	}
}

// Result is the outcome of one dispatch
type Result struct {
	Kind  ResultKind
	Rows  []Row
	Count int64
	OK    bool
}

func Absent() Result {
	return Result{Kind: ResultAbsent}
}

// RowsResult never carries a nil slice, so an empty read stays distinct from Absent
func RowsResult(rows []Row) Result {
	if rows == nil {
		rows = []Row{}
	}
	return Result{Kind: ResultRows, Rows: rows}
}

func CountResult(n int64) Result {
	return Result{Kind: ResultCount, Count: n}
}

func FlagResult(ok bool) Result {
	return Result{Kind: ResultFlag, OK: ok}
}

func (r Result) IsAbsent() bool {
	return r.Kind == ResultAbsent
}

// Truthy reports whether the result signals something happened
func (r Result) Truthy() bool {
	switch r.Kind {
	case ResultRows:
		return true
	case ResultCount:
		return r.Count > 0
	case ResultFlag:
		return r.OK
	default:
		return false
	}
}

// Int returns the integer form of a write result: the count, or 1/0 for a flag
func (r Result) Int() (int64, bool) {
	switch r.Kind {
	case ResultCount:
		return r.Count, true
	case ResultFlag:
		if r.OK {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// Value returns rows, an int64, a bool or nil, ready to be serialized
func (r Result) Value() interface{} {
	switch r.Kind {
	case ResultRows:
		return r.Rows
	case ResultCount:
		return r.Count
	case ResultFlag:
		return r.OK
	default:
		return nil
	}
}

func (r Result) String() string {
	switch r.Kind {
	case ResultRows:
		return fmt.Sprintf("rows(%d)", len(r.Rows))
	case ResultCount:
		return fmt.Sprintf("count(%d)", r.Count)
	case ResultFlag:
		return fmt.Sprintf("flag(%t)", r.OK)
	default:
		return "absent"
	}
}
