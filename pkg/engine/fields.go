package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================
// VALUES
// ============================================================

// ValueKind tags the scalar held by a Value
type ValueKind int

const (
	KindNull ValueKind = iota
	KindText
	KindInt
	KindFloat
	KindDecimal
	KindBool
	KindDate
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindText:
		return "text"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindDecimal:
		return "decimal"
	case KindBool:
		return "bool"
	case KindDate:
		return "date"
	default:
		return "unknown"
	}
}

// Value is a typed scalar bound as a statement parameter.
// The zero Value is NULL.
type Value struct {
	kind ValueKind
	v    interface{}
}

func Null() Value { return Value{} }
func Text(s string) Value { return Value{kind: KindText, v: s} }
func Int(n int64) Value { return Value{kind: KindInt, v: n} }
func Float(f float64) Value { return Value{kind: KindFloat, v: f} }
func Decimal(d decimal.Decimal) Value { return Value{kind: KindDecimal, v: d} }
func Bool(b bool) Value { return Value{kind: KindBool, v: b} }
func Date(t time.Time) Value { return Value{kind: KindDate, v: t} }

// ValueOf converts a Go scalar into a Value.
// json.Number is narrowed to an int when it has no fractional part.
func ValueOf(raw interface{}) (Value, error) {
	switch v := raw.(type) {
	case nil:
		return Null(), nil
	case Value:
		return v, nil
	case string:
		return Text(v), nil
	case []byte:
		return Text(string(v)), nil
	case int:
		return Int(int64(v)), nil
	case int32:
		return Int(int64(v)), nil
	case int64:
		return Int(v), nil
	case float32:
		return Float(float64(v)), nil
	case float64:
		return Float(v), nil
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return Int(n), nil
		}
		f, err := v.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("invalid number %q: %w", v.String(), err)
		}
		return Float(f), nil
	case decimal.Decimal:
		return Decimal(v), nil
	case bool:
		return Bool(v), nil
	case time.Time:
		return Date(v), nil
	default:
		return Value{}, fmt.Errorf("unsupported field value type %T", raw)
	}
}

func (v Value) Kind() ValueKind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// Any returns the value handed to the driver
func (v Value) Any() interface{} {
	return v.v
}

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "NULL"
	case KindText:
		return strconv.Quote(v.v.(string))
	case KindDate:
		return v.v.(time.Time).Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", v.v)
	}
}

// ============================================================
// FIELD MAP
// ============================================================

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsIdentifier reports whether name is safe to interpolate as a table or column name
func IsIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

// Field is one (column, value) entry of a FieldMap
type Field struct {
	Name  string
	Value Value
}

// FieldMap is an ordered column→value association.
// Insertion order decides the column order of generated SQL.
type FieldMap struct {
	fields []Field
	index  map[string]int
}

func NewFieldMap() *FieldMap {
	return &FieldMap{index: make(map[string]int)}
}

// MustFields builds a FieldMap from alternating name/value arguments.
// It panics on an odd argument count, a non-string name or an unsupported value.
func MustFields(kv ...interface{}) *FieldMap {
	if len(kv)%2 != 0 {
		panic("engine.MustFields: odd number of arguments")
	}
	m := NewFieldMap()
	for i := 0; i < len(kv); i += 2 {
		name, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("engine.MustFields: field name %v is not a string", kv[i]))
		}
		v, err := ValueOf(kv[i+1])
		if err != nil {
			panic(fmt.Sprintf("engine.MustFields: %s: %v", name, err))
		}
		m.Set(name, v)
	}
	return m
}

// FieldsFromMap converts an unordered map; keys are sorted for a stable order
func FieldsFromMap(values map[string]interface{}) (*FieldMap, error) {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	m := NewFieldMap()
	for _, name := range names {
		v, err := ValueOf(values[name])
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		m.Set(name, v)
	}
	return m, nil
}

// Set adds a field, or replaces the value in place when the name exists
func (m *FieldMap) Set(name string, v Value) *FieldMap {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if i, ok := m.index[name]; ok {
		m.fields[i].Value = v
		return m
	}
	m.index[name] = len(m.fields)
	m.fields = append(m.fields, Field{Name: name, Value: v})
	return m
}

// Get returns the value stored under name
func (m *FieldMap) Get(name string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	i, ok := m.index[name]
	if !ok {
		return Value{}, false
	}
	return m.fields[i].Value, true
}

// Has reports whether name is present with a non-NULL value
func (m *FieldMap) Has(name string) bool {
	v, ok := m.Get(name)
	return ok && !v.IsNull()
}

func (m *FieldMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.fields)
}

func (m *FieldMap) IsEmpty() bool {
	return m.Len() == 0
}

// Names returns the field names in insertion order
func (m *FieldMap) Names() []string {
	names := make([]string, 0, m.Len())
	if m == nil {
		return names
	}
	for _, f := range m.fields {
		names = append(names, f.Name)
	}
	return names
}

// All returns a copy of the entries in insertion order
func (m *FieldMap) All() []Field {
	if m == nil {
		return nil
	}
	out := make([]Field, len(m.fields))
	copy(out, m.fields)
	return out
}

// Clone returns an independent copy
func (m *FieldMap) Clone() *FieldMap {
	out := NewFieldMap()
	if m == nil {
		return out
	}
	for _, f := range m.fields {
		out.Set(f.Name, f.Value)
	}
	return out
}

// Pick returns the subset of fields named, in the order given; absent names are skipped
func (m *FieldMap) Pick(names ...string) *FieldMap {
	out := NewFieldMap()
	for _, name := range names {
		if v, ok := m.Get(name); ok {
			out.Set(name, v)
		}
	}
	return out
}

// Params returns the placeholder→value mapping handed to the primitive
func (m *FieldMap) Params() map[string]interface{} {
	params := make(map[string]interface{}, m.Len())
	if m == nil {
		return params
	}
	for _, f := range m.fields {
		params[f.Name] = f.Value.Any()
	}
	return params
}

// Validate rejects any field name that is not a plain column identifier
func (m *FieldMap) Validate() error {
	if m == nil {
		return nil
	}
	for _, f := range m.fields {
		if !IsIdentifier(f.Name) {
			return &InvalidIdentifierError{Identifier: f.Name, Role: "column"}
		}
	}
	return nil
}

func (m *FieldMap) String() string {
	var b bytes.Buffer
	b.WriteString("{")
	for i, f := range m.All() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %s", f.Name, f.Value)
	}
	b.WriteString("}")
	return b.String()
}

// UnmarshalJSON decodes a flat JSON object and keeps the key order of the document
func (m *FieldMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*m = FieldMap{}
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("field map must be a JSON object")
	}

	out := NewFieldMap()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected key token %v", keyTok)
		}

		valTok, err := dec.Token()
		if err != nil {
			return err
		}
		if _, nested := valTok.(json.Delim); nested {
			return fmt.Errorf("field %s: nested values are not supported", name)
		}
		v, err := ValueOf(valTok)
		if err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
		out.Set(name, v)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*m = *out
	return nil
}
