package engine

import (
	"context"
	"strings"
)

// ============================================================
// GENERIC SINGLE-TABLE BUILDER
// ============================================================

// The builders interpolate only the table name and the field names, both
// checked with IsIdentifier first. Values always travel as parameters.

// BuildSelect returns "select * from T" or "select * from T where k1=:k1 and ..."
func BuildSelect(table string, fields *FieldMap) (Statement, error) {
	if err := validateTarget(table, fields); err != nil {
		return Statement{}, err
	}

	var b strings.Builder
	b.WriteString("select * from ")
	b.WriteString(table)
	if !fields.IsEmpty() {
		b.WriteString(" where ")
		b.WriteString(joinAssignments(fields.Names(), " and "))
	}
	return NewStatement(b.String(), fields.Clone()), nil
}

// BuildInsert returns "insert into T (k1,k2) values (:k1,:k2)"
func BuildInsert(table string, fields *FieldMap) (Statement, error) {
	if err := validateTarget(table, fields); err != nil {
		return Statement{}, err
	}
	if fields.IsEmpty() {
		return Statement{}, &EmptyFieldsError{Table: table, Operation: "insert"}
	}

	names := fields.Names()
	placeholders := make([]string, len(names))
	for i, name := range names {
		placeholders[i] = ":" + name
	}

	var b strings.Builder
	b.WriteString("insert into ")
	b.WriteString(table)
	b.WriteString(" (")
	b.WriteString(strings.Join(names, ","))
	b.WriteString(") values (")
	b.WriteString(strings.Join(placeholders, ","))
	b.WriteString(")")
	return NewStatement(b.String(), fields.Clone()), nil
}

// BuildUpdate returns "update T set k1=:k1,k2=:k2 where id=:id".
// The identifier is bound under "id" and wins over an "id" entry of fields.
func BuildUpdate(table string, id *string, fields *FieldMap) (Statement, error) {
	if err := validateTarget(table, fields); err != nil {
		return Statement{}, err
	}
	if fields.IsEmpty() {
		return Statement{}, &EmptyFieldsError{Table: table, Operation: "update"}
	}
	if id == nil {
		return Statement{}, &MissingIdentifierError{Table: table}
	}

	var b strings.Builder
	b.WriteString("update ")
	b.WriteString(table)
	b.WriteString(" set ")
	b.WriteString(joinAssignments(fields.Names(), ","))
	b.WriteString(" where id=:id")

	params := fields.Clone()
	params.Set("id", Text(*id))
	return NewStatement(b.String(), params), nil
}

// BuildDelete returns "delete from T where k1=:k1 and ...".
// An empty field map is refused: an unconditional delete is never built.
func BuildDelete(table string, fields *FieldMap) (Statement, error) {
	if err := validateTarget(table, fields); err != nil {
		return Statement{}, err
	}
	if fields.IsEmpty() {
		return Statement{}, &EmptyFieldsError{Table: table, Operation: "delete"}
	}

	var b strings.Builder
	b.WriteString("delete from ")
	b.WriteString(table)
	b.WriteString(" where ")
	b.WriteString(joinAssignments(fields.Names(), " and "))
	return NewStatement(b.String(), fields.Clone()), nil
}

func validateTarget(table string, fields *FieldMap) error {
	if !IsIdentifier(table) {
		return &InvalidIdentifierError{Identifier: table, Role: "table"}
	}
	return fields.Validate()
}

// joinAssignments renders "k1=:k1<sep>k2=:k2"
func joinAssignments(names []string, sep string) string {
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + "=:" + name
	}
	return strings.Join(parts, sep)
}

// ============================================================
// GENERIC HANDLERS
// ============================================================

// GenericHandler returns the fallback handler of a verb category.
// The resource name is used as the table name.
func GenericHandler(verb Verb) Handler {
	switch verb {
	case VerbRead:
		return genericRead
	case VerbCreate:
		return genericCreate
	case VerbUpdate:
		return genericUpdate
	case VerbDelete:
		return genericDelete
	default:
		return nil
	}
}

func genericRead(ctx context.Context, ex *Executor, req Request) (Result, error) {
	stmt, err := BuildSelect(req.Resource, req.Fields)
	if err != nil {
		return Absent(), err
	}
	rows, err := ex.Query(ctx, stmt)
	if err != nil {
		return Absent(), err
	}
	return RowsResult(rows), nil
}

func genericCreate(ctx context.Context, ex *Executor, req Request) (Result, error) {
	stmt, err := BuildInsert(req.Resource, req.Fields)
	if err != nil {
		return Absent(), err
	}
	return executeCount(ctx, ex, stmt)
}

func genericUpdate(ctx context.Context, ex *Executor, req Request) (Result, error) {
	stmt, err := BuildUpdate(req.Resource, req.ID, req.Fields)
	if err != nil {
		return Absent(), err
	}
	return executeCount(ctx, ex, stmt)
}

func genericDelete(ctx context.Context, ex *Executor, req Request) (Result, error) {
	stmt, err := BuildDelete(req.Resource, req.Fields)
	if err != nil {
		return Absent(), err
	}
	return executeCount(ctx, ex, stmt)
}

func executeCount(ctx context.Context, ex *Executor, stmt Statement) (Result, error) {
	res, err := ex.Execute(ctx, stmt)
	if err != nil {
		return Absent(), err
	}
	return CountResult(res.RowsAffected), nil
}
