// Package introspect lists the tables and columns of the connected store.
// It tells which resources the generic builder can reach.
package introspect

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/mediatek86/catalog/pkg/engine"
)

// ColumnInfo represents a column
type ColumnInfo struct {
	Name       string
	Type       string // DB-specific type (e.g., "varchar", "integer")
	Nullable   bool
	PrimaryKey bool
	DefaultVal *string
}

// TableInfo represents a table structure
type TableInfo struct {
	Name    string
	Columns []ColumnInfo
}

// Column finds a column by name
func (t TableInfo) Column(name string) (ColumnInfo, bool) {
	return lo.Find(t.Columns, func(c ColumnInfo) bool { return c.Name == name })
}

// Inspector runs the catalog queries of one dialect through the engine executor
type Inspector struct {
	ex      *engine.Executor
	dialect dialect
}

// New creates an inspector for driver over p
func New(p engine.Primitive, driver engine.Driver) (*Inspector, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("no catalog queries for driver %q", driver)
	}
	return &Inspector{ex: engine.NewExecutor(p, nil), dialect: d}, nil
}

// ListTables returns all user-defined tables, sorted
func (i *Inspector) ListTables(ctx context.Context) ([]string, error) {
	rows, err := i.ex.Query(ctx, engine.NewStatement(i.dialect.listTables, nil))
	if err != nil {
		return nil, err
	}

	tables := lo.Map(rows, func(r engine.Row, _ int) string { return r.String("name") })
	sort.Strings(tables)
	return tables, nil
}

// InspectTable returns the columns of tableName in declaration order
func (i *Inspector) InspectTable(ctx context.Context, tableName string) (*TableInfo, error) {
	params := engine.NewFieldMap().Set("table", engine.Text(tableName))
	rows, err := i.ex.Query(ctx, engine.NewStatement(i.dialect.columns, params))
	if err != nil {
		return nil, err
	}

	table := &TableInfo{
		Name:    tableName,
		Columns: []ColumnInfo{},
	}
	for _, r := range rows {
		col := ColumnInfo{
			Name:       r.String("name"),
			Type:       strings.ToLower(r.String("type")),
			Nullable:   i.dialect.nullable(r.Get("nullable")),
			PrimaryKey: truthy(r.Get("pk")),
		}
		if v := r.Get("dflt"); v != nil {
			s := fmt.Sprint(v)
			col.DefaultVal = &s
		}
		table.Columns = append(table.Columns, col)
	}

	if len(table.Columns) == 0 {
		return nil, fmt.Errorf("table %s not found or has no columns", tableName)
	}
	return table, nil
}

// GetAllTables returns complete schema
func (i *Inspector) GetAllTables(ctx context.Context) ([]TableInfo, error) {
	tables, err := i.ListTables(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]TableInfo, 0, len(tables))
	for _, tableName := range tables {
		table, err := i.InspectTable(ctx, tableName)
		if err != nil {
			return nil, fmt.Errorf("failed to inspect table %s: %w", tableName, err)
		}
		result = append(result, *table)
	}
	return result, nil
}

// Generic returns the tables with no special route for verb: requests on them
// go to the generic single-table builder.
func Generic(tables []string, r *engine.Registry, verb engine.Verb) []string {
	return lo.Filter(tables, func(t string, _ int) bool {
		_, special := r.Lookup(verb, t)
		return !special
	})
}

// truthy reads the boolean-ish values the dialects return
func truthy(v interface{}) bool {
	switch b := v.(type) {
	case bool:
		return b
	case int64:
		return b != 0
	case int32:
		return b != 0
	case int:
		return b != 0
	case string:
		switch strings.ToUpper(b) {
		case "1", "YES", "TRUE", "PRI":
			return true
		}
	}
	return false
}
