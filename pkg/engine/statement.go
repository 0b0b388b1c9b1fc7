package engine

import "fmt"

// Statement is a SQL template with ":name" placeholders and the values bound to them
type Statement struct {
	SQL    string
	Params *FieldMap
}

// NewStatement binds params to a template; nil params bind nothing
func NewStatement(sql string, params *FieldMap) Statement {
	if params == nil {
		params = NewFieldMap()
	}
	return Statement{SQL: sql, Params: params}
}

// Args returns the placeholder→value mapping handed to the driver
func (s Statement) Args() map[string]interface{} {
	return s.Params.Params()
}

func (s Statement) String() string {
	if s.Params.IsEmpty() {
		return s.SQL
	}
	return fmt.Sprintf("%s %s", s.SQL, s.Params)
}
