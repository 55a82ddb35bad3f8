package table

import "fmt"

// SchemaError meldet eine Spalte (oder Tabelle), für die kein Typ deklariert ist.
type SchemaError struct {
	Table  string
	Column string
}

func (e *SchemaError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("schema error: no schema declared for table %q", e.Table)
	}
	return fmt.Sprintf("schema error: table %q has undeclared column %q", e.Table, e.Column)
}

// TypeCoercionError meldet einen Wert, der nicht in den deklarierten Typ passt.
type TypeCoercionError struct {
	Table  string
	Column string
	Row    int
	Value  any
	Target ColumnType
}

func (e *TypeCoercionError) Error() string {
	return fmt.Sprintf("type coercion error: table %q column %q row %d: cannot cast %#v to %s",
		e.Table, e.Column, e.Row, e.Value, e.Target)
}
