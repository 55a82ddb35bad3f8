package table

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Schema ordnet jedem bekannten Spaltennamen einer Tabelle seinen Zieltyp zu.
type Schema map[string]ColumnType

// Enforce castet jede Spalte auf ihren deklarierten Typ und entfernt danach
// exakte Duplikatzeilen (die erste Vorkommnis bleibt, Reihenfolge stabil).
// Die Eingabetabelle wird nicht verändert.
func Enforce(t *Table, schema Schema) (*Table, error) {
	types := make([]ColumnType, len(t.Columns))
	for i, c := range t.Columns {
		typ, ok := schema[c]
		if !ok || typ == Untyped {
			return nil, &SchemaError{Table: t.Name, Column: c}
		}
		types[i] = typ
	}

	out := New(t.Name, t.Columns...)
	out.Types = make(map[string]ColumnType, len(t.Columns))
	for i, c := range t.Columns {
		out.Types[c] = types[i]
	}

	for r, row := range t.Rows {
		cast := make([]any, len(t.Columns))
		for i := range t.Columns {
			var v any
			if i < len(row) {
				v = row[i]
			}
			cv, ok := Coerce(v, types[i])
			if !ok {
				return nil, &TypeCoercionError{Table: t.Name, Column: t.Columns[i], Row: r, Value: v, Target: types[i]}
			}
			cast[i] = cv
		}
		out.Rows = append(out.Rows, cast)
	}

	return Dedupe(out), nil
}

// Dedupe entfernt Zeilen, die vollständig einer früheren Zeile gleichen.
func Dedupe(t *Table) *Table {
	out := New(t.Name, t.Columns...)
	out.Types = t.Clone().Types
	seen := make(map[string]struct{}, len(t.Rows))
	for _, row := range t.Rows {
		key := rowKey(row)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		r := make([]any, len(row))
		copy(r, row)
		out.Rows = append(out.Rows, r)
	}
	return out
}

// rowKey kodiert jede Zelle mit Längenpräfix, damit Trennzeichen im Wert
// keine fremden Zeilen zusammenführen.
func rowKey(row []any) string {
	var b strings.Builder
	for _, v := range row {
		cell := fmt.Sprintf("%T=%v", v, v)
		fmt.Fprintf(&b, "%d:%s", len(cell), cell)
	}
	return b.String()
}

// Coerce castet einen Rohwert (aus CSV oder JSON) auf typ.
func Coerce(v any, typ ColumnType) (any, bool) {
	switch typ {
	case String:
		return toString(v)
	case Int:
		return toInt(v)
	case Float:
		return toFloat(v)
	case Bool:
		return toBool(v)
	default:
		return nil, false
	}
}

func toString(v any) (any, bool) {
	switch val := v.(type) {
	case nil:
		return "", true
	case string:
		return val, true
	case json.Number:
		return val.String(), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case bool:
		return strconv.FormatBool(val), true
	case fmt.Stringer:
		return val.String(), true
	default:
		return nil, false
	}
}

func toInt(v any) (any, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case float64:
		if val != math.Trunc(val) || math.IsInf(val, 0) {
			return nil, false
		}
		return int(val), true
	case json.Number:
		n, err := val.Int64()
		if err != nil {
			return nil, false
		}
		return int(n), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return nil, false
		}
		return n, true
	default:
		return nil, false
	}
}

func toFloat(v any) (any, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return nil, false
		}
		return f, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return nil, false
		}
		return f, true
	default:
		return nil, false
	}
}

func toBool(v any) (any, bool) {
	switch val := v.(type) {
	case bool:
		return val, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(val))
		if err != nil {
			return nil, false
		}
		return b, true
	default:
		return nil, false
	}
}
