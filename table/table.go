// Package table enthält die tabellarische Zwischenrepräsentation der Quelldaten
// (eine Tabelle pro Quelldatei) und die Schema-Durchsetzung.
package table

// ColumnType ist der skalare Zieltyp einer Spalte.
type ColumnType int

const (
	Untyped ColumnType = iota
	String
	Int
	Float
	Bool
)

func (c ColumnType) String() string {
	switch c {
	case String:
		return "string"
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	default:
		return "untyped"
	}
}

// Table ist eine zeilenorientierte Tabelle mit geordneten Spalten.
// Types ist erst nach Enforce gesetzt.
type Table struct {
	Name    string
	Columns []string
	Types   map[string]ColumnType
	Rows    [][]any
}

// New erstellt eine leere Tabelle mit den gegebenen Spalten.
func New(name string, columns ...string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Name: name, Columns: cols}
}

// AppendRow hängt eine Zeile an. Fehlende Werte werden mit nil aufgefüllt,
// überzählige abgeschnitten.
func (t *Table) AppendRow(values ...any) {
	row := make([]any, len(t.Columns))
	copy(row, values)
	t.Rows = append(t.Rows, row)
}

// Len gibt die Anzahl der Zeilen zurück.
func (t *Table) Len() int {
	return len(t.Rows)
}

// ColumnIndex gibt die Position einer Spalte zurück, -1 wenn sie fehlt.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// TypeOf gibt den durchgesetzten Typ einer Spalte zurück.
func (t *Table) TypeOf(name string) ColumnType {
	if t.Types == nil {
		return Untyped
	}
	return t.Types[name]
}

// Value liest eine Zelle. ok ist false, wenn Zeile oder Spalte fehlt.
func (t *Table) Value(row int, column string) (any, bool) {
	idx := t.ColumnIndex(column)
	if idx < 0 || row < 0 || row >= len(t.Rows) {
		return nil, false
	}
	return t.Rows[row][idx], true
}

// Text liest eine Zelle als String; nicht-String-Werte ergeben "".
func (t *Table) Text(row int, column string) string {
	v, ok := t.Value(row, column)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Clone erstellt eine tiefe Kopie von Spalten, Typen und Zeilen.
func (t *Table) Clone() *Table {
	out := New(t.Name, t.Columns...)
	if t.Types != nil {
		out.Types = make(map[string]ColumnType, len(t.Types))
		for k, v := range t.Types {
			out.Types[k] = v
		}
	}
	out.Rows = make([][]any, len(t.Rows))
	for i, row := range t.Rows {
		r := make([]any, len(row))
		copy(r, row)
		out.Rows[i] = r
	}
	return out
}

// Concat hängt die Zeilen von other an eine Kopie von t an. Spalten werden
// vereinigt, fehlende Zellen bleiben nil.
func Concat(t, other *Table) *Table {
	out := t.Clone()
	for _, c := range other.Columns {
		if !out.HasColumn(c) {
			out.Columns = append(out.Columns, c)
			for i := range out.Rows {
				out.Rows[i] = append(out.Rows[i], nil)
			}
		}
	}
	for _, src := range other.Rows {
		row := make([]any, len(out.Columns))
		for j, c := range other.Columns {
			row[out.ColumnIndex(c)] = src[j]
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}
