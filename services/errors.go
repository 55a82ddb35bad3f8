package services

import "fmt"

// DateParseError meldet einen Wert in einer date-Spalte, der kein erkennbares Datum ist.
type DateParseError struct {
	Table string
	Row   int
	Value string
	Err   error
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("date parse error: table %q row %d: %q is not a recognizable date", e.Table, e.Row, e.Value)
}

func (e *DateParseError) Unwrap() error { return e.Err }

// MissingTableError meldet eine fehlende Pflichttabelle (oder eine fehlende
// Pflichtspalte einer vorhandenen Tabelle).
type MissingTableError struct {
	Table  string
	Column string
}

func (e *MissingTableError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("missing table error: table %q has no column %q", e.Table, e.Column)
	}
	return fmt.Sprintf("missing table error: required table %q is absent", e.Table)
}

// LookupError meldet einen Treffer, dessen Wirkstoff oder Artikel beim Aufbau
// der Kante nicht wiedergefunden wird. Das deutet auf inkonsistente Zwischendaten hin.
type LookupError struct {
	Entity string // "drug" oder "article"
	Key    string
	Tried  []string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("lookup error: %s %q not found (searched %v)", e.Entity, e.Key, e.Tried)
}
