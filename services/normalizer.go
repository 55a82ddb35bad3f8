package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"go.uber.org/zap"

	"drug-graph/table"
)

const (
	SurrogateKeyColumn = "surrogate_id"
	DateColumn         = "date"
	DateLayout         = "02-01-2006"

	// TruncationDelimiter markiert kaputt kodierte Suffixe (z.B. "\xc3\x28") in den Quelldaten.
	TruncationDelimiter = `\`
)

// Diese Layouts werden vor dateparse probiert. Das erste hält die
// Normalisierung idempotent, sonst würde "05-01-2020" als Monat zuerst gelesen.
var strictDateLayouts = []string{DateLayout, "2006-1-2"}

// RecordNormalizer wendet die fachlichen Regeln auf eine schema-geprüfte Tabelle an.
type RecordNormalizer struct {
	logger *zap.Logger
}

func NewRecordNormalizer(logger *zap.Logger) *RecordNormalizer {
	return &RecordNormalizer{logger: logger}
}

// Normalize vergibt Surrogatschlüssel, normalisiert Daten und kürzt Texte.
// Das Ergebnis ist eine neue Tabelle.
func (n *RecordNormalizer) Normalize(t *table.Table) (*table.Table, error) {
	out := n.AssignSurrogateKeys(t)
	out, err := n.CanonicalizeDates(out)
	if err != nil {
		return nil, err
	}
	out = n.TruncateText(out)
	n.logger.Debug("Tabelle normalisiert", zap.String("table", t.Name), zap.Int("rows", out.Len()))
	return out, nil
}

// AssignSurrogateKeys setzt surrogate_id als erste Spalte mit 0..N-1 in
// Zeilenreihenfolge. Eine vorhandene Spalte wird neu berechnet, nicht verdoppelt.
func (n *RecordNormalizer) AssignSurrogateKeys(t *table.Table) *table.Table {
	out := t.Clone()
	if out.Types == nil {
		out.Types = map[string]table.ColumnType{}
	}
	out.Types[SurrogateKeyColumn] = table.Int

	if idx := out.ColumnIndex(SurrogateKeyColumn); idx >= 0 {
		for i := range out.Rows {
			out.Rows[i][idx] = i
		}
		return out
	}

	out.Columns = append([]string{SurrogateKeyColumn}, out.Columns...)
	for i, row := range out.Rows {
		out.Rows[i] = append([]any{i}, row...)
	}
	return out
}

// CanonicalizeDates schreibt die date-Spalte auf DD-MM-YYYY um.
// Fehlt die Spalte, wird die Tabelle unverändert zurückgegeben.
func (n *RecordNormalizer) CanonicalizeDates(t *table.Table) (*table.Table, error) {
	idx := t.ColumnIndex(DateColumn)
	if idx < 0 {
		return t, nil
	}

	out := t.Clone()
	for i, row := range out.Rows {
		raw, ok := table.Coerce(row[idx], table.String)
		if !ok {
			return nil, &DateParseError{Table: t.Name, Row: i, Value: fmt.Sprint(row[idx])}
		}
		parsed, err := ParseDate(raw.(string))
		if err != nil {
			return nil, &DateParseError{Table: t.Name, Row: i, Value: raw.(string), Err: err}
		}
		out.Rows[i][idx] = parsed.Format(DateLayout)
	}
	if out.Types == nil {
		out.Types = map[string]table.ColumnType{}
	}
	out.Types[DateColumn] = table.String
	return out, nil
}

// ParseDate liest ein Datum in einem der gängigen Formate. Mehrdeutige
// numerische Angaben werden zuerst als Monat/Tag gelesen und nur bei einem
// ungültigen Monat getauscht ("25/05/2020").
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range strictDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return dateparse.ParseIn(value, time.UTC, dateparse.RetryAmbiguousDateWithSwap(true))
}

// TruncateText schneidet jeden Textwert vor dem ersten TruncationDelimiter ab.
// Spalten mit anderem Typ bleiben unberührt.
func (n *RecordNormalizer) TruncateText(t *table.Table) *table.Table {
	out := t.Clone()
	for j, c := range out.Columns {
		typ := out.TypeOf(c)
		if typ != table.String && typ != table.Untyped {
			continue
		}
		for i := range out.Rows {
			s, ok := out.Rows[i][j].(string)
			if !ok {
				continue
			}
			if cut, _, found := strings.Cut(s, TruncationDelimiter); found {
				out.Rows[i][j] = cut
			}
		}
	}
	return out
}
