package table

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var drugSchema = Schema{"atccode": String, "drug": String}

func TestEnforceCastsAndDedupes(t *testing.T) {
	raw := New("drugs", "atccode", "drug")
	raw.AppendRow("A04AD", "DIPHENHYDRAMINE")
	raw.AppendRow("S03AA", "TETRACYCLINE")
	raw.AppendRow("A04AD", "DIPHENHYDRAMINE")
	raw.AppendRow("V03AB", "ETHANOL")

	out, err := Enforce(raw, drugSchema)
	require.NoError(t, err)

	require.Equal(t, 3, out.Len())
	assert.Equal(t, "DIPHENHYDRAMINE", out.Text(0, "drug"))
	assert.Equal(t, "TETRACYCLINE", out.Text(1, "drug"))
	assert.Equal(t, "ETHANOL", out.Text(2, "drug"))
	assert.Equal(t, String, out.TypeOf("drug"))

	// Eingabe bleibt unverändert.
	assert.Equal(t, 4, raw.Len())
	assert.Nil(t, raw.Types)
}

func TestEnforceNormalizesValuesToText(t *testing.T) {
	raw := New("pubmed", "id", "title")
	raw.AppendRow(float64(1), "A")
	raw.AppendRow(json.Number("2"), "B")
	raw.AppendRow(nil, "C")
	raw.AppendRow("1", "A")

	out, err := Enforce(raw, Schema{"id": String, "title": String})
	require.NoError(t, err)

	// float64(1) und "1" sind nach dem Cast identisch.
	require.Equal(t, 3, out.Len())
	assert.Equal(t, "1", out.Text(0, "id"))
	assert.Equal(t, "2", out.Text(1, "id"))
	assert.Equal(t, "", out.Text(2, "id"))
}

func TestEnforceUnknownColumn(t *testing.T) {
	raw := New("drugs", "atccode", "drug", "price")
	raw.AppendRow("A", "B", "3")

	_, err := Enforce(raw, drugSchema)
	require.Error(t, err)

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "drugs", schemaErr.Table)
	assert.Equal(t, "price", schemaErr.Column)
}

func TestEnforceArbitraryTargetTypes(t *testing.T) {
	raw := New("doses", "mg", "ratio", "oral")
	raw.AppendRow("10", "0.5", "true")
	raw.AppendRow(float64(20), float64(1), false)

	out, err := Enforce(raw, Schema{"mg": Int, "ratio": Float, "oral": Bool})
	require.NoError(t, err)

	v, _ := out.Value(0, "mg")
	assert.Equal(t, 10, v)
	v, _ = out.Value(1, "ratio")
	assert.Equal(t, 1.0, v)
	v, _ = out.Value(0, "oral")
	assert.Equal(t, true, v)
}

func TestEnforceCoercionFailure(t *testing.T) {
	tests := []struct {
		name  string
		typ   ColumnType
		value any
	}{
		{"int from text", Int, "ten"},
		{"int from fraction", Int, 1.5},
		{"float from text", Float, "n/a"},
		{"bool from number", Bool, float64(1)},
		{"string from object", String, map[string]any{"a": 1}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			raw := New("t", "c")
			raw.AppendRow(tc.value)

			_, err := Enforce(raw, Schema{"c": tc.typ})
			var coerceErr *TypeCoercionError
			require.True(t, errors.As(err, &coerceErr), "got %v", err)
			assert.Equal(t, "c", coerceErr.Column)
			assert.Equal(t, 0, coerceErr.Row)
			assert.Equal(t, tc.value, coerceErr.Value)
		})
	}
}

func TestEnforceKeepsRowsWithSeparatorBytes(t *testing.T) {
	raw := New("drugs", "atccode", "drug")
	raw.AppendRow("a\x1fstring=b", "c")
	raw.AppendRow("a", "b\x1fstring=c")

	out, err := Enforce(raw, drugSchema)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Len())
}

func TestConcatUnionsColumns(t *testing.T) {
	a := New("pubmed", "id", "title")
	a.AppendRow("1", "A")
	b := New("pubmed", "title", "journal")
	b.AppendRow("B", "J")

	out := Concat(a, b)
	assert.Equal(t, []string{"id", "title", "journal"}, out.Columns)
	require.Equal(t, 2, out.Len())
	assert.Equal(t, "B", out.Text(1, "title"))
	v, _ := out.Value(0, "journal")
	assert.Nil(t, v)
	assert.Equal(t, 1, a.Len())
}
