package jsonfile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseKeepsKeyOrder(t *testing.T) {
	data := []byte(`[
  {"title": "A", "id": 1, "journal": "J"},
  {"id": "2", "date": "2020-01-01", "title": "B"}
]`)

	tbl, err := Parse(data, "pubmed")
	require.NoError(t, err)

	assert.Equal(t, []string{"title", "id", "journal", "date"}, tbl.Columns)
	require.Equal(t, 2, tbl.Len())

	id, _ := tbl.Value(0, "id")
	assert.Equal(t, json.Number("1"), id)
	date, _ := tbl.Value(0, "date")
	assert.Nil(t, date)
	assert.Equal(t, "B", tbl.Text(1, "title"))
}

func TestParseRejectsNonArray(t *testing.T) {
	_, err := Parse([]byte(`{"id": 1}`), "pubmed")
	assert.ErrorIs(t, err, errNotArray)

	_, err = Parse([]byte(`[1, 2]`), "pubmed")
	assert.ErrorIs(t, err, errNotArray)

	_, err = Parse([]byte(`[] []`), "pubmed")
	assert.Error(t, err)
}

func TestExtractRepairsTrailingComma(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pubmed.json")
	content := `[
  {"id": 9, "title": "Gold nanoparticles synthesized", "date": "01/03/2020", "journal": "Journal of food protection"},
]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	tbl, err := NewExtractor(zap.NewNop()).Extract(path)
	require.NoError(t, err)
	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, "Journal of food protection", tbl.Text(0, "journal"))
}

func TestExtractEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	tbl, err := NewExtractor(zap.NewNop()).Extract(path)
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Len())
}
