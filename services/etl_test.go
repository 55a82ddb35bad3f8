package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"drug-graph/config"
	"drug-graph/models"
	"drug-graph/providers"
	"drug-graph/providers/csvfile"
	"drug-graph/providers/jsonfile"
	"drug-graph/table"
)

type recordingSink struct {
	runs  []string
	edges [][]models.GraphEdge
	err   error
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Store(_ context.Context, runID string, edges []models.GraphEdge) error {
	if s.err != nil {
		return s.err
	}
	s.runs = append(s.runs, runID)
	s.edges = append(s.edges, edges)
	return nil
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func testProviders() []providers.Provider {
	return []providers.Provider{csvfile.NewExtractor(zap.NewNop()), jsonfile.NewExtractor(zap.NewNop())}
}

func newTestService(t *testing.T, dir string, sinks ...Sink) *ETLService {
	t.Helper()
	svc, err := NewETLService(&config.Config{DataDir: dir, IfExists: "append"}, zap.NewNop(), testProviders(), sinks)
	require.NoError(t, err)
	return svc
}

func rawTables(drugs, pubs, trials *table.Table) map[string]*table.Table {
	return map[string]*table.Table{TableDrugs: drugs, TablePublications: pubs, TableClinicalTrials: trials}
}

func TestTransformSingleMatch(t *testing.T) {
	drugs := table.New(TableDrugs, "atccode", "drug")
	drugs.AppendRow("B01AC", "ASPIRIN")
	pubs := table.New(TablePublications, "id", "title", "date", "journal")
	pubs.AppendRow("1", "Effects of Aspirin on Pain", "2020-1-5", "J1")
	trials := table.New(TableClinicalTrials, "id", "scientific_title", "date", "journal")

	edges, rows, err := newTestService(t, t.TempDir()).Transform(rawTables(drugs, pubs, trials))
	require.NoError(t, err)

	require.Len(t, edges, 1)
	e := edges[0]
	assert.Equal(t, models.Drug{SurrogateID: 0, ATCCode: "B01AC", Name: "ASPIRIN"}, e.Drug)
	assert.Equal(t, models.KindPublication, e.Article.Kind)
	assert.Equal(t, "Effects of Aspirin on Pain", e.Article.Title)
	assert.Equal(t, "J1", e.Journal)
	assert.Equal(t, "05-01-2020", e.Date)
	assert.Equal(t, models.RelationshipReferencedIn, e.Relationship)
	assert.Equal(t, map[string]int{TableDrugs: 1, TablePublications: 1, TableClinicalTrials: 0}, rows)
}

func TestTransformNoMatches(t *testing.T) {
	drugs := table.New(TableDrugs, "atccode", "drug")
	drugs.AppendRow("X", "X")
	pubs := table.New(TablePublications, "id", "title", "date", "journal")
	pubs.AppendRow("1", "No match here", "2020-01-01", "J")
	trials := table.New(TableClinicalTrials, "id", "scientific_title", "date", "journal")

	edges, _, err := newTestService(t, t.TempDir()).Transform(rawTables(drugs, pubs, trials))
	require.NoError(t, err)
	assert.Empty(t, edges)
}

func TestTransformDeduplicatesBeforeKeying(t *testing.T) {
	drugs := table.New(TableDrugs, "atccode", "drug")
	drugs.AppendRow("A", "ATROPINE")
	drugs.AppendRow("A", "ATROPINE")
	drugs.AppendRow("B", "BETAMETHASONE")
	pubs := table.New(TablePublications, "id", "title", "date", "journal")
	pubs.AppendRow("1", "Betamethasone use", "2020-01-01", "J")
	trials := table.New(TableClinicalTrials, "id", "scientific_title", "date", "journal")

	edges, rows, err := newTestService(t, t.TempDir()).Transform(rawTables(drugs, pubs, trials))
	require.NoError(t, err)
	assert.Equal(t, 2, rows[TableDrugs])
	require.Len(t, edges, 1)
	assert.Equal(t, 1, edges[0].Drug.SurrogateID)
}

func TestTransformErrors(t *testing.T) {
	svc := newTestService(t, t.TempDir())
	pubs := table.New(TablePublications, "id", "title", "date", "journal")
	trials := table.New(TableClinicalTrials, "id", "scientific_title", "date", "journal")

	t.Run("unknown table", func(t *testing.T) {
		raw := rawTables(table.New(TableDrugs, "atccode", "drug"), pubs, trials)
		raw["extra"] = table.New("extra", "x")

		_, _, err := svc.Transform(raw)
		var schemaErr *table.SchemaError
		require.True(t, errors.As(err, &schemaErr), "got %v", err)
		assert.Equal(t, "extra", schemaErr.Table)
	})

	t.Run("missing table", func(t *testing.T) {
		_, _, err := svc.Transform(map[string]*table.Table{TableDrugs: table.New(TableDrugs, "atccode", "drug"), TablePublications: pubs})
		var missing *MissingTableError
		require.True(t, errors.As(err, &missing), "got %v", err)
		assert.Equal(t, TableClinicalTrials, missing.Table)
	})

	t.Run("nil table", func(t *testing.T) {
		raw := rawTables(table.New(TableDrugs, "atccode", "drug"), pubs, nil)

		_, _, err := svc.Transform(raw)
		var missing *MissingTableError
		require.True(t, errors.As(err, &missing), "got %v", err)
		assert.Equal(t, TableClinicalTrials, missing.Table)
	})

	t.Run("bad date", func(t *testing.T) {
		bad := table.New(TablePublications, "id", "title", "date", "journal")
		bad.AppendRow("1", "T", "yesterday-ish", "J")

		_, _, err := svc.Transform(rawTables(table.New(TableDrugs, "atccode", "drug"), bad, trials))
		var dateErr *DateParseError
		require.True(t, errors.As(err, &dateErr), "got %v", err)
	})
}

func TestTransformDoesNotMutateInput(t *testing.T) {
	drugs := table.New(TableDrugs, "atccode", "drug")
	drugs.AppendRow("B01AC", "ASPIRIN")
	pubs := table.New(TablePublications, "id", "title", "date", "journal")
	pubs.AppendRow("1", "Aspirin", "2020-1-5", `J1\x`)
	trials := table.New(TableClinicalTrials, "id", "scientific_title", "date", "journal")
	before := pubs.Clone()

	_, _, err := newTestService(t, t.TempDir()).Transform(rawTables(drugs, pubs, trials))
	require.NoError(t, err)
	assert.Equal(t, before, pubs)
}

func TestExtractorModes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pubmed.csv", "id,title,date,journal\n1,First,2020-01-01,J\n")
	writeFile(t, dir, "pubmed.json", `[{"id": 2, "title": "Second", "date": "2020-01-02", "journal": "J"}]`)
	writeFile(t, dir, "notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	tests := []struct {
		mode   IfExists
		titles []string
	}{
		{IfExistsAppend, []string{"First", "Second"}},
		{IfExistsReplace, []string{"Second"}},
		{IfExistsIgnore, []string{"First"}},
	}
	for _, tc := range tests {
		t.Run(string(tc.mode), func(t *testing.T) {
			data, err := NewExtractor(testProviders(), tc.mode, zap.NewNop()).Extract(context.Background(), dir)
			require.NoError(t, err)
			require.Len(t, data, 1)

			pubs := data[TablePublications]
			require.NotNil(t, pubs)
			var titles []string
			for i := 0; i < pubs.Len(); i++ {
				titles = append(titles, pubs.Text(i, "title"))
			}
			assert.Equal(t, tc.titles, titles)
		})
	}
}

func TestExtractorCancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "drugs.csv", "atccode,drug\nA,X\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewExtractor(testProviders(), IfExistsAppend, zap.NewNop()).Extract(ctx, dir)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTableNameAndMode(t *testing.T) {
	assert.Equal(t, "pubmed", TableName("data/pubmed.csv"))
	assert.Equal(t, "clinical_trials", TableName("/tmp/x/clinical_trials.v2.json"))
	assert.Equal(t, "drugs", TableName("drugs"))

	mode, err := ParseIfExists("")
	require.NoError(t, err)
	assert.Equal(t, IfExistsAppend, mode)
	mode, err = ParseIfExists(" Replace ")
	require.NoError(t, err)
	assert.Equal(t, IfExistsReplace, mode)
	_, err = ParseIfExists("overwrite")
	assert.Error(t, err)
}

func TestRunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "drugs.csv", "atccode,drug\nA04AD,DIPHENHYDRAMINE\nV03AB,ETHANOL\n")
	writeFile(t, dir, "pubmed.csv", "id,title,date,journal\n1,Ethanol and diphenhydramine,01/01/2019,Journal of emergency nursing\n")
	writeFile(t, dir, "pubmed.json", `[
  {"id": 9, "title": "Diphenhydramine dosing", "date": "2020-01-01", "journal": "The journal of pediatrics"},
]`)
	writeFile(t, dir, "clinical_trials.csv", "id,scientific_title,date,journal\nNCT1,Use of Diphenhydramine,1 January 2020,Journal of emergency nursing\\xc3\\x28\n")

	sink := &recordingSink{}
	svc := newTestService(t, dir, sink)
	assert.Nil(t, svc.LastRun())

	result, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 4, result.EdgeCount)
	require.NotNil(t, result.TopJournal)
	assert.Equal(t, JournalRanking{Journal: "Journal of emergency nursing", Count: 3}, *result.TopJournal)
	assert.Equal(t, map[string]int{TableDrugs: 2, TablePublications: 2, TableClinicalTrials: 1}, result.Rows)

	require.Equal(t, []string{result.RunID}, sink.runs)
	assert.Equal(t, result.Edges, sink.edges[0])
	assert.Same(t, result, svc.LastRun())
}

func TestRunSinkFailureKeepsPreviousResult(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "drugs.csv", "atccode,drug\nA,X\n")
	writeFile(t, dir, "pubmed.csv", "id,title,date,journal\n")
	writeFile(t, dir, "clinical_trials.csv", "id,scientific_title,date,journal\n")

	sink := &recordingSink{err: errors.New("disk full")}
	svc := newTestService(t, dir, sink)
	_, err := svc.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load (recording)")
	assert.Nil(t, svc.LastRun())
}
