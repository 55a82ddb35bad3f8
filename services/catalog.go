package services

import (
	"drug-graph/models"
	"drug-graph/table"
)

// Namen der Pflichttabellen, wie sie aus den Dateinamen der Quellen entstehen.
const (
	TableDrugs          = "drugs"
	TablePublications   = "pubmed"
	TableClinicalTrials = "clinical_trials"
)

// DefaultSchemas deklariert die Spaltentypen je Tabelle.
var DefaultSchemas = map[string]table.Schema{
	TableDrugs: {
		"atccode": table.String,
		"drug":    table.String,
	},
	TablePublications: {
		"id":      table.String,
		"title":   table.String,
		"date":    table.String,
		"journal": table.String,
	},
	TableClinicalTrials: {
		"id":               table.String,
		"scientific_title": table.String,
		"date":             table.String,
		"journal":          table.String,
	},
}

// Catalog hält die normalisierten Datensätze eines Laufs in Quellreihenfolge.
type Catalog struct {
	Drugs        []models.Drug
	Publications []models.Article
	Trials       []models.Article
}

// NewCatalog liest Wirkstoffe und Artikel aus den normalisierten Tabellen.
func NewCatalog(tables map[string]*table.Table) (*Catalog, error) {
	for _, name := range []string{TableDrugs, TablePublications, TableClinicalTrials} {
		if tables[name] == nil {
			return nil, &MissingTableError{Table: name}
		}
	}

	drugs, err := decodeDrugs(tables[TableDrugs])
	if err != nil {
		return nil, err
	}
	pubs, err := decodeArticles(tables[TablePublications], models.KindPublication)
	if err != nil {
		return nil, err
	}
	trials, err := decodeArticles(tables[TableClinicalTrials], models.KindTrial)
	if err != nil {
		return nil, err
	}
	return &Catalog{Drugs: drugs, Publications: pubs, Trials: trials}, nil
}

// Articles gibt die Artikel einer Quelle zurück.
func (c *Catalog) Articles(kind models.ArticleKind) []models.Article {
	if kind == models.KindTrial {
		return c.Trials
	}
	return c.Publications
}

func decodeDrugs(t *table.Table) ([]models.Drug, error) {
	if !t.HasColumn("drug") {
		return nil, &MissingTableError{Table: t.Name, Column: "drug"}
	}
	drugs := make([]models.Drug, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		drugs = append(drugs, models.Drug{
			SurrogateID: surrogateID(t, i),
			ATCCode:     t.Text(i, "atccode"),
			Name:        t.Text(i, "drug"),
		})
	}
	return drugs, nil
}

func decodeArticles(t *table.Table, kind models.ArticleKind) ([]models.Article, error) {
	titleCol := kind.TitleColumn()
	if !t.HasColumn(titleCol) && t.Len() > 0 {
		return nil, &MissingTableError{Table: t.Name, Column: titleCol}
	}
	hasDate := t.HasColumn(DateColumn)
	articles := make([]models.Article, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		articles = append(articles, models.Article{
			Kind:        kind,
			SurrogateID: surrogateID(t, i),
			ID:          t.Text(i, "id"),
			Title:       t.Text(i, titleCol),
			Date:        t.Text(i, DateColumn),
			HasDate:     hasDate,
			Journal:     t.Text(i, "journal"),
		})
	}
	return articles, nil
}

func surrogateID(t *table.Table, row int) int {
	v, _ := t.Value(row, SurrogateKeyColumn)
	id, _ := v.(int)
	return id
}
