package services

import (
	"drug-graph/models"
)

// ArticlePolicy ist die Reihenfolge, in der die Quellen bei einer
// Titelsuche befragt werden. Der erste Treffer gewinnt.
type ArticlePolicy []models.ArticleKind

var (
	// ArticleDetailOrder löst den Artikel-Snapshot einer Kante auf.
	ArticleDetailOrder = ArticlePolicy{models.KindTrial, models.KindPublication}
	// ArticleProvenanceOrder löst Journal und Datum einer Kante auf.
	ArticleProvenanceOrder = ArticlePolicy{models.KindPublication, models.KindTrial}
)

// articleStrategy sucht einen Artikel per exaktem Titel in genau einer Quelle.
type articleStrategy struct {
	source models.ArticleKind
	find   func(title string) (models.Article, bool)
}

func (c *Catalog) strategies(policy ArticlePolicy) []articleStrategy {
	out := make([]articleStrategy, 0, len(policy))
	for _, kind := range policy {
		articles := c.Articles(kind)
		out = append(out, articleStrategy{
			source: kind,
			find: func(title string) (models.Article, bool) {
				for _, a := range articles {
					if a.Title == title {
						return a, true
					}
				}
				return models.Article{}, false
			},
		})
	}
	return out
}

// LookupArticle gibt die erste Zeile (in Quellreihenfolge) zurück, deren
// Titel exakt title ist, wobei die Quellen in der Reihenfolge von policy
// durchsucht werden.
func (c *Catalog) LookupArticle(title string, policy ArticlePolicy) (models.Article, error) {
	tried := make([]string, 0, len(policy))
	for _, s := range c.strategies(policy) {
		if a, ok := s.find(title); ok {
			return a, nil
		}
		tried = append(tried, string(s.source))
	}
	return models.Article{}, &LookupError{Entity: "article", Key: title, Tried: tried}
}

// LookupDrug gibt den ersten Wirkstoff mit exakt diesem Namen zurück.
func (c *Catalog) LookupDrug(name string) (models.Drug, error) {
	for _, d := range c.Drugs {
		if d.Name == name {
			return d, nil
		}
	}
	return models.Drug{}, &LookupError{Entity: "drug", Key: name, Tried: []string{TableDrugs}}
}
