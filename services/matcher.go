package services

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"drug-graph/models"
)

// Match ist ein Treffer: der Wirkstoffname kommt im Titel des Artikels vor.
type Match struct {
	Drug   string
	Title  string
	Source models.ArticleKind
}

// MatcherOptions steuern Sonderfälle der Titelsuche.
type MatcherOptions struct {
	// SkipEmptyNames verhindert, dass ein leerer Wirkstoffname jeden Artikel trifft.
	SkipEmptyNames bool
}

// Matcher verbindet Wirkstoffe und Artikel per Teilstring-Suche ohne Groß-/Kleinschreibung.
type Matcher struct {
	opts MatcherOptions
}

func NewMatcher(opts MatcherOptions) *Matcher {
	return &Matcher{opts: opts}
}

// Match prüft jedes Paar aus Wirkstoff und Artikel (Publikationen vor
// Studien, jeweils in Quellreihenfolge). Die Reihenfolge der Treffer ist
// Wirkstoff-major, Artikel-minor.
func (m *Matcher) Match(c *Catalog) []Match {
	lower := cases.Lower(language.Und)

	type candidate struct {
		title  string
		folded string
		source models.ArticleKind
	}
	articles := make([]candidate, 0, len(c.Publications)+len(c.Trials))
	for _, kind := range []models.ArticleKind{models.KindPublication, models.KindTrial} {
		for _, a := range c.Articles(kind) {
			articles = append(articles, candidate{title: a.Title, folded: lower.String(a.Title), source: kind})
		}
	}

	var matches []Match
	for _, d := range c.Drugs {
		if d.Name == "" && m.opts.SkipEmptyNames {
			continue
		}
		needle := lower.String(d.Name)
		for _, a := range articles {
			if strings.Contains(a.folded, needle) {
				matches = append(matches, Match{Drug: d.Name, Title: a.title, Source: a.source})
			}
		}
	}
	return matches
}
