package services

import (
	"go.uber.org/zap"

	"drug-graph/models"
)

// GraphAssembler baut aus Treffern die flache Kantenliste.
type GraphAssembler struct {
	logger *zap.Logger
}

func NewGraphAssembler(logger *zap.Logger) *GraphAssembler {
	return &GraphAssembler{logger: logger}
}

// Assemble erzeugt je Treffer eine Kante in Trefferreihenfolge. Schlägt eine
// Auflösung fehl, gibt es kein Teilergebnis.
func (g *GraphAssembler) Assemble(c *Catalog, matches []Match) ([]models.GraphEdge, error) {
	edges := make([]models.GraphEdge, 0, len(matches))
	for _, m := range matches {
		drug, err := c.LookupDrug(m.Drug)
		if err != nil {
			return nil, err
		}
		article, err := c.LookupArticle(m.Title, ArticleDetailOrder)
		if err != nil {
			return nil, err
		}
		provenance, err := c.LookupArticle(m.Title, ArticleProvenanceOrder)
		if err != nil {
			return nil, err
		}

		edge := models.GraphEdge{
			Drug:         drug,
			Article:      article,
			Journal:      provenance.Journal,
			Relationship: models.RelationshipReferencedIn,
		}
		if provenance.HasDate {
			edge.Date = provenance.Date
		}
		edges = append(edges, edge)
	}
	g.logger.Debug("Graph zusammengesetzt", zap.Int("matches", len(matches)), zap.Int("edges", len(edges)))
	return edges, nil
}
