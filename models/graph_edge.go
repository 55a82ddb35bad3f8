package models

// RelationshipReferencedIn ist das einzige Kantenlabel des Graphen.
const RelationshipReferencedIn = "REFERENCED IN"

// GraphEdge modelliert eine Kante: Wirkstoff wird in Artikel erwähnt.
type GraphEdge struct {
	Drug         Drug    `json:"drug"`
	Article      Article `json:"article"`
	Journal      string  `json:"journal"`
	Relationship string  `json:"relationship"`
	Date         string  `json:"date,omitempty"`
}
