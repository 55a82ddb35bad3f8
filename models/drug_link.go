package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// DrugLink ist die persistierte Form einer GraphEdge, eine Zeile pro Kante und Lauf.
type DrugLink struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	RunID    string `json:"run_id" gorm:"index;size:64;not null"`
	Position int    `json:"position"` // Reihenfolge innerhalb des Laufs

	DrugName string `json:"drug" gorm:"index"`
	ATCCode  string `json:"atccode"`

	ArticleSource string `json:"article_source" gorm:"index;size:32"`
	ArticleID     string `json:"article_id"`
	ArticleTitle  string `json:"article_title" gorm:"type:text"`

	Journal      string `json:"journal" gorm:"index"`
	Date         string `json:"date,omitempty"`
	Relationship string `json:"relationship"`

	// Evidence: die vollständige Kante als JSON
	Evidence datatypes.JSON `json:"evidence" gorm:"type:jsonb"`
}

func (DrugLink) TableName() string { return "drug_links" }

// NewDrugLink baut die Datenbankzeile für eine Kante.
func NewDrugLink(runID string, position int, edge GraphEdge) (DrugLink, error) {
	evidence, err := json.Marshal(edge)
	if err != nil {
		return DrugLink{}, err
	}
	return DrugLink{
		RunID:         runID,
		Position:      position,
		DrugName:      edge.Drug.Name,
		ATCCode:       edge.Drug.ATCCode,
		ArticleSource: string(edge.Article.Kind),
		ArticleID:     edge.Article.ID,
		ArticleTitle:  edge.Article.Title,
		Journal:       edge.Journal,
		Date:          edge.Date,
		Relationship:  edge.Relationship,
		Evidence:      datatypes.JSON(evidence),
	}, nil
}
