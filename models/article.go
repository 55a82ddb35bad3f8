package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ArticleKind unterscheidet die beiden Artikel-Quellen.
type ArticleKind string

const (
	KindPublication ArticleKind = "pubmed"
	KindTrial       ArticleKind = "clinical_trials"
)

// TitleColumn gibt den Spaltennamen zurück, unter dem die Quelle ihren Titel führt.
func (k ArticleKind) TitleColumn() string {
	if k == KindTrial {
		return "scientific_title"
	}
	return "title"
}

// Article repräsentiert eine Publikation (PubMed) oder eine klinische Studie.
// Beide Varianten teilen dieselben Felder; Kind ist der Diskriminator.
type Article struct {
	Kind        ArticleKind
	SurrogateID int
	ID          string
	Title       string
	Date        string
	HasDate     bool // false, wenn die Quelle keine date-Spalte hatte
	Journal     string
}

type publicationJSON struct {
	SurrogateID int    `json:"surrogate_id"`
	ID          string `json:"id"`
	Title       string `json:"title"`
	Date        string `json:"date,omitempty"`
	Journal     string `json:"journal"`
}

type trialJSON struct {
	SurrogateID     int    `json:"surrogate_id"`
	ID              string `json:"id"`
	ScientificTitle string `json:"scientific_title"`
	Date            string `json:"date,omitempty"`
	Journal         string `json:"journal"`
}

// MarshalJSON serialisiert den Artikel mit den Feldnamen seiner Quelle.
func (a Article) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case KindPublication:
		return marshalUnescaped(publicationJSON{SurrogateID: a.SurrogateID, ID: a.ID, Title: a.Title, Date: a.Date, Journal: a.Journal})
	case KindTrial:
		return marshalUnescaped(trialJSON{SurrogateID: a.SurrogateID, ID: a.ID, ScientificTitle: a.Title, Date: a.Date, Journal: a.Journal})
	default:
		return nil, fmt.Errorf("unknown article kind %q", a.Kind)
	}
}

// marshalUnescaped verhält sich wie json.Marshal, lässt aber <, > und & stehen.
func marshalUnescaped(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalJSON erkennt die Variante am Titel-Feld.
func (a *Article) UnmarshalJSON(data []byte) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if _, ok := probe["scientific_title"]; ok {
		var t trialJSON
		if err := json.Unmarshal(data, &t); err != nil {
			return err
		}
		*a = Article{Kind: KindTrial, SurrogateID: t.SurrogateID, ID: t.ID, Title: t.ScientificTitle, Date: t.Date, Journal: t.Journal}
	} else {
		var p publicationJSON
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		*a = Article{Kind: KindPublication, SurrogateID: p.SurrogateID, ID: p.ID, Title: p.Title, Date: p.Date, Journal: p.Journal}
	}
	_, a.HasDate = probe["date"]
	return nil
}
