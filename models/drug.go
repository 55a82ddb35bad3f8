package models

// Drug repräsentiert einen Wirkstoff aus der drugs-Tabelle nach der Normalisierung.
type Drug struct {
	SurrogateID int    `json:"surrogate_id"`
	ATCCode     string `json:"atccode"`
	Name        string `json:"drug"` // z.B. "DIPHENHYDRAMINE"
}
