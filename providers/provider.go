package providers

import "drug-graph/table"

// Provider ist das Interface, das jedes Quellformat (z.B. CSV, JSON) implementieren muss.
type Provider interface {
	// Extract liest eine Datei und gibt ihren Inhalt als ungetypte Rohtabelle zurück.
	Extract(path string) (*table.Table, error)

	// Name gibt den eindeutigen Namen des Formats zurück (z.B. "csv").
	Name() string

	// Extension ist die Dateiendung, für die der Provider zuständig ist (z.B. ".csv").
	Extension() string
}
