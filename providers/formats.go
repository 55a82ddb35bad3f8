package providers

import (
	"go.uber.org/zap"

	"drug-graph/providers/csvfile"
	"drug-graph/providers/jsonfile"
)

// FromFormats erstellt die Provider für die aktivierten Formate.
// Unbekannte Formate werden mit einer Warnung ignoriert.
func FromFormats(formats []string, logger *zap.Logger) []Provider {
	var enabled []Provider
	for _, name := range formats {
		switch name {
		case "csv":
			enabled = append(enabled, csvfile.NewExtractor(logger))
		case "json":
			enabled = append(enabled, jsonfile.NewExtractor(logger))
		default:
			logger.Warn("Unknown format in config", zap.String("format", name))
		}
	}
	return enabled
}
