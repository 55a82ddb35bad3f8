package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"drug-graph/providers"
	"drug-graph/table"
)

// IfExists legt fest, was passiert, wenn zwei Dateien denselben Tabellennamen ergeben.
type IfExists string

const (
	IfExistsAppend  IfExists = "append"
	IfExistsReplace IfExists = "replace"
	IfExistsIgnore  IfExists = "ignore"
)

// ParseIfExists prüft den konfigurierten Modus.
func ParseIfExists(s string) (IfExists, error) {
	switch m := IfExists(strings.ToLower(strings.TrimSpace(s))); m {
	case IfExistsAppend, IfExistsReplace, IfExistsIgnore:
		return m, nil
	case "":
		return IfExistsAppend, nil
	default:
		return "", fmt.Errorf("invalid if-exists mode %q (want append, replace or ignore)", s)
	}
}

// TableName leitet den Tabellennamen aus einem Dateipfad ab:
// letzter Pfadbestandteil, alles vor dem ersten Punkt.
func TableName(path string) string {
	base := path
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	name, _, _ := strings.Cut(base, ".")
	return name
}

// Extractor liest alle unterstützten Dateien eines Ordners in Rohtabellen.
type Extractor struct {
	Providers []providers.Provider
	Mode      IfExists
	Logger    *zap.Logger
}

func NewExtractor(provs []providers.Provider, mode IfExists, logger *zap.Logger) *Extractor {
	return &Extractor{Providers: provs, Mode: mode, Logger: logger}
}

// Extract liest den Ordner in lexikalischer Dateireihenfolge. Dateien ohne
// passenden Provider werden mit einer Warnung übersprungen.
func (e *Extractor) Extract(ctx context.Context, folder string) (map[string]*table.Table, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("fehler beim Lesen des Datenordners: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	log := e.Logger.With(zap.String("folder", folder), zap.String("if_exists", string(e.Mode)))
	log.Info("Extracting data from files...", zap.Int("files", len(entries)))

	data := make(map[string]*table.Table)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() {
			continue
		}

		provider := e.providerFor(entry.Name())
		if provider == nil {
			log.Warn("File format is not supported. Ignoring.", zap.String("file", entry.Name()))
			continue
		}

		path := filepath.Join(folder, entry.Name())
		t, err := provider.Extract(path)
		if err != nil {
			return nil, err
		}
		name := TableName(path)
		t.Name = name
		e.merge(data, t)
		log.Debug("Datei extrahiert", zap.String("file", entry.Name()), zap.String("table", name), zap.String("provider", provider.Name()))
	}

	log.Info("Data extracted successfully.", zap.Int("tables", len(data)))
	return data, nil
}

func (e *Extractor) merge(data map[string]*table.Table, t *table.Table) {
	existing, ok := data[t.Name]
	if !ok {
		data[t.Name] = t
		return
	}
	switch e.Mode {
	case IfExistsReplace:
		data[t.Name] = t
	case IfExistsIgnore:
	default:
		data[t.Name] = table.Concat(existing, t)
	}
}

func (e *Extractor) providerFor(file string) providers.Provider {
	ext := strings.ToLower(filepath.Ext(file))
	for _, p := range e.Providers {
		if p.Extension() == ext {
			return p
		}
	}
	return nil
}
