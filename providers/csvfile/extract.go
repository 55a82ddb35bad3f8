// Package csvfile liest Quelldateien im CSV-Format mit Kopfzeile.
package csvfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"drug-graph/table"
)

// Extractor liest CSV-Dateien in Rohtabellen.
type Extractor struct {
	Logger *zap.Logger
}

func NewExtractor(logger *zap.Logger) *Extractor {
	return &Extractor{Logger: logger}
}

func (e *Extractor) Name() string      { return "csv" }
func (e *Extractor) Extension() string { return ".csv" }

// Extract liest die Datei unter path. Die erste Zeile liefert die Spaltennamen,
// leere Zeilen werden übersprungen.
func (e *Extractor) Extract(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := Parse(f, path)
	if err != nil {
		return nil, fmt.Errorf("fehler beim Lesen von %s: %w", path, err)
	}
	e.Logger.Debug("CSV-Datei gelesen", zap.String("path", path), zap.Int("rows", t.Len()))
	return t, nil
}

// Parse liest CSV aus r. name wird nur für die Tabellenbenennung verwendet.
func Parse(r io.Reader, name string) (*table.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return table.New(name), nil
	}
	if err != nil {
		return nil, err
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	t := table.New(name, header...)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if isBlank(record) {
			continue
		}
		if len(record) > len(header) {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("%s line %d: expected %d fields, saw %d", name, line, len(header), len(record))
		}
		values := make([]any, len(record))
		for i, v := range record {
			values[i] = v
		}
		t.AppendRow(values...)
	}
	return t, nil
}

func isBlank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
