// Package jsonfile liest Quelldateien, die ein JSON-Array von Objekten enthalten.
package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/kaptinlin/jsonrepair"
	"go.uber.org/zap"

	"drug-graph/table"
)

var errNotArray = errors.New("expected a JSON array of objects")

// Extractor liest JSON-Dateien in Rohtabellen.
type Extractor struct {
	Logger *zap.Logger
}

func NewExtractor(logger *zap.Logger) *Extractor {
	return &Extractor{Logger: logger}
}

func (e *Extractor) Name() string      { return "json" }
func (e *Extractor) Extension() string { return ".json" }

// Extract liest die Datei unter path. Syntaktisch kaputtes JSON (z.B. ein
// abschließendes Komma) wird vor dem zweiten Versuch repariert.
func (e *Extractor) Extract(path string) (*table.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	t, err := Parse(data, path)
	if err == nil {
		return t, nil
	}
	if errors.Is(err, errNotArray) {
		return nil, fmt.Errorf("fehler beim Lesen von %s: %w", path, err)
	}

	e.Logger.Warn("JSON-Datei ungültig, versuche Reparatur", zap.String("path", path), zap.Error(err))
	repaired, rerr := jsonrepair.JSONRepair(string(data))
	if rerr != nil {
		return nil, fmt.Errorf("json repair failed for %s: %w (original error: %v)", path, rerr, err)
	}
	t, err = Parse([]byte(repaired), path)
	if err != nil {
		return nil, fmt.Errorf("fehler beim Lesen von %s nach Reparatur: %w", path, err)
	}
	return t, nil
}

// Parse liest ein JSON-Array von Objekten. Spalten erscheinen in der
// Reihenfolge, in der ihre Schlüssel zuerst auftreten; Zahlen bleiben json.Number.
func Parse(data []byte, name string) (*table.Table, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err == io.EOF {
		return table.New(name), nil
	}
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, errNotArray
	}

	var columns []string
	seen := map[string]bool{}
	var objects []map[string]any
	for dec.More() {
		keys, obj, err := decodeObject(dec)
		if err != nil {
			return nil, err
		}
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
		}
		objects = append(objects, obj)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after JSON array")
	}

	t := table.New(name, columns...)
	for _, obj := range objects {
		values := make([]any, len(columns))
		for i, c := range columns {
			values[i] = obj[c]
		}
		t.AppendRow(values...)
	}
	return t, nil
}

func decodeObject(dec *json.Decoder) ([]string, map[string]any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, errNotArray
	}

	var keys []string
	obj := map[string]any{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("unexpected object key %v", keyTok)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, nil, err
		}
		if _, dup := obj[key]; !dup {
			keys = append(keys, key)
		}
		obj[key] = v
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	return keys, obj, nil
}
