package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"drug-graph/models"
)

// EncodeEdges serialisiert die Kantenliste als JSON-Array mit vier Leerzeichen
// Einrückung. Nicht-ASCII-Zeichen und HTML bleiben unverändert.
func EncodeEdges(edges []models.GraphEdge) ([]byte, error) {
	if edges == nil {
		edges = []models.GraphEdge{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(edges); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// JSONFileSink schreibt die Kantenliste in eine lokale Datei (Standard: data.json).
type JSONFileSink struct {
	Path   string
	Logger *zap.Logger
}

func NewJSONFileSink(path string, logger *zap.Logger) *JSONFileSink {
	return &JSONFileSink{Path: path, Logger: logger}
}

func (s *JSONFileSink) Name() string { return "json-file" }

// Store überschreibt die Zieldatei atomar über eine temporäre Datei.
func (s *JSONFileSink) Store(ctx context.Context, runID string, edges []models.GraphEdge) error {
	data, err := EncodeEdges(edges)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.Path)
	tmp, err := os.CreateTemp(dir, ".graph-*.json")
	if err != nil {
		return fmt.Errorf("temporäre Datei konnte nicht erstellt werden: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return err
	}

	s.Logger.Info("Data loaded to JSON file successfully.", zap.String("path", s.Path), zap.String("run_id", runID))
	return nil
}

// ReadEdges liest eine zuvor geschriebene Kantenliste.
func ReadEdges(path string) ([]models.GraphEdge, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var edges []models.GraphEdge
	if err := json.Unmarshal(data, &edges); err != nil {
		return nil, err
	}
	return edges, nil
}
