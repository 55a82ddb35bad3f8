package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"drug-graph/config"
	"drug-graph/services"
)

// Sinks bündelt die aktiven Senken eines Prozesses. Postgres ist nil, wenn
// keine Datenbank konfiguriert ist.
type Sinks struct {
	All      []services.Sink
	Postgres *PostgresSink
}

// NewSinks baut die Senken aus der Konfiguration: die JSON-Datei immer,
// Postgres und S3 nur wenn konfiguriert.
func NewSinks(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Sinks, error) {
	out := &Sinks{All: []services.Sink{NewJSONFileSink(cfg.OutputPath, logger)}}

	if cfg.DatabaseEnabled() {
		db, err := OpenDB(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		logger.Info("Successfully connected to database.", zap.String("host", cfg.DBHost))
		out.Postgres = NewPostgresSink(db, logger)
		out.All = append(out.All, out.Postgres)
	}

	if cfg.S3Enabled() {
		client, err := NewS3Client(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("S3 client creation failed: %w", err)
		}
		out.All = append(out.All, NewS3Sink(client, cfg, logger))
	}

	names := make([]string, 0, len(out.All))
	for _, s := range out.All {
		names = append(names, s.Name())
	}
	logger.Info("Active sinks loaded", zap.Strings("sinks", names))
	return out, nil
}
