package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"drug-graph/config"
	"drug-graph/models"
	"drug-graph/providers"
	"drug-graph/table"
)

// Sink nimmt die fertige Kantenliste eines Laufs entgegen (Datei, Datenbank, S3).
type Sink interface {
	Name() string
	Store(ctx context.Context, runID string, edges []models.GraphEdge) error
}

// RunResult fasst einen Lauf zusammen.
type RunResult struct {
	RunID      string             `json:"run_id"`
	StartedAt  time.Time          `json:"started_at"`
	Duration   time.Duration      `json:"duration"`
	Rows       map[string]int     `json:"rows"`
	EdgeCount  int                `json:"edge_count"`
	TopJournal *JournalRanking    `json:"top_journal,omitempty"`
	Edges      []models.GraphEdge `json:"-"`
}

// ETLService kümmert sich um die Orchestrierung von Extract, Transform und Load.
type ETLService struct {
	Config     *config.Config
	Logger     *zap.Logger
	Extractor  *Extractor
	Schemas    map[string]table.Schema
	Normalizer *RecordNormalizer
	Matcher    *Matcher
	Assembler  *GraphAssembler
	Sinks      []Sink

	runMu  sync.Mutex // Cron- und HTTP-Läufe dürfen sich nicht überlappen
	lastMu sync.RWMutex
	last   *RunResult
}

// NewETLService erstellt eine neue Instanz des ETLService.
func NewETLService(cfg *config.Config, logger *zap.Logger, provs []providers.Provider, sinks []Sink) (*ETLService, error) {
	mode, err := ParseIfExists(cfg.IfExists)
	if err != nil {
		return nil, err
	}
	return &ETLService{
		Config:     cfg,
		Logger:     logger,
		Extractor:  NewExtractor(provs, mode, logger),
		Schemas:    DefaultSchemas,
		Normalizer: NewRecordNormalizer(logger),
		Matcher:    NewMatcher(MatcherOptions{SkipEmptyNames: cfg.SkipEmptyDrugNames}),
		Assembler:  NewGraphAssembler(logger),
		Sinks:      sinks,
	}, nil
}

// Transform setzt Schemas durch, normalisiert jede Tabelle und baut die
// Kantenliste. Die Eingabetabellen werden nicht verändert.
func (s *ETLService) Transform(raw map[string]*table.Table) ([]models.GraphEdge, map[string]int, error) {
	s.Logger.Info("Transforming data...", zap.Int("tables", len(raw)))

	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	normalized := make(map[string]*table.Table, len(raw))
	rows := make(map[string]int, len(raw))
	for _, name := range names {
		log := s.Logger.With(zap.String("table", name))
		if raw[name] == nil {
			// Fehlt eine Pflichttabelle, meldet NewCatalog einen MissingTableError.
			log.Warn("Tabelle ohne Inhalt übersprungen")
			continue
		}

		schema, ok := s.Schemas[name]
		if !ok {
			return nil, nil, &table.SchemaError{Table: name}
		}
		enforced, err := table.Enforce(raw[name], schema)
		if err != nil {
			return nil, nil, err
		}
		t, err := s.Normalizer.Normalize(enforced)
		if err != nil {
			return nil, nil, err
		}
		normalized[name] = t
		rows[name] = t.Len()
		log.Info("Tabelle transformiert", zap.Int("raw_rows", raw[name].Len()), zap.Int("rows", t.Len()))
	}

	catalog, err := NewCatalog(normalized)
	if err != nil {
		return nil, nil, err
	}
	matches := s.Matcher.Match(catalog)
	edges, err := s.Assembler.Assemble(catalog, matches)
	if err != nil {
		return nil, nil, err
	}

	s.Logger.Info("Data transformed successfully.", zap.Int("edges", len(edges)))
	return edges, rows, nil
}

// Run führt einen vollständigen Lauf über Config.DataDir aus und schreibt das
// Ergebnis in alle Senken.
func (s *ETLService) Run(ctx context.Context) (*RunResult, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	result := &RunResult{RunID: uuid.NewString(), StartedAt: time.Now()}
	log := s.Logger.With(zap.String("run_id", result.RunID))
	log.Info("Starte ETL-Lauf", zap.String("data_dir", s.Config.DataDir))

	raw, err := s.Extractor.Extract(ctx, s.Config.DataDir)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	edges, rows, err := s.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("transform: %w", err)
	}

	log.Info("Loading data...", zap.Int("sinks", len(s.Sinks)))
	for _, sink := range s.Sinks {
		if err := sink.Store(ctx, result.RunID, edges); err != nil {
			return nil, fmt.Errorf("load (%s): %w", sink.Name(), err)
		}
		log.Info("Kanten gespeichert", zap.String("sink", sink.Name()), zap.Int("edges", len(edges)))
	}

	result.Rows = rows
	result.Edges = edges
	result.EdgeCount = len(edges)
	if top, ok := TopJournal(edges); ok {
		result.TopJournal = &top
	}
	result.Duration = time.Since(result.StartedAt)

	s.lastMu.Lock()
	s.last = result
	s.lastMu.Unlock()

	log.Info("ETL-Lauf abgeschlossen", zap.Int("edges", result.EdgeCount), zap.Duration("duration", result.Duration))
	return result, nil
}

// LastRun gibt das Ergebnis des letzten erfolgreichen Laufs zurück, nil wenn es keinen gab.
func (s *ETLService) LastRun() *RunResult {
	s.lastMu.RLock()
	defer s.lastMu.RUnlock()
	return s.last
}
