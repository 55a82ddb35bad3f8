package storage

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"drug-graph/config"
	"drug-graph/models"
)

// OpenDB verbindet sich mit Postgres und migriert die drug_links-Tabelle.
func OpenDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&models.DrugLink{}); err != nil {
		return nil, fmt.Errorf("auto-migration failed: %w", err)
	}
	return db, nil
}

// PostgresSink speichert jede Kante eines Laufs als DrugLink.
type PostgresSink struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

func NewPostgresSink(db *gorm.DB, logger *zap.Logger) *PostgresSink {
	return &PostgresSink{DB: db, Logger: logger}
}

func (s *PostgresSink) Name() string { return "postgres" }

// Store schreibt alle Kanten in einer Transaktion.
func (s *PostgresSink) Store(ctx context.Context, runID string, edges []models.GraphEdge) error {
	links := make([]models.DrugLink, 0, len(edges))
	for i, e := range edges {
		link, err := models.NewDrugLink(runID, i, e)
		if err != nil {
			return err
		}
		links = append(links, link)
	}
	if len(links) == 0 {
		s.Logger.Info("Keine Kanten zu speichern", zap.String("run_id", runID))
		return nil
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&links, 500).Error
	})
}

// LinkFilter schränkt die Abfrage der gespeicherten Kanten ein.
type LinkFilter struct {
	Drug    string
	Journal string
	Limit   int
}

// LatestLinks gibt die Kanten des jüngsten gespeicherten Laufs zurück.
func (s *PostgresSink) LatestLinks(ctx context.Context, f LinkFilter) ([]models.DrugLink, error) {
	db := s.DB.WithContext(ctx)

	var latest models.DrugLink
	if err := db.Order("id desc").First(&latest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []models.DrugLink{}, nil
		}
		return nil, err
	}

	query := db.Model(&models.DrugLink{}).Where("run_id = ?", latest.RunID)
	if f.Drug != "" {
		query = query.Where("drug_name = ?", f.Drug)
	}
	if f.Journal != "" {
		query = query.Where("journal = ?", f.Journal)
	}
	if f.Limit > 0 {
		query = query.Limit(f.Limit)
	}

	var links []models.DrugLink
	if err := query.Order("position asc").Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}
