package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"drug-graph/config"
	"drug-graph/providers"
	"drug-graph/services"
	"drug-graph/storage"
)

func main() {
	log.Println("Starte ETL-Lauf...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Fehler beim Laden der Konfiguration: %v", err)
	}

	logging, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// 1. Quellen und Senken aufbauen
	enabledProviders := providers.FromFormats(cfg.Formats(), logging)
	if len(enabledProviders) == 0 {
		log.Fatalf("Keine gültigen Formate in ENABLED_FORMATS: %q", cfg.EnabledFormats)
	}
	sinks, err := storage.NewSinks(ctx, cfg, logging)
	if err != nil {
		log.Fatalf("Fehler beim Erstellen der Senken: %v", err)
	}

	// 2. Lauf ausführen
	etl, err := services.NewETLService(cfg, logging, enabledProviders, sinks.All)
	if err != nil {
		log.Fatalf("Fehler beim Erstellen des ETL-Service: %v", err)
	}
	result, err := etl.Run(ctx)
	if err != nil {
		log.Fatalf("ETL-Lauf fehlgeschlagen: %v", err)
	}

	// 3. Ergebnis ausgeben
	log.Printf("ETL-Lauf %s erfolgreich: %d Kanten nach %s geschrieben", result.RunID, result.EdgeCount, cfg.OutputPath)
	if result.TopJournal == nil {
		fmt.Println("No journal found.")
		return
	}
	fmt.Printf("The journal that mentions the most different drugs is: %s (%d)\n", result.TopJournal.Journal, result.TopJournal.Count)
}
