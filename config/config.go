package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	// Quellen & Ausgabe
	DataDir        string `envconfig:"DATA_DIR" default:"data"`
	IfExists       string `envconfig:"IF_EXISTS" default:"append"`
	OutputPath     string `envconfig:"OUTPUT_PATH" default:"data.json"`
	EnabledFormats string `envconfig:"ENABLED_FORMATS" default:"csv,json"`

	// Leere Wirkstoffnamen würden sonst jeden Artikel treffen
	SkipEmptyDrugNames bool `envconfig:"SKIP_EMPTY_DRUG_NAMES" default:"false"`

	HTTPPort     string `envconfig:"HTTP_PORT" default:"4242"`
	CronSchedule string `envconfig:"CRON_SCHEDULE" default:"0 0 * * *"`
	APISecretKey string `envconfig:"API_SECRET_KEY"`
	Debug        bool   `envconfig:"APP_DEBUG" default:"false"`

	// Postgres-Senke, deaktiviert wenn DB_HOST leer ist
	DBHost     string `envconfig:"DB_HOST"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME"`

	// S3-Senke für den Export, deaktiviert wenn S3_BUCKET leer ist
	S3Key         string `envconfig:"S3_KEY"`
	S3Secret      string `envconfig:"S3_SECRET"`
	S3URL         string `envconfig:"S3_URL"`
	S3Region      string `envconfig:"S3_REGION" default:"us-east-1"`
	S3Bucket      string `envconfig:"S3_BUCKET"`
	S3Prefix      string `envconfig:"S3_PREFIX" default:"graph/"`
	S3KeepExports int    `envconfig:"S3_KEEP_EXPORTS" default:"10"`
}

// DSN gibt den Data Source Name für die PostgreSQL-Verbindung zurück.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// DatabaseEnabled ist true, wenn Kanten zusätzlich in Postgres gespeichert werden.
func (c *Config) DatabaseEnabled() bool {
	return c.DBHost != ""
}

// S3Enabled ist true, wenn der Export zusätzlich nach S3 hochgeladen wird.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != ""
}

// Formats gibt die aktivierten Quellformate zurück (z.B. ["csv", "json"]).
func (c *Config) Formats() []string {
	var out []string
	for _, f := range strings.Split(c.EnabledFormats, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}
