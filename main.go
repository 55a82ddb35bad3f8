package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"drug-graph/config"
	"drug-graph/models"
	"drug-graph/providers"
	"drug-graph/services"
	"drug-graph/storage"
)

var (
	pipelineRunsCounter  *prometheus.CounterVec
	edgesProducedCounter prometheus.Counter
	runDurationHistogram prometheus.Histogram
)

func init() {
	pipelineRunsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_runs_total",
			Help: "Total number of pipeline runs by status.",
		},
		[]string{"status"},
	)
	edgesProducedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "graph_edges_produced_total",
			Help: "Total number of drug-article edges produced by successful runs.",
		},
	)
	runDurationHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pipeline_run_duration_seconds",
			Help:    "Duration of successful pipeline runs.",
			Buckets: prometheus.DefBuckets,
		},
	)
	prometheus.MustRegister(pipelineRunsCounter, edgesProducedCounter, runDurationHistogram)
}

func apiKeyAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.APISecretKey == "" {
			c.Next()
			return
		}
		apiKey := c.GetHeader("X-API-KEY")
		if apiKey != cfg.APISecretKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}

// runPipeline führt einen Lauf aus und aktualisiert die Metriken.
func runPipeline(ctx context.Context, etl *services.ETLService, log *zap.Logger) (*services.RunResult, error) {
	result, err := etl.Run(ctx)
	if err != nil {
		pipelineRunsCounter.WithLabelValues("error").Inc()
		log.Error("Pipeline run failed", zap.Error(err))
		return nil, err
	}
	pipelineRunsCounter.WithLabelValues("success").Inc()
	edgesProducedCounter.Add(float64(result.EdgeCount))
	runDurationHistogram.Observe(result.Duration.Seconds())
	return result, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config load error: %v", err)
	}

	var logging *zap.Logger
	if cfg.Debug {
		logging, err = zap.NewDevelopment()
	} else {
		logging, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	// Setup Providers
	enabledProviders := providers.FromFormats(cfg.Formats(), logging)
	if len(enabledProviders) == 0 {
		logging.Fatal("No valid formats enabled. Check ENABLED_FORMATS in .env")
	}
	logging.Info("Active formats loaded", zap.Strings("formats", cfg.Formats()))

	// Setup Sinks
	sinks, err := storage.NewSinks(context.Background(), cfg, logging)
	if err != nil {
		logging.Fatal("Sink setup failed", zap.Error(err))
	}

	// Setup Services
	etl, err := services.NewETLService(cfg, logging, enabledProviders, sinks.All)
	if err != nil {
		logging.Fatal("ETL service setup failed", zap.Error(err))
	}

	// Setup Router
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := setupRouter(cfg, etl, sinks.Postgres, logging)

	// Setup Cron
	cronScheduler := cron.New()
	_, err = cronScheduler.AddFunc(cfg.CronSchedule, func() {
		logging.Info("Running scheduled pipeline job...")
		if result, err := runPipeline(context.Background(), etl, logging); err == nil {
			logging.Info("Cron job completed", zap.String("run_id", result.RunID), zap.Int("edges", result.EdgeCount))
		}
	})
	if err != nil {
		logging.Fatal("Invalid CRON_SCHEDULE", zap.String("schedule", cfg.CronSchedule), zap.Error(err))
	}
	cronScheduler.Start()
	defer cronScheduler.Stop()

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}

// setupRouter baut den Router: /health und /metrics sind öffentlich, alle
// anderen Routen laufen durch apiKeyAuthMiddleware.
func setupRouter(cfg *config.Config, etl *services.ETLService, pg *storage.PostgresSink, log *zap.Logger) *gin.Engine {
	router := gin.Default()
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.Use(apiKeyAuthMiddleware(cfg))

	setupPipelineRoutes(router, etl, log)
	setupGraphRoutes(router, etl, pg, log)
	return router
}

// setupPipelineRoutes konfiguriert das Auslösen von Läufen
func setupPipelineRoutes(router *gin.Engine, etl *services.ETLService, log *zap.Logger) {
	rg := router.Group("/pipeline")

	// POST - Lauf im Hintergrund starten
	rg.POST("/run", func(c *gin.Context) {
		go func() {
			if result, err := runPipeline(context.Background(), etl, log); err == nil {
				log.Info("Manual pipeline run completed", zap.String("run_id", result.RunID), zap.Int("edges", result.EdgeCount))
			}
		}()
		c.JSON(http.StatusAccepted, gin.H{"message": "Pipeline run started"})
	})

	// GET - Zusammenfassung des letzten Laufs
	rg.GET("/last", func(c *gin.Context) {
		last := etl.LastRun()
		if last == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "No completed run yet"})
			return
		}
		c.JSON(http.StatusOK, last)
	})
}

// setupGraphRoutes konfiguriert die Endpoints für den Wirkstoff-Graphen
func setupGraphRoutes(router *gin.Engine, etl *services.ETLService, pg *storage.PostgresSink, log *zap.Logger) {
	rg := router.Group("/graph")

	// GET - Kanten des letzten Laufs, optional gefiltert
	rg.GET("/edges", func(c *gin.Context) {
		last := etl.LastRun()
		if last == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "No completed run yet"})
			return
		}
		drug, journal := c.Query("drug"), c.Query("journal")
		edges := make([]models.GraphEdge, 0, len(last.Edges))
		for _, e := range last.Edges {
			if drug != "" && e.Drug.Name != drug {
				continue
			}
			if journal != "" && e.Journal != journal {
				continue
			}
			edges = append(edges, e)
		}
		c.JSON(http.StatusOK, gin.H{"run_id": last.RunID, "edges": edges})
	})

	// GET - Journal mit den meisten Wirkstoff-Erwähnungen
	rg.GET("/top-journal", func(c *gin.Context) {
		last := etl.LastRun()
		if last == nil || last.TopJournal == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "No journal found"})
			return
		}
		c.JSON(http.StatusOK, last.TopJournal)
	})

	// GET - Gespeicherte Kanten aus Postgres
	rg.GET("/links", func(c *gin.Context) {
		if pg == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Database sink not configured"})
			return
		}
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		links, err := pg.LatestLinks(c.Request.Context(), storage.LinkFilter{
			Drug:    c.Query("drug"),
			Journal: c.Query("journal"),
			Limit:   limit,
		})
		if err != nil {
			log.Error("Failed to load drug links", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load links"})
			return
		}
		c.JSON(http.StatusOK, links)
	})
}
