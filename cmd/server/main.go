package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/Skufu/medirec/internal/config"
	"github.com/Skufu/medirec/internal/logging"
	"github.com/Skufu/medirec/internal/metadata"
	"github.com/Skufu/medirec/internal/model"
	"github.com/Skufu/medirec/internal/predict"
)

type HealthChecker interface {
	Ping(ctx context.Context) error
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	gin.SetMode(cfg.GinMode)

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	log := logger.WithField("cmd", "server")

	ctx := context.Background()
	var (
		db HealthChecker
		q  metadata.Querier
	)
	if cfg.EnableDB {
		pool, err := connectDB(ctx, cfg.DatabaseURL)
		if err != nil {
			log.WithError(err).Fatal("database connection failed")
		}
		defer pool.Close()
		db, q = pool, pool
	}

	art := loadModel(cfg.ModelPath, log)
	store, err := loadMetadata(ctx, cfg, q, log)
	if err != nil {
		log.WithError(err).Fatal("metadata load failed")
	}

	app := newApp(art, store, db, log)

	staticRoot := cfg.StaticDir
	if staticRoot == "" {
		staticRoot = detectStaticRoot()
	}
	router := setupRouter(app, staticRoot, cfg.MaxBodyBytes)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	log.WithFields(logrus.Fields{"port": cfg.Port, "static": staticRoot}).Info("server listening")
	waitForShutdown(server, cfg.ShutdownTimeout, log)
}

func loadConfig() (*config.Server, error) {
	return config.LoadServer()
}

func connectDB(ctx context.Context, url string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return pool, nil
}

// loadModel returns nil when the artifact cannot be used; the server then
// runs degraded and reports the model as unavailable.
func loadModel(path string, log *logrus.Entry) *model.Artifact {
	entry := log.WithField("path", path)
	art, err := model.Load(path)
	if err != nil {
		if errors.Is(err, model.ErrArtifactMissing) {
			entry.Warn("model artifact not found; run cmd/train first. Predictions disabled")
		} else {
			entry.WithError(err).Error("model artifact unreadable. Predictions disabled")
		}
		return nil
	}
	entry.WithFields(logrus.Fields{
		"labels":   len(art.Metadata.Labels),
		"features": art.Metadata.Features,
		"accuracy": art.Metadata.Accuracy,
	}).Info("model loaded")
	return art
}

func loadMetadata(ctx context.Context, cfg *config.Server, q metadata.Querier, log *logrus.Entry) (*metadata.Store, error) {
	entry := log.WithField("component", "metadata")
	var (
		store *metadata.Store
		err   error
	)
	if cfg.MetadataFromDB && q != nil {
		qctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		store, err = metadata.LoadPostgres(qctx, q, entry)
	} else {
		store, err = metadata.LoadCSV(cfg.MetadataDir, entry)
	}
	if err != nil {
		return nil, err
	}
	entry.WithField("tables", store.Sizes()).Info("metadata loaded")
	return store, nil
}

func newApp(art *model.Artifact, store *metadata.Store, db HealthChecker, log *logrus.Entry) *App {
	app := &App{Metadata: store, DB: db, Log: log}
	var m predict.Model
	if art != nil {
		m = art
		meta := art.Metadata
		app.ModelInfo = &meta
	}
	app.Predictor = predict.NewService(m, log.WithField("component", "predict"))
	return app
}

func waitForShutdown(server *http.Server, timeout time.Duration, log *logrus.Entry) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}

func limitBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func requestLogger(log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).Round(time.Microsecond),
			"client":  c.ClientIP(),
		})
		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("request")
		case status >= 400:
			entry.Warn("request")
		default:
			entry.Debug("request")
		}
	}
}

func detectStaticRoot() string {
	startDir, err := os.Getwd()
	if err != nil {
		return "."
	}

	candidates := []string{
		filepath.Join(startDir, "web"),
		startDir,
		filepath.Join(filepath.Dir(startDir), "web"),
		filepath.Join(filepath.Dir(filepath.Dir(startDir)), "web"),
	}

	for _, dir := range candidates {
		if fileExists(filepath.Join(dir, "index.html")) {
			return dir
		}
	}

	return startDir
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
