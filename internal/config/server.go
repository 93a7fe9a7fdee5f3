// Package config holds the server settings read from the environment and the
// training job settings read from YAML.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
)

// Server configures cmd/server.
type Server struct {
	Port            string
	DatabaseURL     string
	EnableDB        bool
	MetadataFromDB  bool
	ModelPath       string
	MetadataDir     string
	StaticDir       string
	LogLevel        string
	LogFormat       string
	GinMode         string
	MaxBodyBytes    int64
	ShutdownTimeout time.Duration
}

// LoadServer reads .env when present, then the environment. Malformed
// numeric, boolean or duration values are errors.
func LoadServer() (*Server, error) {
	_ = godotenv.Load()

	var env envReader
	cfg := &Server{
		Port:            env.str("PORT", "8080"),
		DatabaseURL:     env.str("DATABASE_URL", ""),
		EnableDB:        env.boolean("ENABLE_DB", false),
		MetadataFromDB:  env.boolean("METADATA_FROM_DB", false),
		ModelPath:       env.str("MODEL_PATH", "disease_model.gob"),
		MetadataDir:     env.str("METADATA_DIR", "data"),
		StaticDir:       env.str("STATIC_DIR", ""),
		LogLevel:        env.str("LOG_LEVEL", "info"),
		LogFormat:       env.str("LOG_FORMAT", "text"),
		GinMode:         env.str("GIN_MODE", "release"),
		MaxBodyBytes:    env.integer("MAX_BODY_BYTES", 1<<20),
		ShutdownTimeout: env.duration("SHUTDOWN_TIMEOUT", 5*time.Second),
	}
	if err := env.err(); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	if cfg.EnableDB && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when ENABLE_DB=true")
	}
	if cfg.MetadataFromDB && !cfg.EnableDB {
		return nil, fmt.Errorf("METADATA_FROM_DB=true requires ENABLE_DB=true")
	}
	if cfg.MaxBodyBytes <= 0 {
		return nil, fmt.Errorf("MAX_BODY_BYTES must be positive")
	}

	return cfg, nil
}
