// Package config loads service configuration from TOML files, an optional .env file,
// and AVIARY_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/aviary/internal/analysis"
	"github.com/JaimeStill/aviary/internal/classifier"
	"github.com/JaimeStill/aviary/internal/detections"
	"github.com/JaimeStill/aviary/internal/recordings"
	"github.com/JaimeStill/aviary/pkg/database"
	"github.com/JaimeStill/aviary/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"
	DotEnvFile           = ".env"

	EnvAviaryEnv             = "AVIARY_ENV"
	EnvAviaryShutdownTimeout = "AVIARY_SHUTDOWN_TIMEOUT"
	EnvAviaryVersion         = "AVIARY_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "AVIARY_DB_HOST",
	Port:            "AVIARY_DB_PORT",
	Name:            "AVIARY_DB_NAME",
	User:            "AVIARY_DB_USER",
	Password:        "AVIARY_DB_PASSWORD",
	SSLMode:         "AVIARY_DB_SSL_MODE",
	MaxOpenConns:    "AVIARY_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "AVIARY_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "AVIARY_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "AVIARY_DB_CONN_TIMEOUT",
}

var recordingsEnv = &recordings.Env{
	Env: storage.Env{
		Root:            "AVIARY_RECORDINGS_UPLOAD_DIR",
		CollisionPolicy: "AVIARY_RECORDINGS_COLLISION_POLICY",
	},
	RequireWAV: "AVIARY_RECORDINGS_REQUIRE_WAV",
}

var analysisEnv = &analysis.Env{
	Lon:  "AVIARY_ANALYSIS_LON",
	Lat:  "AVIARY_ANALYSIS_LAT",
	Week: "AVIARY_ANALYSIS_WEEK",
}

var classifierEnv = &classifier.Env{
	BaseURL:        "AVIARY_CLASSIFIER_BASE_URL",
	Timeout:        "AVIARY_CLASSIFIER_TIMEOUT",
	MinConfidence:  "AVIARY_CLASSIFIER_MIN_CONFIDENCE",
	RequireHealthy: "AVIARY_CLASSIFIER_REQUIRE_HEALTHY",
}

var detectionsEnv = &detections.Env{
	TransactionMode: "AVIARY_DETECTIONS_TRANSACTION_MODE",
}

// Config is the root configuration for the aviary service.
type Config struct {
	Server          ServerConfig      `toml:"server"`
	Database        database.Config   `toml:"database"`
	API             APIConfig         `toml:"api"`
	Recordings      recordings.Config `toml:"recordings"`
	Analysis        analysis.Config   `toml:"analysis"`
	Classifier      classifier.Config `toml:"classifier"`
	Detections      detections.Config `toml:"detections"`
	ShutdownTimeout string            `toml:"shutdown_timeout"`
	Version         string            `toml:"version"`
}

// Env returns the AVIARY_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvAviaryEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads .env (if present) into the environment, then the base config file,
// then the AVIARY_ENV overlay, and finalizes every section. Variables already set
// in the process environment take precedence over .env.
func Load() (*Config, error) {
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", DotEnvFile, err)
	}

	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sections.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.API.Merge(&overlay.API)
	c.Recordings.Merge(&overlay.Recordings)
	c.Analysis.Merge(&overlay.Analysis)
	c.Classifier.Merge(&overlay.Classifier)
	c.Detections.Merge(&overlay.Detections)
}

// Finalize applies defaults, environment overrides and validation to every section.
func (c *Config) Finalize() error {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
	if v := os.Getenv(EnvAviaryShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvAviaryVersion); v != "" {
		c.Version = v
	}
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}

	sections := []struct {
		name     string
		finalize func() error
	}{
		{"server", c.Server.Finalize},
		{"database", func() error { return c.Database.Finalize(databaseEnv) }},
		{"api", c.API.Finalize},
		{"recordings", func() error { return c.Recordings.Finalize(recordingsEnv) }},
		{"analysis", func() error { return c.Analysis.Finalize(analysisEnv) }},
		{"classifier", func() error { return c.Classifier.Finalize(classifierEnv) }},
		{"detections", func() error { return c.Detections.Finalize(detectionsEnv) }},
	}
	for _, s := range sections {
		if err := s.finalize(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvAviaryEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
