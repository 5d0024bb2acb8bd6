// Package infrastructure provides core service initialization for application startup.
// It assembles the shared systems (logging, database, recording store, classifier
// client, metrics) that the domain packages require.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/JaimeStill/aviary/internal/classifier"
	"github.com/JaimeStill/aviary/internal/config"
	"github.com/JaimeStill/aviary/internal/metrics"
	"github.com/JaimeStill/aviary/pkg/database"
	"github.com/JaimeStill/aviary/pkg/lifecycle"
	"github.com/JaimeStill/aviary/pkg/storage"
)

// Infrastructure holds the core systems shared by every module.
type Infrastructure struct {
	Lifecycle  *lifecycle.Coordinator
	Logger     *slog.Logger
	Database   database.System
	Recordings storage.System
	Classifier *classifier.Remote
	Registry   *prometheus.Registry
	Metrics    *metrics.Metrics

	requireClassifier bool
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	db, err := database.New(&cfg.Database, logger, "birds")
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := storage.New(&cfg.Recordings.Config, logger)
	if err != nil {
		return nil, fmt.Errorf("recording store init failed: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m, err := metrics.New(registry)
	if err != nil {
		return nil, fmt.Errorf("metrics init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle:         lc,
		Logger:            logger,
		Database:          db,
		Recordings:        store,
		Classifier:        classifier.NewRemote(&cfg.Classifier, logger),
		Registry:          registry,
		Metrics:           m,
		requireClassifier: cfg.Classifier.RequireHealthy,
	}, nil
}

// Start registers the database and classifier with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	i.Classifier.Start(i.Lifecycle, i.requireClassifier)
	return nil
}
