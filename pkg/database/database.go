// Package database owns the PostgreSQL pool: it opens it over the pgx stdlib
// driver, verifies at startup that the server answers and the schema is
// migrated, and closes it on shutdown.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/JaimeStill/aviary/pkg/lifecycle"
)

// System exposes the shared pool and hooks it into the process lifecycle.
type System interface {
	// Connection returns the underlying connection pool.
	Connection() *sql.DB
	// Start registers startup and shutdown hooks with the lifecycle coordinator.
	Start(lc *lifecycle.Coordinator) error
}

type pool struct {
	db      *sql.DB
	target  string
	tables  []string
	timeout time.Duration
	logger  *slog.Logger
}

// New opens a pgx-backed pool sized by cfg. No connection is made until the
// startup hook runs. tables lists the relations that hook requires to exist.
func New(cfg *Config, logger *slog.Logger, tables ...string) (System, error) {
	db, err := sql.Open("pgx", cfg.Dsn())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	return &pool{
		db:      db,
		target:  fmt.Sprintf("%s@%s:%d/%s", cfg.User, cfg.Host, cfg.Port, cfg.Name),
		tables:  tables,
		timeout: cfg.ConnTimeoutDuration(),
		logger:  logger.With("system", "database"),
	}, nil
}

func (p *pool) Connection() *sql.DB {
	return p.db
}

func (p *pool) Start(lc *lifecycle.Coordinator) error {
	p.logger.Info("database registered", "target", p.target, "required_tables", p.tables)

	lc.OnStartup("database", func() error {
		ctx, cancel := context.WithTimeout(lc.Context(), p.timeout)
		defer cancel()

		if err := p.db.PingContext(ctx); err != nil {
			p.logger.Error("database unreachable", "target", p.target, "error", err)
			return fmt.Errorf("%w: %w", ErrNotReady, err)
		}
		if err := VerifyTables(ctx, p.db, p.tables...); err != nil {
			p.logger.Error("database schema incomplete", "target", p.target, "error", err)
			return err
		}

		p.logger.Info("database ready", "target", p.target)
		return nil
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()

		stats := p.db.Stats()
		p.logger.Info(
			"closing database pool",
			"open", stats.OpenConnections,
			"in_use", stats.InUse,
			"wait_count", stats.WaitCount,
			"wait_duration", stats.WaitDuration,
		)
		if err := p.db.Close(); err != nil {
			p.logger.Error("database close failed", "error", err)
		}
	})

	return nil
}

// VerifyTables checks that every named table can be selected from.
// A missing table is reported as ErrSchemaMissing.
func VerifyTables(ctx context.Context, db *sql.DB, tables ...string) error {
	for _, table := range tables {
		q := "SELECT 1 FROM " + quoteIdent(table) + " WHERE 1 = 0"
		rows, err := db.QueryContext(ctx, q)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrSchemaMissing, table, err)
		}
		rows.Close()
	}
	return nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
