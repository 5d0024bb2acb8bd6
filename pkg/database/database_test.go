package database_test

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/JaimeStill/aviary/pkg/database"
	"github.com/JaimeStill/aviary/pkg/lifecycle"
)

func testConfig() database.Config {
	cfg := database.Config{
		Host:        "127.0.0.1",
		Port:        1,
		Name:        "birds",
		User:        "postgres",
		ConnTimeout: "200ms",
	}
	cfg.Finalize(nil)
	return cfg
}

func TestNewReturnsSystem(t *testing.T) {
	cfg := testConfig()

	sys, err := database.New(&cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	conn := sys.Connection()
	if conn == nil {
		t.Fatal("Connection() returned nil")
	}

	if got := conn.Stats().MaxOpenConnections; got != cfg.MaxOpenConns {
		t.Errorf("max open = %d, want %d", got, cfg.MaxOpenConns)
	}

	conn.Close()
}

func TestStartupPingFailureReported(t *testing.T) {
	cfg := testConfig()

	sys, err := database.New(&cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	lc := lifecycle.New()
	if err := sys.Start(lc); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	err = lc.WaitForStartup()
	if !errors.Is(err, database.ErrNotReady) {
		t.Fatalf("WaitForStartup() error = %v, want ErrNotReady", err)
	}
	if lc.Ready() {
		t.Error("coordinator should not be ready without a database")
	}

	lc.Shutdown(time.Second)
}

func TestVerifyTables(t *testing.T) {
	db, err := sql.Open("sqlite", "file:"+filepath.Join(t.TempDir(), "schema.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec(`CREATE TABLE birds (id INTEGER PRIMARY KEY)`); err != nil {
		t.Fatalf("create table: %v", err)
	}

	ctx := context.Background()
	if err := database.VerifyTables(ctx, db, "birds"); err != nil {
		t.Errorf("VerifyTables(birds) error = %v", err)
	}
	if err := database.VerifyTables(ctx, db); err != nil {
		t.Errorf("VerifyTables() error = %v", err)
	}

	err = database.VerifyTables(ctx, db, "birds", "nests")
	if !errors.Is(err, database.ErrSchemaMissing) {
		t.Errorf("VerifyTables(nests) error = %v, want ErrSchemaMissing", err)
	}

	err = database.VerifyTables(ctx, db, `birds"; DROP TABLE birds; --`)
	if !errors.Is(err, database.ErrSchemaMissing) {
		t.Errorf("quoted name error = %v, want ErrSchemaMissing", err)
	}
	if err := database.VerifyTables(ctx, db, "birds"); err != nil {
		t.Errorf("birds dropped by quoted name: %v", err)
	}
}
