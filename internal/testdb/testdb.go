// Package testdb opens throwaway SQLite databases carrying the birds schema,
// for tests that exercise the persistence path without a PostgreSQL server.
package testdb

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"unicode"

	_ "modernc.org/sqlite"
)

// detection_date is TEXT so the stored value compares byte-for-byte with the capture time string.
const schema = `
CREATE TABLE birds (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	common_name TEXT NOT NULL,
	scientific_name TEXT NOT NULL,
	start_time REAL NOT NULL,
	end_time REAL NOT NULL,
	detection_date TEXT NOT NULL,
	confidence REAL NOT NULL,
	label TEXT NOT NULL,
	audio_file TEXT NOT NULL,
	lon REAL NOT NULL,
	lat REAL NOT NULL
);
CREATE INDEX idx_birds_detection_date ON birds(detection_date);
CREATE INDEX idx_birds_common_name ON birds(common_name);
`

// Open creates a file-backed database in a temp directory and applies the schema.
// The database is closed when the test ends.
func Open(t testing.TB) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "aviary.db")
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return db
}

// FailInsertsOf installs a trigger that aborts any insert of commonName.
func FailInsertsOf(t testing.TB, db *sql.DB, commonName string) {
	t.Helper()

	q := fmt.Sprintf(`
		CREATE TRIGGER fail_%s BEFORE INSERT ON birds
		WHEN NEW.common_name = '%s'
		BEGIN
			SELECT RAISE(ABORT, 'forced insert failure');
		END;`, triggerSuffix(commonName), strings.ReplaceAll(commonName, "'", "''"))

	if _, err := db.Exec(q); err != nil {
		t.Fatalf("create trigger: %v", err)
	}
}

// Count returns the number of rows in birds.
func Count(t testing.TB, db *sql.DB) int {
	t.Helper()

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM birds").Scan(&n); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return n
}

// CommonNames returns the common_name of every row in insertion order.
func CommonNames(t testing.TB, db *sql.DB) []string {
	t.Helper()

	rows, err := db.Query("SELECT common_name FROM birds ORDER BY id")
	if err != nil {
		t.Fatalf("query names: %v", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			t.Fatalf("scan name: %v", err)
		}
		names = append(names, n)
	}
	return names
}

func triggerSuffix(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return '_'
	}, name)
}
