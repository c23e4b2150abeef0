package database_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alsvik/yomitaisen/internal/database"
)

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "words.db")

	db, err := database.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	var mode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("reading journal mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
}

func TestOpenMemorySharesOneDatabase(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, database.Memory)
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, "CREATE TABLE t (x INTEGER)"); err != nil {
		t.Fatalf("creating table: %v", err)
	}
	// A second query must see the table created on the first.
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM t").Scan(&n); err != nil {
		t.Fatalf("querying table: %v", err)
	}
}
