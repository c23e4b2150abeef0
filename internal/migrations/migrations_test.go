package migrations_test

import (
	"context"
	"slices"
	"testing"

	"github.com/alsvik/yomitaisen/internal/database"
	"github.com/alsvik/yomitaisen/internal/migrations"
)

func TestMigrations(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	applied, err := migrations.Run(ctx, db)
	if err != nil {
		t.Fatalf("running migrations: %v", err)
	}
	if want := []int64{1, 2}; !slices.Equal(applied, want) {
		t.Errorf("applied = %v, want %v", applied, want)
	}

	// Verify the table exists by querying sqlite_master.
	var name string
	err = db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='words'").Scan(&name)
	if err != nil {
		t.Fatalf("table words not found: %v", err)
	}

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM words WHERE kanji = '日本'").Scan(&n); err != nil {
		t.Fatalf("counting seed words: %v", err)
	}
	if n != 2 {
		t.Errorf("日本 readings = %d, want 2", n)
	}
}

func TestMigrationsUniqueReading(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	if _, err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}
	_, err = db.Exec("INSERT INTO words (kanji, reading) VALUES ('山', 'やま')")
	if err == nil {
		t.Error("duplicate (kanji, reading) inserted")
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	if _, err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("first run: %v", err)
	}
	applied, err := migrations.Run(ctx, db)
	if err != nil {
		t.Fatalf("second run (should be no-op): %v", err)
	}
	if len(applied) != 0 {
		t.Errorf("second run applied %v", applied)
	}
}
