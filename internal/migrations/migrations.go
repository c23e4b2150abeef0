package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var fs embed.FS

// Run applies the dictionary schema and seed words that db has not seen yet
// and returns the versions it applied.
func Run(ctx context.Context, db *sql.DB) ([]int64, error) {
	p, err := goose.NewProvider(goose.DialectSQLite3, db, fs)
	if err != nil {
		return nil, fmt.Errorf("creating migration provider: %w", err)
	}

	results, err := p.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	applied := make([]int64, 0, len(results))
	for _, r := range results {
		applied = append(applied, r.Source.Version)
	}
	return applied, nil
}
