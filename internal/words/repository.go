// Package words serves kanji prompts and their accepted readings from the
// dictionary database.
package words

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alsvik/yomitaisen/internal/duel"
)

// Repository reads the words table. A kanji may appear on several rows, one
// per accepted reading.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Random(ctx context.Context) (duel.Word, error) {
	var w duel.Word
	err := r.db.QueryRowContext(ctx, `
		SELECT kanji, reading FROM words
		ORDER BY RANDOM()
		LIMIT 1
	`).Scan(&w.Kanji, &w.Reading)
	if errors.Is(err, sql.ErrNoRows) {
		return w, duel.ErrNoWords
	}
	if err != nil {
		return w, fmt.Errorf("selecting random word: %w", err)
	}
	return w, nil
}

// Readings returns every reading of kanji, most frequent first.
func (r *Repository) Readings(ctx context.Context, kanji string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT reading FROM words
		WHERE kanji = ?
		ORDER BY frequency_rank, id
	`, kanji)
	if err != nil {
		return nil, fmt.Errorf("querying readings: %w", err)
	}
	defer rows.Close()

	var readings []string
	for rows.Next() {
		var reading string
		if err := rows.Scan(&reading); err != nil {
			return nil, fmt.Errorf("scanning reading: %w", err)
		}
		readings = append(readings, reading)
	}
	return readings, rows.Err()
}

func (r *Repository) IsValidReading(ctx context.Context, kanji, reading string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `
		SELECT 1 FROM words WHERE kanji = ? AND reading = ? LIMIT 1
	`, kanji, reading).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking reading: %w", err)
	}
	return true, nil
}

// Count is the number of (kanji, reading) pairs.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM words`).Scan(&n)
	return n, err
}

// Check reports an error when the dictionary is unreachable or empty, since
// no game can start without words.
func (r *Repository) Check(ctx context.Context) error {
	n, err := r.Count(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		return duel.ErrNoWords
	}
	return nil
}
