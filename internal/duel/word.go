// Package duel implements the matching and session-lifecycle engine of the
// kanji reading duel: the matchmaking lobby, the invite-code allocator, the
// per-game round state machine, the game registry and the round timeout
// scheduler. It holds all game state in memory.
package duel

import (
	"context"
	"slices"
)

// Word is a prompt under test. It is never mutated once handed to a session.
type Word struct {
	Kanji   string
	Reading string
	// Alternates are other readings accepted for the same kanji.
	Alternates []string
}

// Accepts reports whether text is the canonical reading or one of the
// alternates. Comparison is case-sensitive.
func (w Word) Accepts(text string) bool {
	return text == w.Reading || slices.Contains(w.Alternates, text)
}

// WordSource is the dictionary lookup collaborator.
type WordSource interface {
	// Random returns ErrNoWords when the dictionary is empty.
	Random(ctx context.Context) (Word, error)
	Readings(ctx context.Context, kanji string) ([]string, error)
	IsValidReading(ctx context.Context, kanji, reading string) (bool, error)
}
