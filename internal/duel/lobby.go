package duel

import "sync"

// MatchOutcome is the result of Lobby.TryMatch. When neither Matched nor
// Duplicate is set the caller occupies the waiting slot.
type MatchOutcome struct {
	Matched    bool
	OpponentID string
	Opponent   *Outbox
	// Duplicate reports that another connection is waiting under the same id.
	Duplicate bool
}

type waiter struct {
	playerID string
	out      *Outbox
}

// Lobby is the single-slot anonymous matchmaking queue.
type Lobby struct {
	mu      sync.Mutex
	waiting *waiter
}

func NewLobby() *Lobby {
	return &Lobby{}
}

// TryMatch pairs playerID with whoever is waiting, or makes playerID wait.
// A player already in the slot keeps waiting instead of matching itself; the
// same id from a different outbox is reported as a duplicate.
func (l *Lobby) TryMatch(playerID string, out *Outbox) MatchOutcome {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.waiting == nil {
		l.waiting = &waiter{playerID: playerID, out: out}
		return MatchOutcome{}
	}
	if l.waiting.playerID == playerID {
		return MatchOutcome{Duplicate: l.waiting.out != out}
	}

	w := l.waiting
	l.waiting = nil
	return MatchOutcome{Matched: true, OpponentID: w.playerID, Opponent: w.out}
}

// RemoveWaiting clears the slot only if playerID holds it. It is a no-op when
// the player was matched concurrently.
func (l *Lobby) RemoveWaiting(playerID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.waiting == nil || l.waiting.playerID != playerID {
		return false
	}
	l.waiting = nil
	return true
}

// Waiting returns the id of the player in the slot.
func (l *Lobby) Waiting() (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.waiting == nil {
		return "", false
	}
	return l.waiting.playerID, true
}
