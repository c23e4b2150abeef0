package duel

import (
	"slices"
	"sync"
	"time"
)

// PendingGame is an invite created by a host and not yet joined.
type PendingGame struct {
	Code      string
	Host      Player
	Outbox    *Outbox
	CreatedAt time.Time
}

// LobbyGame is the public listing entry for a pending game.
type LobbyGame struct {
	GameID        string `json:"game_id"`
	HostName      string `json:"host_name"`
	CreatedAtSecs int64  `json:"created_at_secs"`
}

// PendingGames holds invites keyed by code. Entries older than maxAge are
// hidden from the listing, cannot be joined, and are dropped by Sweep.
type PendingGames struct {
	mu     sync.Mutex
	games  map[string]PendingGame
	maxAge time.Duration
	now    func() time.Time
}

func NewPendingGames(maxAge time.Duration) *PendingGames {
	return &PendingGames{
		games:  make(map[string]PendingGame),
		maxAge: maxAge,
		now:    time.Now,
	}
}

// Create registers a pending game for host and returns its code. taken
// reports codes already used by live games.
func (p *PendingGames) Create(host Player, out *Outbox, taken func(code string) bool) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	code := NewCode(func(code string) bool {
		if _, ok := p.games[code]; ok {
			return true
		}
		return taken != nil && taken(code)
	})
	p.games[code] = PendingGame{
		Code:      code,
		Host:      host,
		Outbox:    out,
		CreatedAt: p.now(),
	}
	return code
}

// Take removes and returns the pending game so exactly one guest can join.
func (p *PendingGames) Take(code string) (PendingGame, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	g, ok := p.games[code]
	if !ok {
		return PendingGame{}, false
	}
	delete(p.games, code)
	if p.expired(g) {
		return PendingGame{}, false
	}
	return g, true
}

// Remove drops the pending game if hostID still owns it.
func (p *PendingGames) Remove(code, hostID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	g, ok := p.games[code]
	if !ok || g.Host.ID != hostID {
		return false
	}
	delete(p.games, code)
	return true
}

// Hosts reports whether hostID's game is still waiting under code.
func (p *PendingGames) Hosts(code, hostID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	g, ok := p.games[code]
	return ok && g.Host.ID == hostID && !p.expired(g)
}

// List is a read-only snapshot of joinable games, oldest first.
func (p *PendingGames) List() []LobbyGame {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	pending := make([]PendingGame, 0, len(p.games))
	for _, g := range p.games {
		if !p.expired(g) {
			pending = append(pending, g)
		}
	}
	slices.SortFunc(pending, func(a, b PendingGame) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	games := make([]LobbyGame, 0, len(pending))
	for _, g := range pending {
		games = append(games, LobbyGame{
			GameID:        g.Code,
			HostName:      g.Host.Name,
			CreatedAtSecs: int64(now.Sub(g.CreatedAt) / time.Second),
		})
	}
	return games
}

// Sweep drops expired pending games and returns how many were removed.
func (p *PendingGames) Sweep() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for code, g := range p.games {
		if p.expired(g) {
			delete(p.games, code)
			n++
		}
	}
	return n
}

func (p *PendingGames) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.games)
}

func (p *PendingGames) expired(g PendingGame) bool {
	return p.maxAge > 0 && p.now().Sub(g.CreatedAt) > p.maxAge
}
