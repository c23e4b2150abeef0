package duel

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Resolution describes a round that just resolved and what it means for the
// match.
type Resolution struct {
	GameID  string
	Ticket  Ticket
	Outcome Outcome
	Verdict Verdict
	Scores  [2]int
}

// Removal is returned once per game when a player leaves, so the caller can
// notify the opponent exactly once.
type Removal struct {
	GameID   string
	Opponent Player
	// OpponentOutbox is nil when the opponent is unknown.
	OpponentOutbox *Outbox
}

// Cleaner removes a finished game.
type Cleaner interface {
	Cleanup(gameID string) bool
}

type entry struct {
	id       string
	players  [2]Player
	outboxes [2]*Outbox

	mu      sync.Mutex
	session *Session
	dead    bool
}

// announceStart tells each player who they are playing against.
func (e *entry) announceStart() {
	for i, out := range e.outboxes {
		if out != nil {
			out.Send(GameStartMsg(e.players[1-i].Name))
		}
	}
}

// lock acquires the entry and reports false if it was removed meanwhile.
func (e *entry) lock() bool {
	e.mu.Lock()
	if e.dead {
		e.mu.Unlock()
		return false
	}
	return true
}

func (e *entry) broadcast(msg ServerMessage) {
	for _, out := range e.outboxes {
		if out != nil {
			out.Send(msg)
		}
	}
}

// Registry is the single source of truth for live games. games and
// playerGames change together under mu; each game's session is serialized by
// its own entry lock so unrelated games never contend.
type Registry struct {
	rules  Rules
	logger *slog.Logger

	mu          sync.RWMutex
	games       map[string]*entry
	playerGames map[string]string
}

func NewRegistry(rules Rules, logger *slog.Logger) *Registry {
	return &Registry{
		rules:       rules,
		logger:      logger,
		games:       make(map[string]*entry),
		playerGames: make(map[string]string),
	}
}

// Create starts a session between a and b under a fresh game id.
func (r *Registry) Create(a, b Player, outA, outB *Outbox) (string, error) {
	id := uuid.NewString()
	if err := r.CreateWithID(id, a, b, outA, outB); err != nil {
		return "", err
	}
	return id, nil
}

// CreateWithID inserts the session and both player mappings in one step.
func (r *Registry) CreateWithID(id string, a, b Player, outA, outB *Outbox) error {
	if a.ID == b.ID {
		return ErrPlayerInGame
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.games[id]; ok {
		return ErrGameExists
	}
	for _, p := range []Player{a, b} {
		if _, ok := r.playerGames[p.ID]; ok {
			return ErrPlayerInGame
		}
	}

	r.games[id] = &entry{
		id:       id,
		players:  [2]Player{a, b},
		outboxes: [2]*Outbox{outA, outB},
		session:  NewSession(a, b, r.rules),
	}
	r.playerGames[a.ID] = id
	r.playerGames[b.ID] = id

	r.logger.Info("game created", "game_id", id, "player1", a.ID, "player2", b.ID)
	return nil
}

func (r *Registry) byPlayer(playerID string) (*entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.playerGames[playerID]
	if !ok {
		return nil, false
	}
	e, ok := r.games[id]
	return e, ok
}

func (r *Registry) byGame(gameID string) (*entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.games[gameID]
	return e, ok
}

// resolution settles round t and announces it. Announcing under the entry
// lock keeps RoundResult and GameEnd ordered against the next RoundStart.
func (e *entry) resolution(t Ticket, out Outcome) Resolution {
	v := e.session.Settle(t.Round)
	p1, p2 := e.session.Scores()

	e.broadcast(RoundResultMsg(out))
	if v.Over {
		e.broadcast(GameEndMsg(v.Winner))
	}
	return Resolution{
		GameID:  e.id,
		Ticket:  t,
		Outcome: out,
		Verdict: v,
		Scores:  [2]int{p1, p2},
	}
}

// SubmitAnswer checks text against playerID's live round and, when correct,
// scores the win and settles the match.
func (r *Registry) SubmitAnswer(playerID, text string) (Resolution, error) {
	e, ok := r.byPlayer(playerID)
	if !ok || !e.lock() {
		return Resolution{}, ErrNotInGame
	}
	defer e.mu.Unlock()

	t, ok := e.session.Ticket()
	if !ok {
		return Resolution{}, ErrNoActiveRound
	}
	out, ok := e.session.SubmitAnswer(playerID, text)
	if !ok {
		return Resolution{}, ErrWrongAnswer
	}
	e.session.RecordWin(out.Winner.ID)
	res := e.resolution(t, out)

	r.logger.Info("round won",
		"game_id", e.id,
		"player_id", playerID,
		"round", t.Round,
		"scores", res.Scores,
		"game_over", res.Verdict.Over,
	)
	return res, nil
}

// AcceptAnswer awards round t to playerID after the answer was validated
// elsewhere. It fails if t is no longer the live round.
func (r *Registry) AcceptAnswer(playerID string, t Ticket) (Resolution, error) {
	e, ok := r.byPlayer(playerID)
	if !ok || !e.lock() {
		return Resolution{}, ErrNotInGame
	}
	defer e.mu.Unlock()

	if cur, ok := e.session.Ticket(); !ok || cur != t {
		return Resolution{}, ErrNoActiveRound
	}
	out, ok := e.session.AcceptAnswer(playerID)
	if !ok {
		return Resolution{}, ErrNoActiveRound
	}
	e.session.RecordWin(out.Winner.ID)
	res := e.resolution(t, out)

	r.logger.Info("round won by validated reading",
		"game_id", e.id,
		"player_id", playerID,
		"round", t.Round,
		"scores", res.Scores,
	)
	return res, nil
}

// RecordSkip registers a skip. The Resolution is set only for BothSkipped.
func (r *Registry) RecordSkip(playerID string) (SkipKind, Resolution, error) {
	e, ok := r.byPlayer(playerID)
	if !ok || !e.lock() {
		return 0, Resolution{}, ErrNotInGame
	}
	defer e.mu.Unlock()

	t, ok := e.session.Ticket()
	if !ok {
		return 0, Resolution{}, ErrNoActiveRound
	}
	skip, ok := e.session.RecordSkip(playerID)
	if !ok {
		return 0, Resolution{}, ErrNoActiveRound
	}
	if skip.Kind != BothSkipped {
		return skip.Kind, Resolution{}, nil
	}

	r.logger.Info("round skipped", "game_id", e.id, "round", t.Round)
	return skip.Kind, e.resolution(t, skip.Outcome), nil
}

// TimeoutRound resolves round t of gameID with no winner. It reports false
// when t is stale: the round was resolved by another path, or the game is gone.
func (r *Registry) TimeoutRound(gameID string, t Ticket) (Resolution, bool) {
	e, ok := r.byGame(gameID)
	if !ok || !e.lock() {
		return Resolution{}, false
	}
	defer e.mu.Unlock()

	if cur, ok := e.session.Ticket(); !ok || cur != t {
		return Resolution{}, false
	}
	out, ok := e.session.TimeoutRound()
	if !ok {
		return Resolution{}, false
	}

	r.logger.Info("round timed out", "game_id", gameID, "round", t.Round)
	return e.resolution(t, out), true
}

// StartRound opens round t with word and announces it to both players. It
// fails if the game is gone, a rematch superseded t's match, or t is not the
// next round.
func (r *Registry) StartRound(gameID string, t Ticket, word Word) error {
	e, ok := r.byGame(gameID)
	if !ok || !e.lock() {
		return ErrNotInGame
	}
	defer e.mu.Unlock()

	if e.session.Match() != t.Match {
		return ErrRoundOrder
	}
	if err := e.session.StartRound(t.Round, word); err != nil {
		return err
	}
	e.broadcast(RoundStartMsg(word.Kanji, t.Round))

	r.logger.Info("round started", "game_id", gameID, "round", t.Round, "kanji", word.Kanji)
	return nil
}

// RequestRematch records playerID's rematch request. On RematchStart the
// returned ticket is round 1 of the new match.
func (r *Registry) RequestRematch(playerID string) (RematchKind, Ticket, string, error) {
	e, ok := r.byPlayer(playerID)
	if !ok || !e.lock() {
		return 0, Ticket{}, "", ErrNotInGame
	}
	defer e.mu.Unlock()

	kind, err := e.session.RequestRematch(playerID)
	if err != nil {
		return 0, Ticket{}, "", err
	}
	if kind == RematchStart {
		e.announceStart()
		r.logger.Info("rematch starting", "game_id", e.id, "match", e.session.Match())
	}
	return kind, Ticket{Match: e.session.Match(), Round: 1}, e.id, nil
}

// Broadcast sends msg to both players of playerID's game. It is a no-op when
// the player is no longer in a game.
func (r *Registry) Broadcast(playerID string, msg ServerMessage) bool {
	e, ok := r.byPlayer(playerID)
	if !ok || !e.lock() {
		return false
	}
	defer e.mu.Unlock()

	e.broadcast(msg)
	return true
}

// Send delivers msg to playerID only.
func (r *Registry) Send(playerID string, msg ServerMessage) bool {
	e, ok := r.byPlayer(playerID)
	if !ok || !e.lock() {
		return false
	}
	defer e.mu.Unlock()

	for i, p := range e.players {
		if p.ID == playerID && e.outboxes[i] != nil {
			return e.outboxes[i].Send(msg)
		}
	}
	return false
}

func (r *Registry) BroadcastGame(gameID string, msg ServerMessage) bool {
	e, ok := r.byGame(gameID)
	if !ok || !e.lock() {
		return false
	}
	defer e.mu.Unlock()

	e.broadcast(msg)
	return true
}

// AnnounceStart sends each player GameStart naming their opponent.
func (r *Registry) AnnounceStart(gameID string) bool {
	e, ok := r.byGame(gameID)
	if !ok || !e.lock() {
		return false
	}
	defer e.mu.Unlock()

	e.announceStart()
	return true
}

// RemovePlayer removes playerID's game and both mappings. Only the first call
// for a game returns a Removal; later or concurrent calls, for either player,
// are no-ops.
func (r *Registry) RemovePlayer(playerID string) (Removal, bool) {
	r.mu.Lock()
	id, ok := r.playerGames[playerID]
	if !ok {
		r.mu.Unlock()
		return Removal{}, false
	}
	e, ok := r.games[id]
	if ok {
		r.unlink(e)
	} else {
		delete(r.playerGames, playerID)
	}
	r.mu.Unlock()
	if !ok {
		return Removal{}, false
	}

	e.mu.Lock()
	e.dead = true
	e.mu.Unlock()

	rm := Removal{GameID: id}
	for i, p := range e.players {
		if p.ID != playerID {
			rm.Opponent = p
			rm.OpponentOutbox = e.outboxes[i]
		}
	}

	r.logger.Info("player removed", "game_id", id, "player_id", playerID, "opponent_id", rm.Opponent.ID)
	return rm, true
}

// Cleanup removes a game whose match is over. Games with a match in
// progress are left alone.
func (r *Registry) Cleanup(gameID string) bool {
	e, ok := r.byGame(gameID)
	if !ok || !e.lock() {
		return false
	}
	if e.session.Phase() != PhaseGameOver {
		e.mu.Unlock()
		return false
	}
	e.dead = true
	e.mu.Unlock()

	r.mu.Lock()
	if r.games[gameID] == e {
		r.unlink(e)
	}
	r.mu.Unlock()

	r.logger.Info("game cleaned up", "game_id", gameID)
	return true
}

// unlink must be called with mu held.
func (r *Registry) unlink(e *entry) {
	delete(r.games, e.id)
	for _, p := range e.players {
		if r.playerGames[p.ID] == e.id {
			delete(r.playerGames, p.ID)
		}
	}
}

// GameOf returns the id of playerID's game.
func (r *Registry) GameOf(playerID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.playerGames[playerID]
	return id, ok
}

// CurrentRound returns the game id, prompt and ticket of playerID's live round.
func (r *Registry) CurrentRound(playerID string) (string, string, Ticket, bool) {
	e, ok := r.byPlayer(playerID)
	if !ok || !e.lock() {
		return "", "", Ticket{}, false
	}
	defer e.mu.Unlock()

	t, ok := e.session.Ticket()
	if !ok {
		return "", "", Ticket{}, false
	}
	kanji, _ := e.session.CurrentKanji()
	return e.id, kanji, t, true
}

// Scores returns the scores in creation order of the players.
func (r *Registry) Scores(gameID string) ([2]int, bool) {
	e, ok := r.byGame(gameID)
	if !ok || !e.lock() {
		return [2]int{}, false
	}
	defer e.mu.Unlock()

	p1, p2 := e.session.Scores()
	return [2]int{p1, p2}, true
}

func (r *Registry) Phase(gameID string) (Phase, bool) {
	e, ok := r.byGame(gameID)
	if !ok || !e.lock() {
		return 0, false
	}
	defer e.mu.Unlock()

	return e.session.Phase(), true
}

func (r *Registry) Contains(gameID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.games[gameID]
	return ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.games)
}
