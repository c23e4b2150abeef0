package duel

// Player is one side of a duel. ID is unique per connection; Name is what the
// opponent sees.
type Player struct {
	ID   string
	Name string
}

// Rules decide when a match ends.
type Rules struct {
	// WinsNeeded is the score that ends the match immediately.
	WinsNeeded int
	// MaxRounds ends the match by score comparison. Zero means unlimited.
	MaxRounds int
}

// Ticket identifies one round of one match within a session. Match is bumped
// by every rematch so a timer armed for an earlier match can never resolve a
// round of a later one.
type Ticket struct {
	Match int
	Round int
}

// Next is the ticket of the round that follows t.
func (t Ticket) Next() Ticket {
	return Ticket{Match: t.Match, Round: t.Round + 1}
}

// Outcome is the result of a resolved round. Winner is nil when nobody
// answered (timeout or both skipped).
type Outcome struct {
	Winner         *Player
	CorrectReading string
}

// Verdict is the continue-or-end decision taken after a round resolves.
// Winner is nil on a draw.
type Verdict struct {
	Over   bool
	Winner *Player
}

type Phase int

const (
	PhaseNoRound Phase = iota
	PhaseRoundActive
	PhaseGameOver
)

func (p Phase) String() string {
	switch p {
	case PhaseNoRound:
		return "no_round"
	case PhaseRoundActive:
		return "round_active"
	case PhaseGameOver:
		return "game_over"
	}
	return "unknown"
}

type SkipKind int

const (
	AlreadySkipped SkipKind = iota + 1
	WaitingForOpponent
	BothSkipped
)

// SkipResult carries the outcome only when Kind is BothSkipped.
type SkipResult struct {
	Kind    SkipKind
	Outcome Outcome
}

type RematchKind int

const (
	RematchWaiting RematchKind = iota + 1
	RematchAlreadyRequested
	RematchStart
)

type round struct {
	number  int
	word    Word
	skipped [2]bool
}

// Session is the pure state of one two-player duel. It does no locking; the
// registry serializes every call for a given game.
type Session struct {
	players   [2]Player
	scores    [2]int
	rules     Rules
	match     int
	lastRound int
	current   *round
	over      bool
	rematch   [2]bool
}

func NewSession(a, b Player, rules Rules) *Session {
	return &Session{
		players: [2]Player{a, b},
		rules:   rules,
		match:   1,
	}
}

func (s *Session) slot(playerID string) int {
	switch playerID {
	case s.players[0].ID:
		return 0
	case s.players[1].ID:
		return 1
	}
	return -1
}

func (s *Session) Players() (Player, Player) {
	return s.players[0], s.players[1]
}

func (s *Session) HasPlayer(playerID string) bool {
	return s.slot(playerID) >= 0
}

// Opponent returns the player in the other slot.
func (s *Session) Opponent(playerID string) (Player, bool) {
	i := s.slot(playerID)
	if i < 0 {
		return Player{}, false
	}
	return s.players[1-i], true
}

func (s *Session) Scores() (int, int) {
	return s.scores[0], s.scores[1]
}

func (s *Session) Phase() Phase {
	switch {
	case s.over:
		return PhaseGameOver
	case s.current != nil:
		return PhaseRoundActive
	}
	return PhaseNoRound
}

func (s *Session) Match() int { return s.match }

// Ticket returns the ticket of the live round.
func (s *Session) Ticket() (Ticket, bool) {
	if s.current == nil {
		return Ticket{}, false
	}
	return Ticket{Match: s.match, Round: s.current.number}, true
}

// CurrentRoundNumber returns the ordinal of the live round.
func (s *Session) CurrentRoundNumber() (int, bool) {
	if s.current == nil {
		return 0, false
	}
	return s.current.number, true
}

func (s *Session) CurrentKanji() (string, bool) {
	if s.current == nil {
		return "", false
	}
	return s.current.word.Kanji, true
}

// StartRound opens round number with word. A live round is never replaced.
func (s *Session) StartRound(number int, word Word) error {
	if s.over {
		return ErrGameOver
	}
	if s.current != nil {
		return ErrRoundActive
	}
	if number != s.lastRound+1 {
		return ErrRoundOrder
	}
	s.current = &round{number: number, word: word}
	s.lastRound = number
	return nil
}

// SubmitAnswer resolves the round in favour of playerID when text is an
// accepted reading. It reports false and leaves state untouched otherwise.
func (s *Session) SubmitAnswer(playerID, text string) (Outcome, bool) {
	if s.current == nil || !s.HasPlayer(playerID) {
		return Outcome{}, false
	}
	if !s.current.word.Accepts(text) {
		return Outcome{}, false
	}
	return s.AcceptAnswer(playerID)
}

// AcceptAnswer resolves the round in favour of playerID without checking the
// answer. Used when the reading was validated against the dictionary.
func (s *Session) AcceptAnswer(playerID string) (Outcome, bool) {
	i := s.slot(playerID)
	if s.current == nil || i < 0 {
		return Outcome{}, false
	}
	winner := s.players[i]
	out := Outcome{Winner: &winner, CorrectReading: s.current.word.Reading}
	s.current = nil
	return out, true
}

// RecordSkip marks playerID as wanting to skip. The round resolves with no
// winner once both players skipped.
func (s *Session) RecordSkip(playerID string) (SkipResult, bool) {
	i := s.slot(playerID)
	if s.current == nil || i < 0 {
		return SkipResult{}, false
	}
	if s.current.skipped[i] {
		return SkipResult{Kind: AlreadySkipped}, true
	}
	s.current.skipped[i] = true
	if !s.current.skipped[1-i] {
		return SkipResult{Kind: WaitingForOpponent}, true
	}
	out := Outcome{CorrectReading: s.current.word.Reading}
	s.current = nil
	return SkipResult{Kind: BothSkipped, Outcome: out}, true
}

// TimeoutRound force-resolves the live round with no winner. It reports
// false when the round was already resolved by another path.
func (s *Session) TimeoutRound() (Outcome, bool) {
	if s.current == nil {
		return Outcome{}, false
	}
	out := Outcome{CorrectReading: s.current.word.Reading}
	s.current = nil
	return out, true
}

func (s *Session) RecordWin(playerID string) {
	if i := s.slot(playerID); i >= 0 {
		s.scores[i]++
	}
}

// GameWinner returns the first player to reach WinsNeeded.
func (s *Session) GameWinner() (Player, bool) {
	if s.rules.WinsNeeded <= 0 {
		return Player{}, false
	}
	for i, score := range s.scores {
		if score >= s.rules.WinsNeeded {
			return s.players[i], true
		}
	}
	return Player{}, false
}

// Settle decides whether the match is over after round number resolved and
// moves the session to PhaseGameOver if so.
func (s *Session) Settle(number int) Verdict {
	if s.over {
		return Verdict{Over: true}
	}
	if p, ok := s.GameWinner(); ok {
		s.finish()
		return Verdict{Over: true, Winner: &p}
	}
	if s.rules.MaxRounds <= 0 || number < s.rules.MaxRounds {
		return Verdict{}
	}
	s.finish()
	var winner Player
	switch {
	case s.scores[0] > s.scores[1]:
		winner = s.players[0]
	case s.scores[1] > s.scores[0]:
		winner = s.players[1]
	default:
		return Verdict{Over: true}
	}
	return Verdict{Over: true, Winner: &winner}
}

func (s *Session) finish() {
	s.over = true
	s.current = nil
	s.rematch = [2]bool{}
}

// RequestRematch records that playerID wants another match. When both did,
// scores reset and the session is ready for round 1 of the next match.
func (s *Session) RequestRematch(playerID string) (RematchKind, error) {
	i := s.slot(playerID)
	if i < 0 {
		return 0, ErrUnknownPlayer
	}
	if !s.over {
		return 0, ErrGameNotOver
	}
	if s.rematch[i] {
		return RematchAlreadyRequested, nil
	}
	s.rematch[i] = true
	if !s.rematch[1-i] {
		return RematchWaiting, nil
	}
	s.match++
	s.scores = [2]int{}
	s.lastRound = 0
	s.over = false
	s.rematch = [2]bool{}
	return RematchStart, nil
}
