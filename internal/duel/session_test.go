package duel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = Player{ID: "a", Name: "Alice"}
	bob   = Player{ID: "b", Name: "Bob"}

	nihon = Word{Kanji: "日本", Reading: "にほん", Alternates: []string{"にっぽん"}}
	yama  = Word{Kanji: "山", Reading: "やま"}
)

func newSession(rules Rules) *Session {
	return NewSession(alice, bob, rules)
}

func TestSessionStartRound(t *testing.T) {
	s := newSession(Rules{WinsNeeded: 3})
	assert.Equal(t, PhaseNoRound, s.Phase())

	require.NoError(t, s.StartRound(1, nihon))
	assert.Equal(t, PhaseRoundActive, s.Phase())

	t.Run("live round is never replaced", func(t *testing.T) {
		assert.ErrorIs(t, s.StartRound(2, yama), ErrRoundActive)
		kanji, ok := s.CurrentKanji()
		assert.True(t, ok)
		assert.Equal(t, "日本", kanji)
	})

	t.Run("rounds must be consecutive", func(t *testing.T) {
		_, ok := s.TimeoutRound()
		require.True(t, ok)
		assert.ErrorIs(t, s.StartRound(3, yama), ErrRoundOrder)
		assert.ErrorIs(t, s.StartRound(1, yama), ErrRoundOrder)
		assert.NoError(t, s.StartRound(2, yama))
	})
}

func TestSessionSubmitAnswer(t *testing.T) {
	s := newSession(Rules{WinsNeeded: 3})
	require.NoError(t, s.StartRound(1, nihon))

	_, ok := s.SubmitAnswer(alice.ID, "にほんご")
	assert.False(t, ok, "wrong answer")
	_, ok = s.SubmitAnswer("stranger", "にほん")
	assert.False(t, ok, "unknown player")
	assert.Equal(t, PhaseRoundActive, s.Phase())

	out, ok := s.SubmitAnswer(bob.ID, "にっぽん")
	require.True(t, ok)
	require.NotNil(t, out.Winner)
	assert.Equal(t, bob, *out.Winner)
	assert.Equal(t, "にほん", out.CorrectReading)
	assert.Equal(t, PhaseNoRound, s.Phase())

	_, ok = s.SubmitAnswer(alice.ID, "にほん")
	assert.False(t, ok, "duplicate answer after resolution")
}

func TestSessionExactlyOnceResolution(t *testing.T) {
	s := newSession(Rules{})
	require.NoError(t, s.StartRound(1, yama))

	_, ok := s.SubmitAnswer(alice.ID, "やま")
	require.True(t, ok)

	_, ok = s.TimeoutRound()
	assert.False(t, ok)
	_, ok = s.RecordSkip(bob.ID)
	assert.False(t, ok)
	_, ok = s.SubmitAnswer(bob.ID, "やま")
	assert.False(t, ok)
}

func TestSessionRecordSkip(t *testing.T) {
	s := newSession(Rules{})
	require.NoError(t, s.StartRound(1, yama))

	res, ok := s.RecordSkip(alice.ID)
	require.True(t, ok)
	assert.Equal(t, WaitingForOpponent, res.Kind)

	res, ok = s.RecordSkip(alice.ID)
	require.True(t, ok)
	assert.Equal(t, AlreadySkipped, res.Kind)

	_, ok = s.RecordSkip("stranger")
	assert.False(t, ok)

	res, ok = s.RecordSkip(bob.ID)
	require.True(t, ok)
	assert.Equal(t, BothSkipped, res.Kind)
	assert.Nil(t, res.Outcome.Winner)
	assert.Equal(t, "やま", res.Outcome.CorrectReading)
	assert.Equal(t, PhaseNoRound, s.Phase())

	t.Run("skip flags reset each round", func(t *testing.T) {
		require.NoError(t, s.StartRound(2, nihon))
		res, ok := s.RecordSkip(bob.ID)
		require.True(t, ok)
		assert.Equal(t, WaitingForOpponent, res.Kind)
	})
}

func TestSessionTimeoutRound(t *testing.T) {
	s := newSession(Rules{})
	_, ok := s.TimeoutRound()
	assert.False(t, ok)

	require.NoError(t, s.StartRound(1, nihon))
	out, ok := s.TimeoutRound()
	require.True(t, ok)
	assert.Nil(t, out.Winner)
	assert.Equal(t, "にほん", out.CorrectReading)
}

func TestSessionSettle(t *testing.T) {
	t.Run("first to wins needed", func(t *testing.T) {
		s := newSession(Rules{WinsNeeded: 2, MaxRounds: 10})
		s.RecordWin(alice.ID)
		assert.False(t, s.Settle(1).Over)

		s.RecordWin(alice.ID)
		v := s.Settle(2)
		assert.True(t, v.Over)
		require.NotNil(t, v.Winner)
		assert.Equal(t, alice, *v.Winner)
		assert.Equal(t, PhaseGameOver, s.Phase())
	})

	t.Run("max rounds higher score wins", func(t *testing.T) {
		s := newSession(Rules{WinsNeeded: 5, MaxRounds: 3})
		s.RecordWin(bob.ID)
		assert.False(t, s.Settle(2).Over)

		v := s.Settle(3)
		assert.True(t, v.Over)
		require.NotNil(t, v.Winner)
		assert.Equal(t, bob, *v.Winner)
	})

	t.Run("max rounds tie is a draw", func(t *testing.T) {
		s := newSession(Rules{WinsNeeded: 5, MaxRounds: 2})
		s.RecordWin(alice.ID)
		s.RecordWin(bob.ID)

		v := s.Settle(2)
		assert.True(t, v.Over)
		assert.Nil(t, v.Winner)
	})

	t.Run("no start after game over", func(t *testing.T) {
		s := newSession(Rules{WinsNeeded: 1})
		s.RecordWin(bob.ID)
		require.True(t, s.Settle(1).Over)
		assert.ErrorIs(t, s.StartRound(1, yama), ErrGameOver)
	})

	t.Run("winner does not alias session state", func(t *testing.T) {
		s := newSession(Rules{WinsNeeded: 1})
		s.RecordWin(alice.ID)
		v := s.Settle(1)
		v.Winner.Name = "changed"
		p1, _ := s.Players()
		assert.Equal(t, "Alice", p1.Name)
	})
}

func TestSessionRequestRematch(t *testing.T) {
	s := newSession(Rules{WinsNeeded: 1})

	_, err := s.RequestRematch(alice.ID)
	assert.ErrorIs(t, err, ErrGameNotOver)

	require.NoError(t, s.StartRound(1, yama))
	_, ok := s.SubmitAnswer(alice.ID, "やま")
	require.True(t, ok)
	s.RecordWin(alice.ID)
	require.True(t, s.Settle(1).Over)

	_, err = s.RequestRematch("stranger")
	assert.ErrorIs(t, err, ErrUnknownPlayer)

	kind, err := s.RequestRematch(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, RematchWaiting, kind)

	kind, err = s.RequestRematch(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, RematchAlreadyRequested, kind)

	kind, err = s.RequestRematch(bob.ID)
	require.NoError(t, err)
	assert.Equal(t, RematchStart, kind)

	p1, p2 := s.Scores()
	assert.Zero(t, p1)
	assert.Zero(t, p2)
	assert.Equal(t, 2, s.Match())
	assert.Equal(t, PhaseNoRound, s.Phase())
	assert.NoError(t, s.StartRound(1, nihon), "rematch restarts at round 1")
}

func TestSessionOpponent(t *testing.T) {
	s := newSession(Rules{})

	opp, ok := s.Opponent(alice.ID)
	assert.True(t, ok)
	assert.Equal(t, bob, opp)

	_, ok = s.Opponent("stranger")
	assert.False(t, ok)
}

func TestWordAccepts(t *testing.T) {
	assert.True(t, nihon.Accepts("にほん"))
	assert.True(t, nihon.Accepts("にっぽん"))
	assert.False(t, nihon.Accepts("ニホン"))
	assert.False(t, nihon.Accepts(""))
}
