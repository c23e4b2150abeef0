package duel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time           { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newPendingGames(maxAge time.Duration) (*PendingGames, *clock) {
	c := &clock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	p := NewPendingGames(maxAge)
	p.now = c.now
	return p, c
}

func TestPendingGames(t *testing.T) {
	p, c := newPendingGames(5 * time.Minute)
	host := Player{ID: "h", Name: "Hana"}

	code := p.Create(host, NewOutbox(1), nil)
	require.Len(t, code, CodeLength)

	t.Run("take removes the game", func(t *testing.T) {
		g, ok := p.Take(code)
		require.True(t, ok)
		assert.Equal(t, host, g.Host)

		_, ok = p.Take(code)
		assert.False(t, ok, "second guest")
	})

	t.Run("remove requires the host", func(t *testing.T) {
		code := p.Create(host, NewOutbox(1), nil)
		assert.False(t, p.Remove(code, "someone"))
		assert.True(t, p.Remove(code, host.ID))
		assert.Zero(t, p.Len())
	})

	t.Run("codes avoid live games", func(t *testing.T) {
		calls := 0
		code := p.Create(host, NewOutbox(1), func(string) bool {
			calls++
			return calls == 1
		})
		assert.Equal(t, 2, calls)
		assert.True(t, p.Remove(code, host.ID))
	})

	t.Run("expired games are hidden and unjoinable", func(t *testing.T) {
		old := p.Create(Player{ID: "o", Name: "Old"}, NewOutbox(1), nil)
		c.advance(4 * time.Minute)
		fresh := p.Create(Player{ID: "f", Name: "Fresh"}, NewOutbox(1), nil)
		c.advance(90 * time.Second)

		games := p.List()
		require.Len(t, games, 1)
		assert.Equal(t, fresh, games[0].GameID)
		assert.Equal(t, "Fresh", games[0].HostName)
		assert.Equal(t, int64(90), games[0].CreatedAtSecs)

		_, ok := p.Take(old)
		assert.False(t, ok)

		c.advance(5 * time.Minute)
		assert.Equal(t, 1, p.Sweep())
		assert.Zero(t, p.Len())
	})
}

func TestPendingGamesListOrder(t *testing.T) {
	p, c := newPendingGames(0)

	first := p.Create(Player{ID: "1", Name: "One"}, nil, nil)
	c.advance(time.Second)
	second := p.Create(Player{ID: "2", Name: "Two"}, nil, nil)
	c.advance(time.Hour)

	games := p.List()
	require.Len(t, games, 2)
	assert.Equal(t, first, games[0].GameID)
	assert.Equal(t, second, games[1].GameID)
	assert.Zero(t, p.Sweep(), "zero max age never expires")
}
