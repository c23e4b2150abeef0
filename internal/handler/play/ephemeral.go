package play

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/alsvik/yomitaisen/internal/duel"
)

// ephemeral lets a host share a short code that exactly one guest can join.
// Players are identified per connection; names are for display only.
type ephemeral struct {
	h      *Handler
	c      *conn
	player *duel.Player
	// code is the pending game this connection hosts, if any.
	code string
}

func (m *ephemeral) handle(ctx context.Context, msg duel.ClientMessage) {
	switch msg.Type {
	case duel.TypeCreateGame:
		m.create(msg.PlayerName)
	case duel.TypeJoinGame:
		m.join(ctx, msg.GameID, msg.PlayerName)
	case duel.TypeAnswer, duel.TypeSkip, duel.TypeRequestRematch:
		if m.player == nil {
			m.c.send(duel.ErrorMsg("create or join a game first"))
			return
		}
		m.h.play(ctx, m.c, m.player.ID, msg)
	default:
		m.c.send(duel.ErrorMsg("unsupported message: " + msg.Type))
	}
}

// busy reports whether this connection still hosts a pending game or plays
// in a live one. A player whose game ended and was removed may start over.
func (m *ephemeral) busy() bool {
	if m.player == nil {
		return false
	}
	if _, ok := m.h.engine.Registry().GameOf(m.player.ID); ok {
		return true
	}
	return m.code != "" && m.h.pending.Hosts(m.code, m.player.ID)
}

func (m *ephemeral) create(name string) {
	if m.busy() {
		m.c.send(duel.ErrorMsg("already in a game"))
		return
	}
	name = strings.TrimSpace(name)
	if name == "" {
		m.c.send(duel.ErrorMsg("player_name is required"))
		return
	}

	me := duel.Player{ID: uuid.NewString(), Name: name}
	m.player = &me
	m.code = m.h.pending.Create(me, m.c.out, m.h.engine.Registry().Contains)

	m.c.logger.Info("game created", "game_id", m.code, "player_id", me.ID)
	m.c.send(duel.GameCreatedMsg(m.code))
	m.c.send(duel.WaitingForOpponentMsg())
}

func (m *ephemeral) join(ctx context.Context, code, name string) {
	if m.busy() {
		m.c.send(duel.ErrorMsg("already in a game"))
		return
	}
	name = strings.TrimSpace(name)
	if name == "" {
		m.c.send(duel.ErrorMsg("player_name is required"))
		return
	}
	code = strings.ToLower(strings.TrimSpace(code))

	host, err := m.take(code)
	switch {
	case errors.Is(err, duel.ErrGameFull):
		m.c.send(duel.GameFullMsg())
		return
	case err != nil:
		m.c.send(duel.GameNotFoundMsg())
		return
	}

	if name == host.Host.Name {
		name += " (2)"
	}
	me := duel.Player{ID: uuid.NewString(), Name: name}
	if err := m.h.engine.Registry().CreateWithID(code, host.Host, me, host.Outbox, m.c.out); err != nil {
		m.c.logger.Error("creating game", "game_id", code, "error", err)
		m.c.send(duel.ErrorMsg("could not start game"))
		return
	}
	m.player = &me
	m.code = ""

	m.c.logger.Info("guest joined", "game_id", code, "player_id", me.ID)
	host.Outbox.Send(duel.OpponentJoinedMsg(me.Name))
	m.h.startGame(ctx, code, host.Host, host.Outbox)
}

// take claims the pending game under code for this guest.
func (m *ephemeral) take(code string) (duel.PendingGame, error) {
	if g, ok := m.h.pending.Take(code); ok {
		return g, nil
	}
	if m.h.engine.Registry().Contains(code) {
		return duel.PendingGame{}, duel.ErrGameFull
	}
	return duel.PendingGame{}, duel.ErrGameNotFound
}

func (m *ephemeral) disconnect() {
	if m.player == nil {
		return
	}
	if m.code != "" {
		m.h.pending.Remove(m.code, m.player.ID)
	}
	m.h.engine.Disconnect(m.player.ID)
}
