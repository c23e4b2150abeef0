package play

import (
	"context"
	"errors"

	"github.com/alsvik/yomitaisen/internal/duel"
)

// matchmaking pairs anonymous players first come, first served. The client
// supplies its own id, which is also the name its opponent sees.
type matchmaking struct {
	h      *Handler
	c      *conn
	player *duel.Player
}

func (m *matchmaking) handle(ctx context.Context, msg duel.ClientMessage) {
	switch msg.Type {
	case duel.TypeJoin:
		m.join(ctx, msg.UserID)
	case duel.TypeAnswer, duel.TypeSkip, duel.TypeRequestRematch:
		if m.player == nil {
			m.c.send(duel.ErrorMsg("join first"))
			return
		}
		m.h.play(ctx, m.c, m.player.ID, msg)
	default:
		m.c.send(duel.ErrorMsg("unsupported message: " + msg.Type))
	}
}

func (m *matchmaking) join(ctx context.Context, userID string) {
	engine := m.h.engine
	if m.player != nil {
		// A player whose game was torn down may queue again.
		waiting, ok := m.h.lobby.Waiting()
		_, playing := engine.Registry().GameOf(m.player.ID)
		if playing || ok && waiting == m.player.ID {
			m.c.send(duel.ErrorMsg("already joined"))
			return
		}
	}
	if userID == "" {
		m.c.send(duel.ErrorMsg("user_id is required"))
		return
	}
	if _, ok := engine.Registry().GameOf(userID); ok {
		m.c.send(duel.ErrorMsg("already in a game"))
		return
	}

	me := duel.Player{ID: userID, Name: userID}
	match := m.h.lobby.TryMatch(me.ID, m.c.out)
	if match.Duplicate {
		m.c.send(duel.ErrorMsg("already waiting"))
		return
	}
	m.player = &me
	if !match.Matched {
		m.c.send(duel.WaitingMsg())
		return
	}

	opponent := duel.Player{ID: match.OpponentID, Name: match.OpponentID}
	gameID, err := engine.Registry().Create(opponent, me, match.Opponent, m.c.out)
	if errors.Is(err, duel.ErrPlayerInGame) {
		// The same user id joined from another connection.
		m.c.send(duel.ErrorMsg("already in a game"))
		match.Opponent.Send(duel.ErrorMsg("matched player unavailable, join again"))
		return
	}
	if err != nil {
		m.c.logger.Error("creating game", "error", err)
		m.c.send(duel.ErrorMsg("could not start game"))
		return
	}
	m.c.logger.Info("players matched", "game_id", gameID, "player1", opponent.ID, "player2", me.ID)
	m.h.startGame(ctx, gameID, opponent, match.Opponent)
}

func (m *matchmaking) disconnect() {
	if m.player == nil {
		return
	}
	m.h.lobby.RemoveWaiting(m.player.ID)
	m.h.engine.Disconnect(m.player.ID)
}
