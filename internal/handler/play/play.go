// Package play serves the duel websocket endpoints.
package play

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/alsvik/yomitaisen/internal/duel"
)

type Config struct {
	OutboxSize int
	// MessageRate is the sustained number of inbound messages per second
	// allowed on one connection, with bursts up to MessageBurst.
	MessageRate  float64
	MessageBurst int
}

type Handler struct {
	engine  *duel.Engine
	lobby   *duel.Lobby
	pending *duel.PendingGames
	cfg     Config
	logger  *slog.Logger
}

func NewHandler(engine *duel.Engine, lobby *duel.Lobby, pending *duel.PendingGames, cfg Config, logger *slog.Logger) *Handler {
	return &Handler{
		engine:  engine,
		lobby:   lobby,
		pending: pending,
		cfg:     cfg,
		logger:  logger,
	}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/matchmaking", h.serveMatchmaking)
	r.Get("/ephemeral", h.serveEphemeral)
	return r
}

func (h *Handler) serveMatchmaking(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(c *conn) mode { return &matchmaking{h: h, c: c} })
}

func (h *Handler) serveEphemeral(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(c *conn) mode { return &ephemeral{h: h, c: c} })
}

// play handles the in-game messages common to both modes.
func (h *Handler) play(ctx context.Context, c *conn, playerID string, msg duel.ClientMessage) {
	switch msg.Type {
	case duel.TypeAnswer:
		err := h.engine.HandleAnswer(ctx, playerID, msg.Answer)
		switch {
		case errors.Is(err, duel.ErrWrongAnswer):
			c.send(duel.WrongAnswerMsg())
		case err != nil:
			c.logger.Debug("answer ignored", "player_id", playerID, "error", err)
		}

	case duel.TypeSkip:
		kind, err := h.engine.HandleSkip(ctx, playerID)
		switch {
		case err != nil:
			c.logger.Debug("skip ignored", "player_id", playerID, "error", err)
		case kind != duel.BothSkipped:
			c.send(duel.SkipWaitingMsg())
		}

	case duel.TypeRequestRematch:
		kind, err := h.engine.HandleRematch(ctx, playerID)
		switch {
		case errors.Is(err, duel.ErrGameNotOver):
			c.send(duel.ErrorMsg("game is still in progress"))
		case err != nil:
			c.send(duel.ErrorMsg("no game to rematch"))
		case kind != duel.RematchStart:
			c.send(duel.RematchWaitingMsg())
		}
	}
}

// startGame opens round 1 of a game between a waiting player and a newcomer.
// If the waiting player's connection closed while the game was being created,
// its disconnect may have missed the game, so the game is torn down here.
func (h *Handler) startGame(ctx context.Context, gameID string, waiting duel.Player, waitingOut *duel.Outbox) {
	if waitingOut.Closed() {
		h.engine.Disconnect(waiting.ID)
		return
	}
	h.engine.StartFirstRound(ctx, gameID)
}
