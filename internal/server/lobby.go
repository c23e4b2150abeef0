package server

import (
	"net/http"

	"github.com/alsvik/yomitaisen/internal/duel"
)

// LobbyLister lists invite games waiting for a guest.
type LobbyLister interface {
	List() []duel.LobbyGame
}

func handleLobby(lobby LobbyLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		games := lobby.List()
		if games == nil {
			games = []duel.LobbyGame{}
		}
		writeJSON(w, http.StatusOK, LobbyResponse{Games: games})
	}
}
