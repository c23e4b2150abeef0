package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
	"github.com/swaggest/swgui/v5emb"

	"github.com/alsvik/yomitaisen/internal/duel"
)

// HealthCheck is the result of one dependency check.
type HealthCheck struct {
	Status     string `json:"status" enum:"ok,error"`
	DurationMS int64  `json:"duration_ms"`
}

// HealthResponse maps dependency names to their check results.
type HealthResponse map[string]HealthCheck

// LobbyResponse lists invite games that are still waiting for a guest.
type LobbyResponse struct {
	Games []duel.LobbyGame `json:"games"`
}

const wsProtocol = "Messages are JSON objects with a snake_case \"type\" field. " +
	"In-game messages (answer, skip, request_rematch) are accepted on both endpoints once the " +
	"player is identified. Server messages: round_start, round_result, wrong_answer, skip_waiting, " +
	"rematch_waiting, opponent_disconnected, game_start, game_end, error."

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Yomitaisen API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Matchmaking and game sessions for the kanji reading duel.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of the dictionary database, its contents and the readings cache.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /lobby
	getLobby, _ := r.NewOperationContext(http.MethodGet, "/lobby")
	getLobby.SetSummary("List open games")
	getLobby.SetDescription("Returns invite games waiting for a guest, oldest first. created_at_secs is the age in seconds.")
	getLobby.AddRespStructure(LobbyResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getLobby)

	// GET /ws/matchmaking
	getMatchmaking, _ := r.NewOperationContext(http.MethodGet, "/ws/matchmaking")
	getMatchmaking.SetSummary("Anonymous matchmaking")
	getMatchmaking.SetDescription("Upgrades to a WebSocket. Send {\"type\":\"join\",\"user_id\":...} to be paired " +
		"with the next player; the first player receives waiting. " + wsProtocol)
	getMatchmaking.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("application/json"))
	_ = r.AddOperation(getMatchmaking)

	// GET /ws/ephemeral
	getEphemeral, _ := r.NewOperationContext(http.MethodGet, "/ws/ephemeral")
	getEphemeral.SetSummary("Invite code games")
	getEphemeral.SetDescription("Upgrades to a WebSocket. Hosts send create_game{player_name} and receive " +
		"game_created{game_id}; guests send join_game{game_id, player_name} and may receive game_full or " +
		"game_not_found. " + wsProtocol)
	getEphemeral.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("application/json"))
	_ = r.AddOperation(getEphemeral)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

func handleSwaggerUI() http.HandlerFunc {
	return v5emb.New("Yomitaisen API", "/openapi.json", "/docs").ServeHTTP
}
