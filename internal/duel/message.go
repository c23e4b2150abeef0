package duel

import "encoding/json"

// Inbound message types.
const (
	TypeJoin           = "join"
	TypeCreateGame     = "create_game"
	TypeJoinGame       = "join_game"
	TypeAnswer         = "answer"
	TypeSkip           = "skip"
	TypeRequestRematch = "request_rematch"
)

// Outbound message types.
const (
	TypeWaiting              = "waiting"
	TypeGameCreated          = "game_created"
	TypeWaitingForOpponent   = "waiting_for_opponent"
	TypeOpponentJoined       = "opponent_joined"
	TypeGameFull             = "game_full"
	TypeGameNotFound         = "game_not_found"
	TypeGameStart            = "game_start"
	TypeRoundStart           = "round_start"
	TypeRoundResult          = "round_result"
	TypeWrongAnswer          = "wrong_answer"
	TypeSkipWaiting          = "skip_waiting"
	TypeRematchWaiting       = "rematch_waiting"
	TypeOpponentDisconnected = "opponent_disconnected"
	TypeGameEnd              = "game_end"
	TypeError                = "error"
)

// ClientMessage is any message a player sends.
type ClientMessage struct {
	Type       string `json:"type"`
	UserID     string `json:"user_id,omitempty"`
	PlayerName string `json:"player_name,omitempty"`
	GameID     string `json:"game_id,omitempty"`
	Answer     string `json:"answer,omitempty"`
}

// ServerMessage is any message sent to a player. Only the fields relevant to
// Type are set.
type ServerMessage struct {
	Type           string  `json:"type"`
	GameID         string  `json:"game_id,omitempty"`
	OpponentName   string  `json:"opponent_name,omitempty"`
	Opponent       string  `json:"opponent,omitempty"`
	Kanji          string  `json:"kanji,omitempty"`
	Round          int     `json:"round,omitempty"`
	Winner         *string `json:"winner,omitempty"`
	CorrectReading string  `json:"correct_reading,omitempty"`
	Message        string  `json:"message,omitempty"`
}

// MarshalJSON always emits winner for results so a draw encodes as null.
func (m ServerMessage) MarshalJSON() ([]byte, error) {
	type wire ServerMessage
	switch m.Type {
	case TypeRoundResult, TypeGameEnd:
		return json.Marshal(struct {
			wire
			Winner *string `json:"winner"`
		}{wire(m), m.Winner})
	}
	return json.Marshal(wire(m))
}

func winnerName(p *Player) *string {
	if p == nil {
		return nil
	}
	name := p.Name
	return &name
}

func WaitingMsg() ServerMessage { return ServerMessage{Type: TypeWaiting} }

func GameCreatedMsg(code string) ServerMessage {
	return ServerMessage{Type: TypeGameCreated, GameID: code}
}

func WaitingForOpponentMsg() ServerMessage { return ServerMessage{Type: TypeWaitingForOpponent} }

func OpponentJoinedMsg(name string) ServerMessage {
	return ServerMessage{Type: TypeOpponentJoined, OpponentName: name}
}

func GameFullMsg() ServerMessage     { return ServerMessage{Type: TypeGameFull} }
func GameNotFoundMsg() ServerMessage { return ServerMessage{Type: TypeGameNotFound} }

func GameStartMsg(opponent string) ServerMessage {
	return ServerMessage{Type: TypeGameStart, Opponent: opponent}
}

func RoundStartMsg(kanji string, round int) ServerMessage {
	return ServerMessage{Type: TypeRoundStart, Kanji: kanji, Round: round}
}

func RoundResultMsg(o Outcome) ServerMessage {
	return ServerMessage{Type: TypeRoundResult, Winner: winnerName(o.Winner), CorrectReading: o.CorrectReading}
}

func WrongAnswerMsg() ServerMessage          { return ServerMessage{Type: TypeWrongAnswer} }
func SkipWaitingMsg() ServerMessage          { return ServerMessage{Type: TypeSkipWaiting} }
func RematchWaitingMsg() ServerMessage       { return ServerMessage{Type: TypeRematchWaiting} }
func OpponentDisconnectedMsg() ServerMessage { return ServerMessage{Type: TypeOpponentDisconnected} }

func GameEndMsg(winner *Player) ServerMessage {
	return ServerMessage{Type: TypeGameEnd, Winner: winnerName(winner)}
}

func ErrorMsg(message string) ServerMessage {
	return ServerMessage{Type: TypeError, Message: message}
}
