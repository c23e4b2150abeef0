package duel

import "errors"

var (
	ErrNoWords       = errors.New("no words available")
	ErrNotInGame     = errors.New("player is not in a game")
	ErrNoActiveRound = errors.New("no active round")
	ErrWrongAnswer   = errors.New("wrong answer")
	ErrRoundActive   = errors.New("round already active")
	ErrRoundOrder    = errors.New("round out of order")
	ErrGameOver      = errors.New("game is over")
	ErrGameNotOver   = errors.New("game is still in progress")
	ErrUnknownPlayer = errors.New("unknown player")
	ErrPlayerInGame  = errors.New("player already in a game")
	ErrGameExists    = errors.New("game already exists")
	ErrGameFull      = errors.New("game is full")
	ErrGameNotFound  = errors.New("game not found")
)
