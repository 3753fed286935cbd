package model

import "github.com/benbeisheim/chess-backend/internal/engine"

// WSMove is a move request as submitted by a player.
type WSMove struct {
	From      engine.Position  `json:"from"`
	To        engine.Position  `json:"to"`
	Promotion engine.PieceType `json:"promotion,omitempty"`
}

// MoveResult tells the mover whether the move was committed or still waits
// for a promotion choice.
type MoveResult struct {
	PromotionRequired bool              `json:"promotionRequired"`
	From              engine.Position   `json:"from"`
	To                engine.Position   `json:"to"`
	Notation          string            `json:"notation,omitempty"`
	Status            engine.GameStatus `json:"status"`
}

type BoardPayload struct {
	Pieces engine.Board `json:"pieces"`
}

type HistoryPayload struct {
	Moves    []engine.Move `json:"moves"`
	LastMove *engine.Move  `json:"lastMove"`
	Notation []string      `json:"notation"`
}
