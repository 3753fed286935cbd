package model

import "github.com/benbeisheim/chess-backend/internal/engine"

type Player struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Color engine.Color `json:"color"`
}
