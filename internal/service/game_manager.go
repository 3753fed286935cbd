// service/game_manager.go
package service

import (
	"errors"
	"sync"

	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/gofiber/fiber/v2/log"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
)

// GameManager keeps every live game in memory, keyed by game id.
type GameManager struct {
	games map[string]*model.Game
	mu    sync.RWMutex
}

func NewGameManager() *GameManager {
	return &GameManager{
		games: make(map[string]*model.Game),
	}
}

func (gm *GameManager) CreateGame(gameID string) (*model.Game, error) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[gameID]; exists {
		return nil, ErrGameExists
	}

	game := model.NewGame(gameID)
	gm.games[gameID] = game
	log.Infof("created game %s", gameID)
	return game, nil
}

func (gm *GameManager) GetGame(gameID string) (*model.Game, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	game, exists := gm.games[gameID]
	if !exists {
		return nil, ErrGameNotFound
	}

	return game, nil
}

// GetOrCreateGame returns the game with gameID, creating it on first use so
// that a shared code is enough for two players to meet.
func (gm *GameManager) GetOrCreateGame(gameID string) *model.Game {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if game, exists := gm.games[gameID]; exists {
		return game
	}
	game := model.NewGame(gameID)
	gm.games[gameID] = game
	log.Infof("created game %s on join", gameID)
	return game
}

func (gm *GameManager) RemoveGame(gameID string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	delete(gm.games, gameID)
}

func (gm *GameManager) Count() int {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	return len(gm.games)
}
