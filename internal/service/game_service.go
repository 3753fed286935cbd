package service

import (
	"fmt"

	"github.com/benbeisheim/chess-backend/internal/engine"
	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/ws"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

// GameService is what the HTTP and websocket controllers talk to. Game
// lookups go through the manager; all rules live in model.Game.
type GameService struct {
	gameManager *GameManager
}

func NewGameService(gameManager *GameManager) *GameService {
	return &GameService{
		gameManager: gameManager,
	}
}

func (gs *GameService) CreateGame() (string, error) {
	gameID := uuid.New().String()

	if _, err := gs.gameManager.CreateGame(gameID); err != nil {
		return "", fmt.Errorf("failed to create game: %w", err)
	}

	return gameID, nil
}

// JoinGame seats playerID in an existing game.
func (gs *GameService) JoinGame(gameID, playerID, name string) (model.Player, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return model.Player{}, err
	}
	return gs.join(game, playerID, name)
}

// JoinOrCreateGame seats playerID, creating the game if the code is new.
func (gs *GameService) JoinOrCreateGame(gameID, playerID, name string) (model.Player, error) {
	return gs.join(gs.gameManager.GetOrCreateGame(gameID), playerID, name)
}

func (gs *GameService) join(game *model.Game, playerID, name string) (model.Player, error) {
	wasSeated := game.IsPlayerInGame(playerID)
	player, err := game.AddPlayer(playerID, name)
	if err != nil {
		return model.Player{}, fmt.Errorf("join game %s: %w", game.ID, err)
	}
	if !wasSeated {
		log.Infof("player %s joined game %s as %s", playerID, game.ID, player.Color)
		game.Broadcast(ws.MessageTypeOpponentJoined)
	}
	return player, nil
}

func (gs *GameService) GetGameState(gameID string) (model.GameState, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return model.GameState{}, err
	}
	return game.GetState(), nil
}

func (gs *GameService) LegalMoves(gameID string, from engine.Position) ([]engine.Position, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	return game.LegalMoves(from), nil
}

func (gs *GameService) HandleMove(gameID, playerID string, move model.WSMove) (model.MoveResult, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return model.MoveResult{}, err
	}
	return game.MakeMove(playerID, move)
}

func (gs *GameService) HandlePromotion(gameID, playerID string, piece engine.PieceType) (model.MoveResult, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return model.MoveResult{}, err
	}
	return game.CompletePromotion(playerID, piece)
}

func (gs *GameService) CancelPromotion(gameID, playerID string) error {
	return gs.withGame(gameID, func(g *model.Game) error { return g.CancelPromotion(playerID) })
}

func (gs *GameService) Resign(gameID, playerID string) error {
	return gs.withGame(gameID, func(g *model.Game) error { return g.Resign(playerID) })
}

func (gs *GameService) OfferDraw(gameID, playerID string) error {
	return gs.withGame(gameID, func(g *model.Game) error { return g.OfferDraw(playerID) })
}

func (gs *GameService) AcceptDraw(gameID, playerID string) error {
	return gs.withGame(gameID, func(g *model.Game) error { return g.AcceptDraw(playerID) })
}

func (gs *GameService) Reset(gameID, playerID string) error {
	return gs.withGame(gameID, func(g *model.Game) error { return g.Reset(playerID) })
}

func (gs *GameService) withGame(gameID string, fn func(*model.Game) error) error {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return err
	}
	return fn(game)
}

func (gs *GameService) RegisterConnection(gameID, playerID string, conn model.Conn) error {
	log.Debugf("registering connection for player %s in game %s", playerID, gameID)
	return gs.withGame(gameID, func(g *model.Game) error { return g.RegisterConnection(playerID, conn) })
}

func (gs *GameService) UnregisterConnection(gameID, playerID string, conn model.Conn) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return
	}
	game.UnregisterConnection(playerID, conn)
}

// SendTo delivers a message to one player of a game; unknown games are ignored.
func (gs *GameService) SendTo(gameID, playerID string, t ws.MessageType, payload interface{}) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return
	}
	game.SendTo(playerID, t, payload)
}
