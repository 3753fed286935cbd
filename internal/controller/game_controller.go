package controller

import (
	"errors"

	"github.com/benbeisheim/chess-backend/internal/engine"
	"github.com/benbeisheim/chess-backend/internal/middleware"
	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

type GameController struct {
	gameService *service.GameService
}

func NewGameController(gameService *service.GameService) *GameController {
	return &GameController{gameService: gameService}
}

type joinRequest struct {
	Username string `json:"username"`
}

type promoteRequest struct {
	Piece string `json:"piece"`
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	gameID, err := gc.gameService.CreateGame()
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Game created",
		"game_id": gameID,
	})
}

func (gc *GameController) JoinGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	playerID := middleware.PlayerID(c)

	var req joinRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid join request")
		}
	}

	player, err := gc.gameService.JoinGame(gameID, playerID, req.Username)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Game joined",
		"color":   player.Color,
		"player":  player,
	})
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	gameState, err := gc.gameService.GetGameState(c.Params("gameId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(gameState)
}

// GetFEN exports the current position in Forsyth-Edwards notation.
func (gc *GameController) GetFEN(c *fiber.Ctx) error {
	st, err := gc.gameService.GetGameState(c.Params("gameId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"fen": engine.FEN(st.Board.Pieces, st.Turn, st.History.Moves),
	})
}

// LegalMoves answers GET /:gameId/moves?from=e2.
func (gc *GameController) LegalMoves(c *fiber.Ctx) error {
	from, ok := engine.ParseSquare(c.Query("from"))
	if !ok {
		return badRequest(c, "from must be a square such as e2")
	}
	moves, err := gc.gameService.LegalMoves(c.Params("gameId"), from)
	if err != nil {
		return respondError(c, err)
	}
	squares := make([]string, 0, len(moves))
	for _, m := range moves {
		squares = append(squares, m.Square())
	}
	return c.JSON(fiber.Map{
		"from":    from.Square(),
		"moves":   moves,
		"squares": squares,
	})
}

func (gc *GameController) MakeMove(c *fiber.Ctx) error {
	var move model.WSMove
	if err := c.BodyParser(&move); err != nil {
		return badRequest(c, "invalid move request")
	}
	result, err := gc.gameService.HandleMove(c.Params("gameId"), middleware.PlayerID(c), move)
	if err != nil {
		return respondError(c, err)
	}
	if result.PromotionRequired {
		return c.Status(fiber.StatusAccepted).JSON(result)
	}
	return c.JSON(result)
}

func (gc *GameController) Promote(c *fiber.Ctx) error {
	var req promoteRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid promotion request")
	}
	piece, ok := engine.ParsePieceType(req.Piece)
	if !ok {
		return respondError(c, model.ErrInvalidPromotion)
	}
	result, err := gc.gameService.HandlePromotion(c.Params("gameId"), middleware.PlayerID(c), piece)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

func (gc *GameController) CancelPromotion(c *fiber.Ctx) error {
	return gc.action(c, gc.gameService.CancelPromotion)
}

func (gc *GameController) Resign(c *fiber.Ctx) error {
	return gc.action(c, gc.gameService.Resign)
}

func (gc *GameController) OfferDraw(c *fiber.Ctx) error {
	return gc.action(c, gc.gameService.OfferDraw)
}

func (gc *GameController) AcceptDraw(c *fiber.Ctx) error {
	return gc.action(c, gc.gameService.AcceptDraw)
}

func (gc *GameController) Reset(c *fiber.Ctx) error {
	return gc.action(c, gc.gameService.Reset)
}

// action runs a state change and answers with the resulting game state.
func (gc *GameController) action(c *fiber.Ctx, fn func(gameID, playerID string) error) error {
	gameID := c.Params("gameId")
	if err := fn(gameID, middleware.PlayerID(c)); err != nil {
		return respondError(c, err)
	}
	return gc.GetGameState(c)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, model.ErrNotInGame):
		return fiber.StatusForbidden
	case errors.Is(err, model.ErrGameFull),
		errors.Is(err, service.ErrGameExists),
		errors.Is(err, model.ErrGameInProgress),
		errors.Is(err, model.ErrGameNotInProgress),
		errors.Is(err, model.ErrNotYourTurn),
		errors.Is(err, model.ErrPromotionPending),
		errors.Is(err, model.ErrNoDrawOffer),
		errors.Is(err, model.ErrDrawOfferedByPlayer):
		return fiber.StatusConflict
	case errors.Is(err, model.ErrIllegalMove),
		errors.Is(err, model.ErrNotYourPiece),
		errors.Is(err, model.ErrInvalidPromotion),
		errors.Is(err, model.ErrNoPendingPromotion):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func respondError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		log.Errorf("%s %s: %v", c.Method(), c.Path(), err)
		return c.Status(status).JSON(fiber.Map{
			"error": "internal error",
		})
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
	})
}
