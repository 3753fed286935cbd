package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/benbeisheim/chess-backend/internal/engine"
	"github.com/benbeisheim/chess-backend/internal/middleware"
	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/service"
	"github.com/benbeisheim/chess-backend/internal/ws"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"
)

var errUnknownMessage = errors.New("unknown message type")

type WebSocketController struct {
	gameService *service.GameService
}

func NewWebSocketController(gameService *service.GameService) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
	}
}

// lockedConn serializes writes; the read loop and game broadcasts both write
// to the same socket.
type lockedConn struct {
	mu   sync.Mutex
	conn model.Conn
}

func (l *lockedConn) WriteJSON(v interface{}) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conn.WriteJSON(v)
}

func (l *lockedConn) WriteMessage(messageType int, data []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conn.WriteMessage(messageType, data)
}

func (l *lockedConn) Close() error {
	return l.conn.Close()
}

type selfJoinPayload struct {
	Player model.Player    `json:"player"`
	State  model.GameState `json:"state"`
}

// HandleConnection is called when a new WebSocket connection is established.
// A player already seated in the game is attached straight away; anyone else
// has to send JOIN first.
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID := c.Params("gameId")
	playerID, _ := c.Locals(middleware.PlayerIDLocal).(string)
	conn := &lockedConn{conn: c}
	log.Infof("websocket opened for player %s in game %s", playerID, gameID)

	if err := wsc.gameService.RegisterConnection(gameID, playerID, conn); err == nil {
		if st, err := wsc.gameService.GetGameState(gameID); err == nil {
			wsc.send(conn, ws.MessageTypeGameState, st)
		}
	}

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warnf("read error for player %s in game %s: %v", playerID, gameID, err)
			}
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			wsc.sendError(conn, fmt.Errorf("malformed message: %w", err))
			continue
		}

		if err := wsc.handleMessage(gameID, playerID, conn, msg); err != nil {
			log.Debugf("message %s from player %s rejected: %v", msg.Type, playerID, err)
			wsc.sendError(conn, err)
		}
	}

	wsc.gameService.UnregisterConnection(gameID, playerID, conn)
	log.Infof("websocket closed for player %s in game %s", playerID, gameID)
}

func (wsc *WebSocketController) handleMessage(gameID, playerID string, conn model.Conn, msg ws.Message) error {
	switch msg.Type {
	case ws.MessageTypeJoin:
		var join ws.JoinPayload
		if err := msg.Decode(&join); err != nil {
			return err
		}
		if join.GameID != "" && join.GameID != gameID {
			return fmt.Errorf("joined game %s on the socket for %s", join.GameID, gameID)
		}
		player, err := wsc.gameService.JoinOrCreateGame(gameID, playerID, join.Username)
		if err != nil {
			return err
		}
		if err := wsc.gameService.RegisterConnection(gameID, playerID, conn); err != nil {
			return err
		}
		st, err := wsc.gameService.GetGameState(gameID)
		if err != nil {
			return err
		}
		wsc.gameService.SendTo(gameID, playerID, ws.MessageTypeSelfJoin, selfJoinPayload{Player: player, State: st})
		return nil

	case ws.MessageTypeMove:
		var move ws.MovePayload
		if err := msg.Decode(&move); err != nil {
			return err
		}
		_, err := wsc.gameService.HandleMove(gameID, playerID, model.WSMove{
			From:      move.From,
			To:        move.To,
			Promotion: move.Promotion,
		})
		return err

	case ws.MessageTypePromote:
		var promote ws.PromotePayload
		if err := msg.Decode(&promote); err != nil {
			return err
		}
		piece, ok := engine.ParsePieceType(string(promote.Piece))
		if !ok {
			return model.ErrInvalidPromotion
		}
		_, err := wsc.gameService.HandlePromotion(gameID, playerID, piece)
		return err

	case ws.MessageTypeCancelPromotion:
		if err := wsc.gameService.CancelPromotion(gameID, playerID); err != nil {
			return err
		}
		return wsc.sendState(gameID, conn)

	case ws.MessageTypeLegalMoves:
		var req ws.LegalMovesPayload
		if err := msg.Decode(&req); err != nil {
			return err
		}
		moves, err := wsc.gameService.LegalMoves(gameID, req.From)
		if err != nil {
			return err
		}
		wsc.send(conn, ws.MessageTypeLegalMoves, ws.LegalMovesPayload{From: req.From, Moves: moves})
		return nil

	case ws.MessageTypeResign:
		return wsc.gameService.Resign(gameID, playerID)

	case ws.MessageTypeDrawOffer:
		return wsc.gameService.OfferDraw(gameID, playerID)

	case ws.MessageTypeDrawAccept:
		return wsc.gameService.AcceptDraw(gameID, playerID)

	case ws.MessageTypeReset:
		return wsc.gameService.Reset(gameID, playerID)

	default:
		return fmt.Errorf("%w: %s", errUnknownMessage, msg.Type)
	}
}

func (wsc *WebSocketController) sendState(gameID string, conn model.Conn) error {
	st, err := wsc.gameService.GetGameState(gameID)
	if err != nil {
		return err
	}
	wsc.send(conn, ws.MessageTypeGameState, st)
	return nil
}

func (wsc *WebSocketController) send(conn model.Conn, t ws.MessageType, payload interface{}) {
	msg, err := ws.NewMessage(t, payload)
	if err != nil {
		log.Errorf("failed to marshal %s: %v", t, err)
		return
	}
	if err := conn.WriteJSON(msg); err != nil {
		log.Warnf("failed to send %s: %v", t, err)
	}
}

func (wsc *WebSocketController) sendError(conn model.Conn, err error) {
	wsc.send(conn, ws.MessageTypeError, ws.ErrorPayload{Error: err.Error()})
}
