package ws

import (
	"encoding/json"

	"github.com/benbeisheim/chess-backend/internal/engine"
)

// MessageType represents the different kinds of messages our system can handle
type MessageType string

const (
	// client -> server
	MessageTypeJoin            MessageType = "JOIN"
	MessageTypeMove            MessageType = "MOVE"
	MessageTypePromote         MessageType = "PROMOTE"
	MessageTypeCancelPromotion MessageType = "CANCEL_PROMOTION"
	MessageTypeLegalMoves      MessageType = "LEGAL_MOVES"
	MessageTypeResign          MessageType = "RESIGN"
	MessageTypeDrawOffer       MessageType = "DRAW_OFFER"
	MessageTypeDrawAccept      MessageType = "DRAW_ACCEPT"
	MessageTypeReset           MessageType = "RESET"

	// server -> client
	MessageTypeSelfJoin          MessageType = "SELF_JOIN"
	MessageTypeOpponentJoined    MessageType = "OPPONENT_JOINED"
	MessageTypeMoved             MessageType = "MOVED"
	MessageTypePromotionRequired MessageType = "PROMOTION_REQUIRED"
	MessageTypeGameState         MessageType = "GAME_STATE"
	MessageTypeError             MessageType = "ERROR"
)

// Message represents a WebSocket message in our system
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewMessage marshals payload into a message envelope. A nil payload is omitted.
func NewMessage(t MessageType, payload interface{}) (Message, error) {
	msg := Message{Type: t}
	if payload == nil {
		return msg, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	msg.Payload = raw
	return msg, nil
}

// Decode unmarshals the payload into v.
func (m Message) Decode(v interface{}) error {
	if len(m.Payload) == 0 {
		return nil
	}
	return json.Unmarshal(m.Payload, v)
}

type JoinPayload struct {
	GameID   string `json:"gameId"`
	Username string `json:"username"`
}

type MovePayload struct {
	From      engine.Position  `json:"from"`
	To        engine.Position  `json:"to"`
	Promotion engine.PieceType `json:"promotion,omitempty"`
}

type PromotePayload struct {
	Piece engine.PieceType `json:"piece"`
}

type LegalMovesPayload struct {
	From  engine.Position   `json:"from"`
	Moves []engine.Position `json:"moves,omitempty"`
}

type PromotionRequiredPayload struct {
	From engine.Position `json:"from"`
	To   engine.Position `json:"to"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}
