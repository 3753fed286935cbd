package model

import (
	"fmt"
	"sync"
	"time"

	"github.com/benbeisheim/chess-backend/internal/engine"
	"github.com/benbeisheim/chess-backend/internal/ws"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"
)

// Conn is the part of a websocket connection a game writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// The connections for a specific game
type GameConnections struct {
	connections map[string]Conn // playerID -> connection
	mu          sync.Mutex
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]Conn),
	}
}

// The Game struct owns a single game's state and its observers. All moves
// for one game are serialized by mu; the engine itself has no locking.
// publish is held from a state change until its broadcast has been written,
// so clients see snapshots in commit order. It is always taken before mu.
type Game struct {
	ID          string
	publish     sync.Mutex
	mu          sync.Mutex
	state       GameState
	pending     *pendingPromotion
	connections *GameConnections
	now         func() time.Time
}

type pendingPromotion struct {
	playerID string
	proposal engine.PendingPromotion
}

type GameState struct {
	GameID        string            `json:"gameId"`
	White         *Player           `json:"white"`
	Black         *Player           `json:"black"`
	Winner        *Player           `json:"winner"`
	Board         BoardPayload      `json:"board"`
	History       HistoryPayload    `json:"history"`
	Status        engine.GameStatus `json:"status"`
	Turn          engine.Color      `json:"turn"`
	CurrentTurn   *Player           `json:"currentTurn"`
	Check         bool              `json:"check"`
	Checkmate     bool              `json:"checkmate"`
	Stalemate     bool              `json:"stalemate"`
	Sound         engine.Sound      `json:"sound,omitempty"`
	DrawOfferedBy engine.Color      `json:"drawOfferedBy,omitempty"`
	StartedAt     *time.Time        `json:"startedAt"`
	EndedAt       *time.Time        `json:"endedAt"`
}

func NewGame(id string) *Game {
	return &Game{
		ID:          id,
		state:       newGameState(id),
		connections: NewGameConnections(),
		now:         time.Now,
	}
}

func newGameState(id string) GameState {
	return GameState{
		GameID: id,
		Board:  BoardPayload{Pieces: engine.InitialBoard()},
		History: HistoryPayload{
			Moves:    make([]engine.Move, 0),
			Notation: make([]string, 0),
		},
		Status: engine.StatusWaitingForPlayer,
		Turn:   engine.White,
	}
}

// clone copies everything a reader could modify. Boards and move slices are
// never written in place, so sharing them is safe.
func (s GameState) clone() GameState {
	out := s
	out.White = copyPlayer(s.White)
	out.Black = copyPlayer(s.Black)
	out.Winner = copyPlayer(s.Winner)
	out.CurrentTurn = copyPlayer(s.CurrentTurn)
	return out
}

func copyPlayer(p *Player) *Player {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

func (g *Game) GetState() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.state.clone()
}

// AddPlayer seats playerID, white first. Joining again returns the existing seat.
func (g *Game) AddPlayer(playerID, name string) (Player, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	log.Debugf("adding player %s (%s) to game %s", playerID, name, g.ID)

	if p, ok := g.playerByID(playerID); ok {
		return *p, nil
	}
	if name == "" {
		name = playerID
	}

	var seated *Player
	switch {
	case g.state.White == nil:
		seated = &Player{ID: playerID, Name: name, Color: engine.White}
		g.state.White = seated
	case g.state.Black == nil:
		seated = &Player{ID: playerID, Name: name, Color: engine.Black}
		g.state.Black = seated
	default:
		return Player{}, ErrGameFull
	}

	if g.state.White != nil && g.state.Black != nil && g.state.Status == engine.StatusWaitingForPlayer {
		now := g.now()
		g.state.Status = engine.StatusInProgress
		g.state.StartedAt = &now
	}
	g.state.CurrentTurn = copyPlayer(g.playerByColor(g.state.Turn))
	return *seated, nil
}

func (g *Game) IsPlayerInGame(playerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, ok := g.playerByID(playerID)
	return ok
}

func (g *Game) playerByID(playerID string) (*Player, bool) {
	if g.state.White != nil && g.state.White.ID == playerID {
		return g.state.White, true
	}
	if g.state.Black != nil && g.state.Black.ID == playerID {
		return g.state.Black, true
	}
	return nil, false
}

func (g *Game) playerByColor(c engine.Color) *Player {
	if c == engine.White {
		return g.state.White
	}
	return g.state.Black
}

// LegalMoves lists the destinations for the piece on from in the current position.
func (g *Game) LegalMoves(from engine.Position) []engine.Position {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !from.InBounds() {
		return []engine.Position{}
	}
	return engine.LegalMoves(g.state.Board.Pieces, from, g.state.History.Moves)
}

// MakeMove validates and plays a move for playerID. A move onto the last rank
// without a promotion piece is held back until CompletePromotion or
// CancelPromotion; nobody else sees it in the meantime.
func (g *Game) MakeMove(playerID string, move WSMove) (MoveResult, error) {
	g.publish.Lock()
	defer g.publish.Unlock()

	g.mu.Lock()
	result, err := g.makeMove(playerID, move)
	state := g.state.clone()
	g.mu.Unlock()

	if err != nil {
		return result, err
	}
	if result.PromotionRequired {
		g.sendTo(playerID, ws.MessageTypePromotionRequired, ws.PromotionRequiredPayload{From: move.From, To: move.To})
		return result, nil
	}
	g.broadcast(ws.MessageTypeMoved, state)
	return result, nil
}

func (g *Game) makeMove(playerID string, move WSMove) (MoveResult, error) {
	log.Debugf("game %s: player %s moves %v-%v", g.ID, playerID, move.From, move.To)
	result := MoveResult{From: move.From, To: move.To, Status: g.state.Status}

	player, ok := g.playerByID(playerID)
	if !ok {
		return result, ErrNotInGame
	}
	if g.state.Status != engine.StatusInProgress {
		return result, ErrGameNotInProgress
	}
	if g.pending != nil {
		return result, ErrPromotionPending
	}
	if player.Color != g.state.Turn {
		return result, ErrNotYourTurn
	}
	if !move.From.InBounds() || !move.To.InBounds() {
		return result, fmt.Errorf("%w: out of bounds", ErrIllegalMove)
	}
	piece := g.state.Board.Pieces.At(move.From)
	if piece == nil || piece.Color != player.Color {
		return result, ErrNotYourPiece
	}

	proposal, ok := engine.ProposeMove(g.state.Board.Pieces, g.state.History.Moves, move.From, move.To)
	if !ok {
		return result, fmt.Errorf("%w: %v-%v", ErrIllegalMove, move.From, move.To)
	}

	switch p := proposal.(type) {
	case engine.Applied:
		g.commit(p)
	case engine.PendingPromotion:
		if move.Promotion == "" {
			g.pending = &pendingPromotion{playerID: playerID, proposal: p}
			result.PromotionRequired = true
			return result, nil
		}
		applied, ok := engine.CompletePromotion(p, move.Promotion)
		if !ok {
			return result, fmt.Errorf("%w: %q", ErrInvalidPromotion, move.Promotion)
		}
		g.commit(applied)
	}

	result.Status = g.state.Status
	result.Notation = g.state.History.Notation[len(g.state.History.Notation)-1]
	return result, nil
}

// CompletePromotion finishes the pending move of playerID with piece.
func (g *Game) CompletePromotion(playerID string, piece engine.PieceType) (MoveResult, error) {
	g.publish.Lock()
	defer g.publish.Unlock()

	g.mu.Lock()
	result, err := g.completePromotion(playerID, piece)
	state := g.state.clone()
	g.mu.Unlock()

	if err != nil {
		return result, err
	}
	g.broadcast(ws.MessageTypeMoved, state)
	return result, nil
}

func (g *Game) completePromotion(playerID string, piece engine.PieceType) (MoveResult, error) {
	if g.pending == nil || g.pending.playerID != playerID {
		return MoveResult{}, ErrNoPendingPromotion
	}
	p := g.pending.proposal
	result := MoveResult{From: p.Move.From, To: p.Move.To}
	applied, ok := engine.CompletePromotion(p, piece)
	if !ok {
		return result, fmt.Errorf("%w: %q", ErrInvalidPromotion, piece)
	}
	g.pending = nil
	g.commit(applied)
	result.Status = g.state.Status
	result.Notation = g.state.History.Notation[len(g.state.History.Notation)-1]
	return result, nil
}

// CancelPromotion drops the pending move; the position is unchanged.
func (g *Game) CancelPromotion(playerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.pending == nil || g.pending.playerID != playerID {
		return ErrNoPendingPromotion
	}
	log.Debugf("game %s: player %s cancelled promotion", g.ID, playerID)
	g.state.Board.Pieces = engine.CancelPromotion(g.pending.proposal)
	g.pending = nil
	return nil
}

func (g *Game) commit(applied engine.Applied) {
	g.state.Board.Pieces = applied.Board
	g.state.History.Moves = applied.History
	last := applied.Move
	g.state.History.LastMove = &last
	g.state.History.Notation = append(append(make([]string, 0, len(applied.History)), g.state.History.Notation...),
		engine.Notation(len(applied.History), applied.Move))

	g.state.Turn = applied.Move.Piece.Color.Opponent()
	g.state.CurrentTurn = copyPlayer(g.playerByColor(g.state.Turn))
	g.state.Check = applied.Status.Check
	g.state.Checkmate = applied.Status.Checkmate
	g.state.Stalemate = applied.Status.Stalemate
	g.state.Sound = applied.Sound
	g.state.DrawOfferedBy = ""
	g.state.Status = engine.Advance(g.state.Status, applied.Status)

	if applied.Status.Winner != "" {
		g.state.Winner = copyPlayer(g.playerByColor(applied.Status.Winner))
	}
	if g.state.Status.IsTerminal() {
		g.finish()
	}
}

func (g *Game) finish() {
	now := g.now()
	g.state.EndedAt = &now
	g.pending = nil
	log.Infof("game %s finished: %s", g.ID, g.state.Status)
}

// Resign ends the game in favour of the opponent.
func (g *Game) Resign(playerID string) error {
	g.publish.Lock()
	defer g.publish.Unlock()

	g.mu.Lock()
	player, ok := g.playerByID(playerID)
	if !ok {
		g.mu.Unlock()
		return ErrNotInGame
	}
	if g.state.Status != engine.StatusInProgress {
		g.mu.Unlock()
		return ErrGameNotInProgress
	}
	g.state.Status = engine.StatusResigned
	g.state.Sound = engine.SoundNone
	g.state.Winner = copyPlayer(g.playerByColor(player.Color.Opponent()))
	g.finish()
	state := g.state.clone()
	g.mu.Unlock()

	g.broadcast(ws.MessageTypeGameState, state)
	return nil
}

// OfferDraw records an offer that the opponent may accept until the next move.
func (g *Game) OfferDraw(playerID string) error {
	g.publish.Lock()
	defer g.publish.Unlock()

	g.mu.Lock()
	player, ok := g.playerByID(playerID)
	if !ok {
		g.mu.Unlock()
		return ErrNotInGame
	}
	if g.state.Status != engine.StatusInProgress {
		g.mu.Unlock()
		return ErrGameNotInProgress
	}
	g.state.DrawOfferedBy = player.Color
	g.state.Sound = engine.SoundNone
	state := g.state.clone()
	g.mu.Unlock()

	g.broadcast(ws.MessageTypeGameState, state)
	return nil
}

func (g *Game) AcceptDraw(playerID string) error {
	g.publish.Lock()
	defer g.publish.Unlock()

	g.mu.Lock()
	player, ok := g.playerByID(playerID)
	if !ok {
		g.mu.Unlock()
		return ErrNotInGame
	}
	if g.state.Status != engine.StatusInProgress {
		g.mu.Unlock()
		return ErrGameNotInProgress
	}
	switch g.state.DrawOfferedBy {
	case "":
		g.mu.Unlock()
		return ErrNoDrawOffer
	case player.Color:
		g.mu.Unlock()
		return ErrDrawOfferedByPlayer
	}
	g.state.Status = engine.StatusDraw
	g.state.Sound = engine.SoundNone
	g.state.DrawOfferedBy = ""
	g.finish()
	state := g.state.clone()
	g.mu.Unlock()

	g.broadcast(ws.MessageTypeGameState, state)
	return nil
}

// Reset starts a new game with the same players once the current one is over.
// The old board and history are discarded.
func (g *Game) Reset(playerID string) error {
	g.publish.Lock()
	defer g.publish.Unlock()

	g.mu.Lock()
	if _, ok := g.playerByID(playerID); !ok {
		g.mu.Unlock()
		return ErrNotInGame
	}
	if !g.state.Status.IsTerminal() {
		g.mu.Unlock()
		return ErrGameInProgress
	}
	white, black := g.state.White, g.state.Black
	g.state = newGameState(g.ID)
	g.state.White, g.state.Black = white, black
	g.state.Status = engine.StatusInProgress
	now := g.now()
	g.state.StartedAt = &now
	g.state.CurrentTurn = copyPlayer(white)
	g.pending = nil
	state := g.state.clone()
	g.mu.Unlock()

	log.Infof("game %s reset by %s", g.ID, playerID)
	g.broadcast(ws.MessageTypeGameState, state)
	return nil
}

// RegisterConnection attaches conn to playerID. A newer connection replaces
// an older one, which is what a reconnecting client needs.
func (g *Game) RegisterConnection(playerID string, conn Conn) error {
	if !g.IsPlayerInGame(playerID) {
		return ErrNotInGame
	}

	g.connections.mu.Lock()
	if old, exists := g.connections.connections[playerID]; exists && old != conn {
		log.Infof("game %s: replacing connection for player %s", g.ID, playerID)
		_ = old.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "replaced by a new connection"),
		)
		_ = old.Close()
	}
	g.connections.connections[playerID] = conn
	g.connections.mu.Unlock()

	log.Debugf("game %s: registered connection for player %s", g.ID, playerID)
	return nil
}

// UnregisterConnection drops conn if it is still the one registered for playerID.
func (g *Game) UnregisterConnection(playerID string, conn Conn) {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	if current, exists := g.connections.connections[playerID]; exists && current == conn {
		delete(g.connections.connections, playerID)
		log.Debugf("game %s: unregistered connection for player %s", g.ID, playerID)
	}
}

// Broadcast sends the current state to every connection under type t.
func (g *Game) Broadcast(t ws.MessageType) {
	g.publish.Lock()
	defer g.publish.Unlock()

	g.broadcast(t, g.GetState())
}

func (g *Game) broadcast(t ws.MessageType, payload interface{}) {
	msg, err := ws.NewMessage(t, payload)
	if err != nil {
		log.Errorf("game %s: failed to marshal %s: %v", g.ID, t, err)
		return
	}

	// writes are serialized under the lock; a websocket allows one writer at a time
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()
	for playerID, conn := range g.connections.connections {
		if err := conn.WriteJSON(msg); err != nil {
			log.Warnf("game %s: failed to send %s to player %s: %v", g.ID, t, playerID, err)
			delete(g.connections.connections, playerID)
		}
	}
}

// SendTo writes a single message to playerID's connection, if any.
func (g *Game) SendTo(playerID string, t ws.MessageType, payload interface{}) {
	g.sendTo(playerID, t, payload)
}

func (g *Game) sendTo(playerID string, t ws.MessageType, payload interface{}) {
	msg, err := ws.NewMessage(t, payload)
	if err != nil {
		log.Errorf("game %s: failed to marshal %s: %v", g.ID, t, err)
		return
	}

	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()
	conn, ok := g.connections.connections[playerID]
	if !ok {
		return
	}
	if err := conn.WriteJSON(msg); err != nil {
		log.Warnf("game %s: failed to send %s to player %s: %v", g.ID, t, playerID, err)
		delete(g.connections.connections, playerID)
	}
}
