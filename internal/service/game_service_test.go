package service

import (
	"errors"
	"sync"
	"testing"

	"github.com/benbeisheim/chess-backend/internal/engine"
	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/ws"
)

type recordingConn struct {
	mu    sync.Mutex
	types []ws.MessageType
}

func (c *recordingConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if msg, ok := v.(ws.Message); ok {
		c.types = append(c.types, msg.Type)
	}
	return nil
}

func (c *recordingConn) WriteMessage(int, []byte) error { return nil }
func (c *recordingConn) Close() error                   { return nil }

func pos(t *testing.T, s string) engine.Position {
	t.Helper()
	p, ok := engine.ParseSquare(s)
	if !ok {
		t.Fatalf("invalid square %q", s)
	}
	return p
}

func TestCreateAndJoin(t *testing.T) {
	gs := NewGameService(NewGameManager())

	gameID, err := gs.CreateGame()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := gs.JoinGame("missing", "alice", "Alice"); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}

	white, err := gs.JoinGame(gameID, "alice", "Alice")
	if err != nil || white.Color != engine.White {
		t.Fatalf("alice = %+v, %v", white, err)
	}
	conn := &recordingConn{}
	if err := gs.RegisterConnection(gameID, "alice", conn); err != nil {
		t.Fatal(err)
	}

	black, err := gs.JoinGame(gameID, "bob", "Bob")
	if err != nil || black.Color != engine.Black {
		t.Fatalf("bob = %+v, %v", black, err)
	}
	if len(conn.types) != 1 || conn.types[0] != ws.MessageTypeOpponentJoined {
		t.Fatalf("alice should hear that bob joined, got %v", conn.types)
	}

	// rejoining is not news
	if _, err := gs.JoinGame(gameID, "bob", "Bob"); err != nil {
		t.Fatal(err)
	}
	if len(conn.types) != 1 {
		t.Fatalf("rejoin should not broadcast, got %v", conn.types)
	}

	if _, err := gs.JoinGame(gameID, "carol", "Carol"); !errors.Is(err, model.ErrGameFull) {
		t.Fatalf("expected ErrGameFull, got %v", err)
	}

	st, err := gs.GetGameState(gameID)
	if err != nil || st.Status != engine.StatusInProgress {
		t.Fatalf("state = %+v, %v", st.Status, err)
	}
}

func TestJoinOrCreateGame(t *testing.T) {
	gm := NewGameManager()
	gs := NewGameService(gm)

	if _, err := gs.JoinOrCreateGame("room-1", "alice", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := gs.JoinOrCreateGame("room-1", "bob", ""); err != nil {
		t.Fatal(err)
	}
	if gm.Count() != 1 {
		t.Fatalf("expected one game, got %d", gm.Count())
	}
	if _, err := gm.CreateGame("room-1"); !errors.Is(err, ErrGameExists) {
		t.Fatalf("expected ErrGameExists, got %v", err)
	}
	gm.RemoveGame("room-1")
	if _, err := gs.GetGameState("room-1"); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound after removal, got %v", err)
	}
}

func TestPlayThroughService(t *testing.T) {
	gs := NewGameService(NewGameManager())
	gameID, _ := gs.CreateGame()
	gs.JoinGame(gameID, "alice", "")
	gs.JoinGame(gameID, "bob", "")

	moves, err := gs.LegalMoves(gameID, pos(t, "b1"))
	if err != nil || len(moves) != 2 {
		t.Fatalf("b1 moves = %v, %v", moves, err)
	}

	res, err := gs.HandleMove(gameID, "alice", model.WSMove{From: pos(t, "e2"), To: pos(t, "e4")})
	if err != nil || res.Notation != "1. e4" {
		t.Fatalf("move = %+v, %v", res, err)
	}
	if _, err := gs.HandleMove(gameID, "alice", model.WSMove{From: pos(t, "d2"), To: pos(t, "d4")}); !errors.Is(err, model.ErrNotYourTurn) {
		t.Fatalf("expected ErrNotYourTurn, got %v", err)
	}
	if _, err := gs.HandlePromotion(gameID, "bob", engine.Queen); !errors.Is(err, model.ErrNoPendingPromotion) {
		t.Fatalf("expected ErrNoPendingPromotion, got %v", err)
	}
	if err := gs.CancelPromotion(gameID, "bob"); !errors.Is(err, model.ErrNoPendingPromotion) {
		t.Fatalf("expected ErrNoPendingPromotion, got %v", err)
	}

	if err := gs.OfferDraw(gameID, "bob"); err != nil {
		t.Fatal(err)
	}
	if err := gs.AcceptDraw(gameID, "alice"); err != nil {
		t.Fatal(err)
	}
	if err := gs.Resign(gameID, "alice"); !errors.Is(err, model.ErrGameNotInProgress) {
		t.Fatalf("expected ErrGameNotInProgress, got %v", err)
	}
	if err := gs.Reset(gameID, "alice"); err != nil {
		t.Fatal(err)
	}
	st, _ := gs.GetGameState(gameID)
	if st.Status != engine.StatusInProgress || len(st.History.Moves) != 0 {
		t.Fatalf("reset state = %+v", st)
	}

	if err := gs.Resign("missing", "alice"); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
}
