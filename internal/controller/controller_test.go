package controller

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/benbeisheim/chess-backend/internal/engine"
	"github.com/benbeisheim/chess-backend/internal/middleware"
	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/service"
	"github.com/benbeisheim/chess-backend/internal/ws"
	"github.com/gofiber/fiber/v2"
)

func newTestApp() (*fiber.App, *service.GameService) {
	gs := service.NewGameService(service.NewGameManager())
	app := fiber.New()
	SetupRoutes(app, gs, nil)
	return app, gs
}

func do(t *testing.T, app *fiber.App, method, url, playerID, body string) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, url, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if playerID != "" {
		req.Header.Set(middleware.PlayerIDHeader, playerID)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	out := map[string]interface{}{}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, url, err, raw)
		}
	}
	return resp.StatusCode, out
}

// moveBody encodes a coordinate move such as "e2e4" as a request body.
func moveBody(t *testing.T, mv string) string {
	t.Helper()
	from, ok1 := engine.ParseSquare(mv[0:2])
	to, ok2 := engine.ParseSquare(mv[2:4])
	if !ok1 || !ok2 {
		t.Fatalf("bad move %q", mv)
	}
	raw, _ := json.Marshal(model.WSMove{From: from, To: to})
	return string(raw)
}

func setupGame(t *testing.T, app *fiber.App) string {
	t.Helper()
	status, body := do(t, app, http.MethodPost, "/api/game/create", "alice", "")
	if status != fiber.StatusCreated {
		t.Fatalf("create = %d %v", status, body)
	}
	gameID, _ := body["game_id"].(string)
	if status, body := do(t, app, http.MethodPost, "/api/game/join/"+gameID, "alice", `{"username":"Alice"}`); status != fiber.StatusOK || body["color"] != "white" {
		t.Fatalf("alice join = %d %v", status, body)
	}
	if status, body := do(t, app, http.MethodPost, "/api/game/join/"+gameID, "bob", ""); status != fiber.StatusOK || body["color"] != "black" {
		t.Fatalf("bob join = %d %v", status, body)
	}
	return gameID
}

func TestRESTGameFlow(t *testing.T) {
	app, _ := newTestApp()
	gameID := setupGame(t, app)
	base := "/api/game/" + gameID

	status, body := do(t, app, http.MethodGet, base, "alice", "")
	if status != fiber.StatusOK || body["status"] != string(engine.StatusInProgress) {
		t.Fatalf("state = %d %v", status, body["status"])
	}

	status, body = do(t, app, http.MethodGet, base+"/moves?from=g1", "alice", "")
	if status != fiber.StatusOK {
		t.Fatalf("moves = %d %v", status, body)
	}
	if squares, _ := body["squares"].([]interface{}); len(squares) != 2 {
		t.Fatalf("expected 2 knight moves, got %v", body["squares"])
	}

	status, body = do(t, app, http.MethodPost, base+"/move", "alice", moveBody(t, "e2e4"))
	if status != fiber.StatusOK || body["notation"] != "1. e4" {
		t.Fatalf("move = %d %v", status, body)
	}

	status, body = do(t, app, http.MethodGet, base+"/fen", "bob", "")
	if status != fiber.StatusOK || body["fen"] != "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1" {
		t.Fatalf("fen = %d %v", status, body)
	}

	status, body = do(t, app, http.MethodPost, base+"/resign", "bob", "")
	if status != fiber.StatusOK || body["status"] != string(engine.StatusResigned) {
		t.Fatalf("resign = %d %v", status, body)
	}

	status, body = do(t, app, http.MethodPost, base+"/reset", "alice", "")
	if status != fiber.StatusOK || body["status"] != string(engine.StatusInProgress) {
		t.Fatalf("reset = %d %v", status, body)
	}
}

func TestRESTErrors(t *testing.T) {
	app, _ := newTestApp()
	gameID := setupGame(t, app)
	base := "/api/game/" + gameID

	tests := []struct {
		name     string
		method   string
		url      string
		playerID string
		body     string
		status   int
	}{
		{"no player id", http.MethodGet, base, "", "", fiber.StatusUnauthorized},
		{"unknown game", http.MethodGet, "/api/game/nope", "alice", "", fiber.StatusNotFound},
		{"join unknown game", http.MethodPost, "/api/game/join/nope", "carol", "", fiber.StatusNotFound},
		{"game full", http.MethodPost, "/api/game/join/" + gameID, "carol", "", fiber.StatusConflict},
		{"stranger moves", http.MethodPost, base + "/move", "carol", moveBody(t, "e2e4"), fiber.StatusForbidden},
		{"out of turn", http.MethodPost, base + "/move", "bob", moveBody(t, "e7e5"), fiber.StatusConflict},
		{"illegal move", http.MethodPost, base + "/move", "alice", moveBody(t, "e2e5"), fiber.StatusBadRequest},
		{"bad square", http.MethodGet, base + "/moves?from=z9", "alice", "", fiber.StatusBadRequest},
		{"bad promotion piece", http.MethodPost, base + "/promote", "alice", `{"piece":"king"}`, fiber.StatusBadRequest},
		{"nothing to promote", http.MethodPost, base + "/promote", "alice", `{"piece":"queen"}`, fiber.StatusBadRequest},
		{"no draw offered", http.MethodPost, base + "/draw/accept", "bob", "", fiber.StatusConflict},
		{"reset mid game", http.MethodPost, base + "/reset", "alice", "", fiber.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(t, app, tt.method, tt.url, tt.playerID, tt.body)
			if status != tt.status {
				t.Fatalf("status = %d, want %d (%v)", status, tt.status, body)
			}
			if _, ok := body["error"]; !ok {
				t.Fatalf("expected an error body, got %v", body)
			}
		})
	}
}

func TestRESTDraw(t *testing.T) {
	app, _ := newTestApp()
	gameID := setupGame(t, app)
	base := "/api/game/" + gameID

	if status, body := do(t, app, http.MethodPost, base+"/draw/offer", "alice", ""); status != fiber.StatusOK || body["drawOfferedBy"] != "white" {
		t.Fatalf("offer = %d %v", status, body)
	}
	if status, _ := do(t, app, http.MethodPost, base+"/draw/accept", "alice", ""); status != fiber.StatusConflict {
		t.Fatalf("accepting own offer = %d", status)
	}
	if status, body := do(t, app, http.MethodPost, base+"/draw/accept", "bob", ""); status != fiber.StatusOK || body["status"] != string(engine.StatusDraw) {
		t.Fatalf("accept = %d %v", status, body)
	}
}

type captureConn struct {
	mu       sync.Mutex
	messages []ws.Message
}

func (c *captureConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if msg, ok := v.(ws.Message); ok {
		c.messages = append(c.messages, msg)
	}
	return nil
}

func (c *captureConn) WriteMessage(int, []byte) error { return nil }
func (c *captureConn) Close() error                   { return nil }

func (c *captureConn) find(t ws.MessageType) (ws.Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Type == t {
			return c.messages[i], true
		}
	}
	return ws.Message{}, false
}

func wsMessage(t *testing.T, mt ws.MessageType, payload interface{}) ws.Message {
	t.Helper()
	msg, err := ws.NewMessage(mt, payload)
	if err != nil {
		t.Fatal(err)
	}
	return msg
}

func TestWebSocketMessages(t *testing.T) {
	_, gs := newTestApp()
	wsc := NewWebSocketController(gs)
	alice, bob := &captureConn{}, &captureConn{}

	if err := wsc.handleMessage("room", "alice", alice, wsMessage(t, ws.MessageTypeJoin, ws.JoinPayload{GameID: "room", Username: "Alice"})); err != nil {
		t.Fatal(err)
	}
	msg, ok := alice.find(ws.MessageTypeSelfJoin)
	if !ok {
		t.Fatal("alice did not get SELF_JOIN")
	}
	var self selfJoinPayload
	if err := msg.Decode(&self); err != nil {
		t.Fatal(err)
	}
	if self.Player.Color != engine.White || self.State.Status != engine.StatusWaitingForPlayer {
		t.Fatalf("unexpected SELF_JOIN %+v", self)
	}

	if err := wsc.handleMessage("room", "bob", bob, wsMessage(t, ws.MessageTypeJoin, ws.JoinPayload{Username: "Bob"})); err != nil {
		t.Fatal(err)
	}
	if _, ok := alice.find(ws.MessageTypeOpponentJoined); !ok {
		t.Fatal("alice did not hear bob join")
	}

	e2, _ := engine.ParseSquare("e2")
	e4, _ := engine.ParseSquare("e4")
	if err := wsc.handleMessage("room", "alice", alice, wsMessage(t, ws.MessageTypeLegalMoves, ws.LegalMovesPayload{From: e2})); err != nil {
		t.Fatal(err)
	}
	msg, ok = alice.find(ws.MessageTypeLegalMoves)
	if !ok {
		t.Fatal("no LEGAL_MOVES reply")
	}
	var legal ws.LegalMovesPayload
	if err := msg.Decode(&legal); err != nil || len(legal.Moves) != 2 {
		t.Fatalf("legal moves = %+v, %v", legal, err)
	}

	if err := wsc.handleMessage("room", "alice", alice, wsMessage(t, ws.MessageTypeMove, ws.MovePayload{From: e2, To: e4})); err != nil {
		t.Fatal(err)
	}
	if _, ok := bob.find(ws.MessageTypeMoved); !ok {
		t.Fatal("bob did not see the move")
	}

	err := wsc.handleMessage("room", "alice", alice, wsMessage(t, ws.MessageTypeMove, ws.MovePayload{From: e4, To: e2}))
	if !errors.Is(err, model.ErrNotYourTurn) {
		t.Fatalf("expected ErrNotYourTurn, got %v", err)
	}

	if err := wsc.handleMessage("room", "bob", bob, ws.Message{Type: ws.MessageTypeResign}); err != nil {
		t.Fatal(err)
	}
	st, _ := gs.GetGameState("room")
	if st.Status != engine.StatusResigned || st.Winner == nil || st.Winner.ID != "alice" {
		t.Fatalf("unexpected state after resign %+v", st)
	}

	if err := wsc.handleMessage("room", "alice", alice, ws.Message{Type: "DANCE"}); !errors.Is(err, errUnknownMessage) {
		t.Fatalf("expected errUnknownMessage, got %v", err)
	}
	if err := wsc.handleMessage("room", "alice", alice, wsMessage(t, ws.MessageTypeJoin, ws.JoinPayload{GameID: "other"})); err == nil {
		t.Fatal("joining another game over this socket should fail")
	}
}

func TestSendErrorIsJSON(t *testing.T) {
	wsc := NewWebSocketController(nil)
	conn := &captureConn{}
	wsc.sendError(conn, errors.New(`bad "quote"`))

	msg, ok := conn.find(ws.MessageTypeError)
	if !ok {
		t.Fatal("no ERROR message")
	}
	var payload ws.ErrorPayload
	if err := msg.Decode(&payload); err != nil || payload.Error != `bad "quote"` {
		t.Fatalf("payload = %+v, %v", payload, err)
	}
}

func TestSeatsSurviveLaterRequests(t *testing.T) {
	app, gs := newTestApp()
	gameID := setupGame(t, app)

	for i := 0; i < 20; i++ {
		do(t, app, http.MethodGet, "/api/game/"+gameID, "zzzzz", "")
		do(t, app, http.MethodGet, "/api/game/"+gameID+"?playerId=yyyyyyy", "", "")
	}

	st, err := gs.GetGameState(gameID)
	if err != nil {
		t.Fatal(err)
	}
	if st.White == nil || st.White.ID != "alice" || st.Black == nil || st.Black.ID != "bob" {
		t.Fatalf("seats changed: white=%+v black=%+v", st.White, st.Black)
	}
	if status, body := do(t, app, http.MethodPost, "/api/game/"+gameID+"/move", "zzzzz", moveBody(t, "e2e4")); status != fiber.StatusForbidden {
		t.Fatalf("stranger move = %d %v", status, body)
	}
	if status, body := do(t, app, http.MethodPost, "/api/game/"+gameID+"/move", "alice", moveBody(t, "e2e4")); status != fiber.StatusOK {
		t.Fatalf("alice move = %d %v", status, body)
	}
}
