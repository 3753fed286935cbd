// Command client joins a game from the terminal and plays moves typed in
// coordinate form, such as e2e4 or e7e8q.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/benbeisheim/chess-backend/internal/client"
	"github.com/benbeisheim/chess-backend/internal/config"
	"github.com/benbeisheim/chess-backend/internal/engine"
	"github.com/benbeisheim/chess-backend/internal/middleware"
	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/ws"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

const usage = `commands:
  e2e4, e7e8q     move, with an optional promotion letter
  moves e2        list legal moves from a square
  promote q       answer a promotion prompt
  cancel          take back a pending promotion
  resign | draw | accept | reset | quit`

func main() {
	fs := flag.NewFlagSet("client", flag.ExitOnError)
	gameID := fs.String("game", "", "game code to join (required)")
	name := fs.String("name", "", "display name")
	playerID := fs.String("player", "", "player id, generated when empty")
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load(fs.Args())
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	log.SetLevel(cfg.LogLevel)
	if *gameID == "" {
		log.Fatal("-game is required")
	}
	if *playerID == "" {
		*playerID = uuid.New().String()
	}

	header := http.Header{}
	header.Set(middleware.PlayerIDHeader, *playerID)
	session := client.New(client.Config{
		URL:                  cfg.GameURL(*gameID),
		Header:               header,
		MaxReconnectAttempts: cfg.ReconnectAttempts,
		ReconnectDelay:       cfg.ReconnectDelay,
		HandshakeTimeout:     client.DefaultConfig("").HandshakeTimeout,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := session.Connect(ctx); err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer session.Close()
	if err := session.Join(*gameID, *name); err != nil {
		log.Fatalf("join: %v", err)
	}

	go printMessages(session)
	fmt.Println(usage)

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			quit, err := runCommand(session, strings.TrimSpace(line))
			if err != nil {
				fmt.Println("error:", err)
			}
			if quit {
				return
			}
		}
	}
}

func runCommand(s *client.Session, line string) (bool, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return false, nil
	}

	switch fields[0] {
	case "quit", "exit":
		return true, nil
	case "help":
		fmt.Println(usage)
		return false, nil
	case "resign":
		return false, s.Send(ws.MessageTypeResign, nil)
	case "draw":
		return false, s.Send(ws.MessageTypeDrawOffer, nil)
	case "accept":
		return false, s.Send(ws.MessageTypeDrawAccept, nil)
	case "reset":
		return false, s.Send(ws.MessageTypeReset, nil)
	case "cancel":
		return false, s.Send(ws.MessageTypeCancelPromotion, nil)
	case "promote":
		if len(fields) != 2 {
			return false, fmt.Errorf("usage: promote q|r|b|n")
		}
		piece, ok := engine.ParsePieceType(fields[1])
		if !ok || !piece.CanPromoteTo() {
			return false, fmt.Errorf("cannot promote to %q", fields[1])
		}
		return false, s.Send(ws.MessageTypePromote, ws.PromotePayload{Piece: piece})
	case "moves":
		if len(fields) != 2 {
			return false, fmt.Errorf("usage: moves e2")
		}
		from, ok := engine.ParseSquare(fields[1])
		if !ok {
			return false, fmt.Errorf("invalid square %q", fields[1])
		}
		return false, s.Send(ws.MessageTypeLegalMoves, ws.LegalMovesPayload{From: from})
	}

	move, err := parseMove(fields[0])
	if err != nil {
		return false, err
	}
	return false, s.Send(ws.MessageTypeMove, move)
}

// parseMove reads coordinate notation: two squares and an optional promotion letter.
func parseMove(s string) (ws.MovePayload, error) {
	if len(s) != 4 && len(s) != 5 {
		return ws.MovePayload{}, fmt.Errorf("unknown command %q", s)
	}
	from, ok1 := engine.ParseSquare(s[0:2])
	to, ok2 := engine.ParseSquare(s[2:4])
	if !ok1 || !ok2 {
		return ws.MovePayload{}, fmt.Errorf("invalid move %q", s)
	}
	move := ws.MovePayload{From: from, To: to}
	if len(s) == 5 {
		piece, ok := engine.ParsePieceType(s[4:])
		if !ok || !piece.CanPromoteTo() {
			return ws.MovePayload{}, fmt.Errorf("invalid promotion %q", s[4:])
		}
		move.Promotion = piece
	}
	return move, nil
}

func printMessages(s *client.Session) {
	for msg := range s.Messages() {
		switch msg.Type {
		case ws.MessageTypeSelfJoin:
			var p struct {
				Player model.Player    `json:"player"`
				State  model.GameState `json:"state"`
			}
			if err := msg.Decode(&p); err != nil {
				log.Warnf("bad %s: %v", msg.Type, err)
				continue
			}
			fmt.Printf("joined as %s\n", p.Player.Color)
			render(p.State)
		case ws.MessageTypeOpponentJoined, ws.MessageTypeMoved, ws.MessageTypeGameState:
			var st model.GameState
			if err := msg.Decode(&st); err != nil {
				log.Warnf("bad %s: %v", msg.Type, err)
				continue
			}
			render(st)
		case ws.MessageTypePromotionRequired:
			fmt.Println("promotion: type promote q|r|b|n, or cancel")
		case ws.MessageTypeLegalMoves:
			var p ws.LegalMovesPayload
			if err := msg.Decode(&p); err != nil {
				continue
			}
			squares := make([]string, 0, len(p.Moves))
			for _, m := range p.Moves {
				squares = append(squares, m.Square())
			}
			fmt.Printf("%s: %s\n", p.From.Square(), strings.Join(squares, " "))
		case ws.MessageTypeError:
			var p ws.ErrorPayload
			_ = msg.Decode(&p)
			fmt.Println("server:", p.Error)
		}
	}
	fmt.Println("disconnected")
}

func render(st model.GameState) {
	var b strings.Builder
	for x := 0; x < engine.Size; x++ {
		fmt.Fprintf(&b, "%d ", engine.Size-x)
		for y := 0; y < engine.Size; y++ {
			if p := st.Board.Pieces[x][y]; p != nil {
				b.WriteString(p.Glyph())
			} else {
				b.WriteString("·")
			}
			b.WriteByte(' ')
		}
		b.WriteByte('\n')
	}
	b.WriteString("  a b c d e f g h\n")
	fmt.Print(b.String())

	if n := len(st.History.Notation); n > 0 {
		fmt.Println("last:", st.History.Notation[n-1])
	}
	switch {
	case st.Status.IsTerminal():
		if st.Winner != nil {
			fmt.Printf("%s, %s wins\n", st.Status, st.Winner.Color)
		} else {
			fmt.Println(st.Status)
		}
	case st.Status == engine.StatusWaitingForPlayer:
		fmt.Println("waiting for an opponent")
	default:
		check := ""
		if st.Check {
			check = " (check)"
		}
		fmt.Printf("%s to move%s\n", st.Turn, check)
	}
}
