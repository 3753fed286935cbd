package engine

import "testing"

// sq converts an algebraic square for test tables.
func sq(t testing.TB, s string) Position {
	t.Helper()
	p, ok := ParseSquare(s)
	if !ok {
		t.Fatalf("invalid square %q", s)
	}
	return p
}

var letterTypes = map[byte]PieceType{
	'k': King, 'q': Queen, 'r': Rook, 'b': Bishop, 'n': Knight, 'p': Pawn,
}

// place builds a board from square -> letter, uppercase for white.
func place(t testing.TB, pieces map[string]string) Board {
	t.Helper()
	var b Board
	id := 100
	for square, letter := range pieces {
		if len(letter) != 1 {
			t.Fatalf("bad piece letter %q", letter)
		}
		c := letter[0]
		color := Black
		if c >= 'A' && c <= 'Z' {
			color = White
			c += 'a' - 'A'
		}
		pt, ok := letterTypes[c]
		if !ok {
			t.Fatalf("bad piece letter %q", letter)
		}
		id++
		b.set(sq(t, square), newPiece(id, pt, color))
	}
	return b
}

// markMoved sets the moved flag on the pieces standing on squares.
func markMoved(t testing.TB, b Board, squares ...string) Board {
	t.Helper()
	next := b.Clone()
	for _, s := range squares {
		p := next.At(sq(t, s))
		if p == nil {
			t.Fatalf("no piece on %s", s)
		}
		p.HasMoved = true
	}
	return next
}

// play applies coordinate moves like "e2e4" or "a7a8q" from the initial
// position and fails the test on any illegal move.
func play(t testing.TB, moves ...string) (Board, []Move) {
	t.Helper()
	b := InitialBoard()
	var history []Move
	for _, mv := range moves {
		from, to := sq(t, mv[0:2]), sq(t, mv[2:4])
		var promo PieceType
		if len(mv) == 5 {
			promo, _ = ParsePieceType(mv[4:])
		}
		applied, ok := Play(b, history, from, to, promo)
		if !ok {
			t.Fatalf("move %s rejected", mv)
		}
		b, history = applied.Board, applied.History
	}
	return b, history
}

func containsSquare(moves []Position, p Position) bool {
	for _, m := range moves {
		if m == p {
			return true
		}
	}
	return false
}
