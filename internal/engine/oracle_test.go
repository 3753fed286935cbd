package engine

import (
	"math/rand"
	"testing"

	"github.com/dylhunn/dragontoothmg"
)

// countMoves counts legal moves the way a UCI generator does, with one
// entry per promotion piece.
func countMoves(b Board, color Color, history []Move) int {
	n := 0
	for _, p := range b.PiecesOf(color) {
		for _, to := range LegalMoves(b, p.Position, history) {
			if IsPromotionMove(p.Piece, to) {
				n += 4
				continue
			}
			n++
		}
	}
	return n
}

func TestMoveCountsMatchReferenceGenerator(t *testing.T) {
	scripted := [][]string{
		{},
		{"e2e4", "a7a6", "e4e5", "d7d5"},
		{"e2e4", "e7e5", "g1f3", "b8c6", "f1c4", "g8f6"},
		{"d2d4", "e7e6", "c1g5", "f8e7", "b1c3", "d7d5", "d1d2"},
		{"f2f3", "e7e5", "g2g4", "d8h4"},
	}
	for _, moves := range scripted {
		b, history := play(t, moves...)
		toMove := White
		if len(history)%2 == 1 {
			toMove = Black
		}
		fen := FEN(b, toMove, history)
		ref := dragontoothmg.ParseFen(fen)
		if want, got := len(ref.GenerateLegalMoves()), countMoves(b, toMove, history); got != want {
			t.Fatalf("%s: expected %d moves, got %d", fen, want, got)
		}
	}
}

func TestRandomGamesMatchReferenceGenerator(t *testing.T) {
	for seed := int64(10); seed < 16; seed++ {
		rng := rand.New(rand.NewSource(seed))
		b := InitialBoard()
		var history []Move
		toMove := White

		for ply := 0; ply < 60; ply++ {
			fen := FEN(b, toMove, history)
			ref := dragontoothmg.ParseFen(fen)
			want := len(ref.GenerateLegalMoves())
			got := countMoves(b, toMove, history)
			if got != want {
				t.Fatalf("seed %d ply %d %s: expected %d moves, got %d", seed, ply, fen, want, got)
			}
			if got == 0 {
				break
			}

			all := LegalMovesForColor(b, toMove, history)
			var froms []Position
			for _, p := range b.PiecesOf(toMove) {
				if _, ok := all[p.Position]; ok {
					froms = append(froms, p.Position)
				}
			}
			from := froms[rng.Intn(len(froms))]
			to := all[from][rng.Intn(len(all[from]))]
			applied, ok := Play(b, history, from, to, Queen)
			if !ok {
				t.Fatalf("seed %d ply %d: %v-%v rejected", seed, ply, from, to)
			}
			b, history = applied.Board, applied.History
			toMove = toMove.Opponent()
		}
	}
}
