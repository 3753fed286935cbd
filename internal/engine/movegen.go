package engine

type direction struct {
	dx, dy int
}

var (
	knightOffsets = []direction{{-2, -1}, {-1, -2}, {1, -2}, {2, -1}, {2, 1}, {1, 2}, {-1, 2}, {-2, 1}}
	bishopDirs    = []direction{{1, -1}, {-1, 1}, {-1, -1}, {1, 1}}
	rookDirs      = []direction{{0, -1}, {0, 1}, {-1, 0}, {1, 0}}
	queenDirs     = append(append([]direction{}, bishopDirs...), rookDirs...)
	kingOffsets   = []direction{{1, 1}, {1, 0}, {1, -1}, {0, -1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}}
)

// PseudoLegalMoves returns the destinations reachable by the raw movement
// pattern of the piece on from, without regard to the safety of its own king.
// history is only consulted for en passant. An empty square yields no moves.
func PseudoLegalMoves(b Board, from Position, history []Move) []Position {
	piece := b.At(from)
	if piece == nil {
		return []Position{}
	}
	switch piece.Type {
	case Pawn:
		return pawnMoves(&b, from, *piece, history)
	case Knight:
		return stepMoves(&b, from, *piece, knightOffsets)
	case Bishop:
		return slidingMoves(&b, from, *piece, bishopDirs)
	case Rook:
		return slidingMoves(&b, from, *piece, rookDirs)
	case Queen:
		return slidingMoves(&b, from, *piece, queenDirs)
	case King:
		return stepMoves(&b, from, *piece, kingOffsets)
	default:
		return []Position{}
	}
}

// canLand is true for an empty square or one holding an enemy piece.
func canLand(b *Board, to Position, color Color) bool {
	if !to.InBounds() {
		return false
	}
	target := b.At(to)
	return target == nil || target.Color != color
}

func stepMoves(b *Board, from Position, piece Piece, offsets []direction) []Position {
	moves := []Position{}
	for _, d := range offsets {
		to := from.offset(d.dx, d.dy)
		if canLand(b, to, piece.Color) {
			moves = append(moves, to)
		}
	}
	return moves
}

func slidingMoves(b *Board, from Position, piece Piece, dirs []direction) []Position {
	moves := []Position{}
	for _, d := range dirs {
		to := from.offset(d.dx, d.dy)
		for to.InBounds() {
			target := b.At(to)
			if target != nil {
				if target.Color != piece.Color {
					moves = append(moves, to)
				}
				break
			}
			moves = append(moves, to)
			to = to.offset(d.dx, d.dy)
		}
	}
	return moves
}

func pawnMoves(b *Board, from Position, piece Piece, history []Move) []Position {
	moves := []Position{}
	dir := piece.Color.forward()

	one := from.offset(dir, 0)
	if b.IsEmpty(one) {
		moves = append(moves, one)
		two := from.offset(2*dir, 0)
		if !piece.HasMoved && from.X == piece.Color.pawnRank() && b.IsEmpty(two) {
			moves = append(moves, two)
		}
	}

	for _, dy := range []int{-1, 1} {
		to := from.offset(dir, dy)
		if target := b.At(to); target != nil && target.Color != piece.Color {
			moves = append(moves, to)
		}
	}

	if to, ok := enPassantTarget(b, from, piece, history); ok {
		moves = append(moves, to)
	}
	return moves
}
