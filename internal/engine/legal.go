package engine

import "golang.org/x/exp/slices"

// WouldBeSafe simulates piece moving from -> to on a throwaway copy and
// reports whether its own king is unattacked afterwards. Only the
// opponent's pseudo-legal moves are consulted, never its legal ones.
func WouldBeSafe(b Board, piece Piece, from, to Position) bool {
	next := ApplyMove(b, from, to, nil)
	king, ok := next.FindKing(piece.Color)
	if !ok {
		return true
	}
	return !IsSquareAttacked(next, king, piece.Color.Opponent())
}

// IsSquareAttacked is true iff some piece of color by has a pseudo-legal
// move onto target.
func IsSquareAttacked(b Board, target Position, by Color) bool {
	for _, attacker := range b.PiecesOf(by) {
		if slices.Contains(PseudoLegalMoves(b, attacker.Position, nil), target) {
			return true
		}
	}
	return false
}

// IsKingInCheck reports whether the king standing on kingPosition is attacked.
// A square without a king is never in check.
func IsKingInCheck(b Board, kingPosition Position) bool {
	king := b.At(kingPosition)
	if king == nil || king.Type != King {
		return false
	}
	return IsSquareAttacked(b, kingPosition, king.Color.Opponent())
}

// LegalMoves filters the pseudo-legal moves of the piece on position through
// the king safety check, and adds castling destinations for the king.
func LegalMoves(b Board, position Position, history []Move) []Position {
	piece := b.At(position)
	if piece == nil {
		return []Position{}
	}
	moves := []Position{}
	for _, to := range PseudoLegalMoves(b, position, history) {
		if WouldBeSafe(b, *piece, position, to) {
			moves = append(moves, to)
		}
	}
	if piece.Type == King && position == (Position{X: piece.Color.backRank(), Y: kingFile}) {
		moves = append(moves, castleSquares(b, piece.Color)...)
	}
	return moves
}

// IsLegalMove reports whether to is among the legal destinations from from.
func IsLegalMove(b Board, from, to Position, history []Move) bool {
	if !from.InBounds() || !to.InBounds() {
		return false
	}
	return slices.Contains(LegalMoves(b, from, history), to)
}

// LegalMovesForColor maps every square of color that has a move to its
// destinations.
func LegalMovesForColor(b Board, color Color, history []Move) map[Position][]Position {
	all := make(map[Position][]Position)
	for _, p := range b.PiecesOf(color) {
		if moves := LegalMoves(b, p.Position, history); len(moves) > 0 {
			all[p.Position] = moves
		}
	}
	return all
}

// HasAnyLegalMove is false when color is checkmated or stalemated.
func HasAnyLegalMove(b Board, color Color, history []Move) bool {
	for _, p := range b.PiecesOf(color) {
		if len(LegalMoves(b, p.Position, history)) > 0 {
			return true
		}
	}
	return false
}

// IsCheckmate is true when color's king is in check and color has no legal move.
func IsCheckmate(b Board, color Color, history []Move) bool {
	king, ok := b.FindKing(color)
	if !ok || !IsKingInCheck(b, king) {
		return false
	}
	return !HasAnyLegalMove(b, color, history)
}
