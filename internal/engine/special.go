package engine

const (
	queensideRookFile = 0
	kingsideRookFile  = 7
	kingFile          = 4
)

// CastleRights holds independent eligibility for each side. Left is queenside.
type CastleRights struct {
	Left  bool `json:"left"`
	Right bool `json:"right"`
}

// CanCastle evaluates castling for color on b. A failure on one side never
// affects the other.
func CanCastle(b Board, color Color) CastleRights {
	var rights CastleRights
	home := Position{X: color.backRank(), Y: kingFile}
	king := b.At(home)
	if king == nil || king.Type != King || king.Color != color || king.HasMoved {
		return rights
	}
	if IsSquareAttacked(b, home, color.Opponent()) {
		return rights
	}
	rights.Left = canCastleSide(&b, *king, home, queensideRookFile, []int{1, 2, 3}, []int{3, 2})
	rights.Right = canCastleSide(&b, *king, home, kingsideRookFile, []int{5, 6}, []int{5, 6})
	return rights
}

// canCastleSide checks the rook on rookFile, the corridor files that must be
// empty, and the files the king passes through or lands on.
func canCastleSide(b *Board, king Piece, home Position, rookFile int, corridor, path []int) bool {
	rook := b.At(Position{X: home.X, Y: rookFile})
	if rook == nil || rook.Type != Rook || rook.Color != king.Color || rook.HasMoved {
		return false
	}
	for _, y := range corridor {
		if !b.IsEmpty(Position{X: home.X, Y: y}) {
			return false
		}
	}
	for _, y := range path {
		if !WouldBeSafe(*b, king, home, Position{X: home.X, Y: y}) {
			return false
		}
	}
	return true
}

// castleSquares returns the king destinations that castling would produce.
func castleSquares(b Board, color Color) []Position {
	rights := CanCastle(b, color)
	rank := color.backRank()
	var squares []Position
	if rights.Left {
		squares = append(squares, Position{X: rank, Y: 2})
	}
	if rights.Right {
		squares = append(squares, Position{X: rank, Y: 6})
	}
	return squares
}

func isCastleMove(piece Piece, from, to Position) bool {
	return piece.Type == King && from.X == to.X && abs(to.Y-from.Y) == 2
}

// castleRookSquares gives the rook relocation for a king move of two files.
func castleRookSquares(from, to Position) (Position, Position) {
	if to.Y < from.Y {
		return Position{X: from.X, Y: queensideRookFile}, Position{X: from.X, Y: from.Y - 1}
	}
	return Position{X: from.X, Y: kingsideRookFile}, Position{X: from.X, Y: from.Y + 1}
}

// enPassantTarget reports the capture square available to the pawn on from.
// Only the most recent history entry counts, and the pawn beside us must be
// the very piece recorded there.
func enPassantTarget(b *Board, from Position, pawn Piece, history []Move) (Position, bool) {
	if len(history) == 0 {
		return Position{}, false
	}
	last := history[len(history)-1]
	if last.Piece.Type != Pawn || last.Piece.Color == pawn.Color {
		return Position{}, false
	}
	if abs(last.To.X-last.From.X) != 2 || last.To.X != from.X || abs(last.To.Y-from.Y) != 1 {
		return Position{}, false
	}
	beside := b.At(last.To)
	if beside == nil || beside.ID != last.Piece.ID || beside.Type != Pawn {
		return Position{}, false
	}
	to := Position{X: from.X + pawn.Color.forward(), Y: last.To.Y}
	if !b.IsEmpty(to) {
		return Position{}, false
	}
	return to, true
}

// isEnPassantCapture recognises a diagonal pawn move onto an empty square.
func isEnPassantCapture(b *Board, piece Piece, from, to Position) bool {
	if piece.Type != Pawn || from.Y == to.Y || !b.IsEmpty(to) {
		return false
	}
	side := b.At(Position{X: from.X, Y: to.Y})
	return side != nil && side.Type == Pawn && side.Color != piece.Color
}

// IsPromotionMove is true when a pawn lands on the opponent's back rank.
func IsPromotionMove(piece Piece, to Position) bool {
	return piece.Type == Pawn && to.X == piece.Color.promotionRank()
}

// Promote returns a copy of b with the piece on pos turned into t. The piece
// keeps its id.
func Promote(b Board, t PieceType, pos Position, color Color) Board {
	next := b.Clone()
	piece := next.At(pos)
	if piece == nil {
		return next
	}
	promoted := *piece
	promoted.Type = t
	promoted.Notation = t.Notation()
	promoted.Color = color
	next.set(pos, &promoted)
	return next
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
