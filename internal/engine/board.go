package engine

import "fmt"

const Size = 8

// Position addresses a square. X is the rank index (0 is black's back row,
// 7 is white's) and Y is the file index (0 is the a-file).
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Position) InBounds() bool {
	return p.X >= 0 && p.X < Size && p.Y >= 0 && p.Y < Size
}

func (p Position) offset(dx, dy int) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// Square returns the algebraic name of the square, e.g. "e4".
func (p Position) Square() string {
	return fmt.Sprintf("%c%d", 'a'+p.Y, Size-p.X)
}

func (p Position) String() string {
	if !p.InBounds() {
		return fmt.Sprintf("(%d,%d)", p.X, p.Y)
	}
	return p.Square()
}

// ParseSquare converts an algebraic square name into a Position.
func ParseSquare(s string) (Position, bool) {
	if len(s) != 2 {
		return Position{}, false
	}
	file, rank := s[0], s[1]
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return Position{}, false
	}
	return Position{X: Size - int(rank-'0'), Y: int(file - 'a')}, true
}

// InBounds reports whether pos lies on the board.
func InBounds(pos Position) bool {
	return pos.InBounds()
}

// Board is an 8x8 grid indexed [rank][file]. Treat it as an immutable
// snapshot: every operation that changes it works on a Clone.
type Board [Size][Size]*Piece

// PlacedPiece pairs a piece with the square it stands on.
type PlacedPiece struct {
	Piece    Piece
	Position Position
}

// At returns the piece on pos, or nil when pos is empty or off the board.
func (b *Board) At(pos Position) *Piece {
	if !pos.InBounds() {
		return nil
	}
	return b[pos.X][pos.Y]
}

// IsEmpty is true iff pos is on the board and holds no piece.
func (b *Board) IsEmpty(pos Position) bool {
	return pos.InBounds() && b[pos.X][pos.Y] == nil
}

func (b *Board) set(pos Position, p *Piece) {
	b[pos.X][pos.Y] = p
}

// Clone returns a deep copy that shares no piece pointers with b.
func (b *Board) Clone() Board {
	var out Board
	for x := 0; x < Size; x++ {
		for y := 0; y < Size; y++ {
			if p := b[x][y]; p != nil {
				cp := *p
				out[x][y] = &cp
			}
		}
	}
	return out
}

// PiecesOf lists every piece of the given color in rank-major order.
func (b *Board) PiecesOf(color Color) []PlacedPiece {
	var pieces []PlacedPiece
	for x := 0; x < Size; x++ {
		for y := 0; y < Size; y++ {
			if p := b[x][y]; p != nil && p.Color == color {
				pieces = append(pieces, PlacedPiece{Piece: *p, Position: Position{X: x, Y: y}})
			}
		}
	}
	return pieces
}

// FindKing locates the king of color. ok is false on constructed boards without one.
func (b *Board) FindKing(color Color) (Position, bool) {
	for x := 0; x < Size; x++ {
		for y := 0; y < Size; y++ {
			if p := b[x][y]; p != nil && p.Color == color && p.Type == King {
				return Position{X: x, Y: y}, true
			}
		}
	}
	return Position{}, false
}

var backRow = [Size]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// InitialBoard returns the standard starting position. Piece ids are
// 1-8 and 11-18 for black, 61-68 and 71-78 for white.
func InitialBoard() Board {
	var b Board
	for y := 0; y < Size; y++ {
		b[0][y] = newPiece(1+y, backRow[y], Black)
		b[1][y] = newPiece(11+y, Pawn, Black)
		b[6][y] = newPiece(61+y, Pawn, White)
		b[7][y] = newPiece(71+y, backRow[y], White)
	}
	return b
}

func newPiece(id int, t PieceType, c Color) *Piece {
	return &Piece{ID: id, Type: t, Color: c, Notation: t.Notation()}
}
