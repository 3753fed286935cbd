package engine

type Color string

const (
	White Color = "white"
	Black Color = "black"
)

func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

// forward is the rank delta of a pawn step; white moves toward rank 0.
func (c Color) forward() int {
	if c == White {
		return -1
	}
	return 1
}

func (c Color) backRank() int {
	if c == White {
		return 7
	}
	return 0
}

func (c Color) pawnRank() int {
	if c == White {
		return 6
	}
	return 1
}

// promotionRank is the opponent's back rank.
func (c Color) promotionRank() int {
	return c.Opponent().backRank()
}

func (c Color) Valid() bool {
	return c == White || c == Black
}

type PieceType string

const (
	King   PieceType = "king"
	Queen  PieceType = "queen"
	Rook   PieceType = "rook"
	Bishop PieceType = "bishop"
	Knight PieceType = "knight"
	Pawn   PieceType = "pawn"
)

// Notation is the letter used for the piece in move records. Pawns have none.
func (p PieceType) Notation() string {
	switch p {
	case King:
		return "K"
	case Queen:
		return "Q"
	case Rook:
		return "R"
	case Bishop:
		return "B"
	case Knight:
		return "N"
	}
	return ""
}

// CanPromoteTo reports whether a pawn may become p.
func (p PieceType) CanPromoteTo() bool {
	switch p {
	case Queen, Rook, Bishop, Knight:
		return true
	}
	return false
}

// ParsePieceType accepts the full name or the notation letter of a promotable piece.
func ParsePieceType(s string) (PieceType, bool) {
	switch s {
	case "queen", "q", "Q":
		return Queen, true
	case "rook", "r", "R":
		return Rook, true
	case "bishop", "b", "B":
		return Bishop, true
	case "knight", "n", "N":
		return Knight, true
	}
	return "", false
}

var glyphs = map[PieceType][2]string{
	King:   {"♔", "♚"},
	Queen:  {"♕", "♛"},
	Rook:   {"♖", "♜"},
	Bishop: {"♗", "♝"},
	Knight: {"♘", "♞"},
	Pawn:   {"♙", "♟"},
}

// Piece is a value; ID stays the same for the whole game, across every board copy.
type Piece struct {
	ID       int       `json:"id"`
	Type     PieceType `json:"type"`
	Color    Color     `json:"color"`
	HasMoved bool      `json:"hasMoved"`
	Notation string    `json:"notation"`
}

func (p Piece) Glyph() string {
	g, ok := glyphs[p.Type]
	if !ok {
		return "?"
	}
	if p.Color == White {
		return g[0]
	}
	return g[1]
}
