package engine

import "fmt"

// Move is one accepted ply. Piece is the mover as it was before the move.
type Move struct {
	From          Position  `json:"from"`
	To            Position  `json:"to"`
	Piece         Piece     `json:"piece"`
	CapturedPiece *Piece    `json:"capturedPiece"`
	IsCastle      bool      `json:"isCastle,omitempty"`
	IsPromoted    bool      `json:"isPromoted,omitempty"`
	PromotedTo    PieceType `json:"promotedTo,omitempty"`
}

// newMove builds the history record for a move that has not been applied yet.
func newMove(b *Board, from, to Position) Move {
	piece := *b.At(from)
	m := Move{
		From:     from,
		To:       to,
		Piece:    piece,
		IsCastle: isCastleMove(piece, from, to),
	}
	if captured := b.At(to); captured != nil {
		cp := *captured
		m.CapturedPiece = &cp
	} else if isEnPassantCapture(b, piece, from, to) {
		cp := *b.At(Position{X: from.X, Y: to.Y})
		m.CapturedPiece = &cp
	}
	return m
}

// Notation renders m as the ply-th entry of a move list, e.g. "3. Nxf6",
// "4. dxe5" or "5. o-o".
func Notation(ply int, m Move) string {
	if m.IsCastle {
		if m.To.Y < m.From.Y {
			return fmt.Sprintf("%d. o-o-o", ply)
		}
		return fmt.Sprintf("%d. o-o", ply)
	}
	capture := ""
	if m.CapturedPiece != nil {
		capture = "x"
		if m.Piece.Type == Pawn {
			capture = "dx"
		}
	}
	return fmt.Sprintf("%d. %s%s%s", ply, m.Piece.Notation, capture, m.To.Square())
}

// HistoryNotation renders the whole history, one entry per ply.
func HistoryNotation(history []Move) []string {
	out := make([]string, 0, len(history))
	for i, m := range history {
		out = append(out, Notation(i+1, m))
	}
	return out
}
