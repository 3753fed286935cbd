package engine

import (
	"strconv"
	"strings"
)

var fenLetters = map[PieceType]byte{
	King: 'k', Queen: 'q', Rook: 'r', Bishop: 'b', Knight: 'n', Pawn: 'p',
}

// FEN exports the position in Forsyth-Edwards notation. Castling rights are
// derived from the moved flags and the en passant square from the last move.
func FEN(b Board, toMove Color, history []Move) string {
	var sb strings.Builder
	for x := 0; x < Size; x++ {
		empty := 0
		for y := 0; y < Size; y++ {
			p := b[x][y]
			if p == nil {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			c := fenLetters[p.Type]
			if p.Color == White {
				c -= 'a' - 'A'
			}
			sb.WriteByte(c)
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if x < Size-1 {
			sb.WriteByte('/')
		}
	}

	side := "w"
	if toMove == Black {
		side = "b"
	}
	fields := []string{sb.String(), side, castlingField(&b), enPassantField(history),
		strconv.Itoa(halfmoveClock(history)), strconv.Itoa(len(history)/2 + 1)}
	return strings.Join(fields, " ")
}

func castlingField(b *Board) string {
	var sb strings.Builder
	for _, c := range []Color{White, Black} {
		king := b.At(Position{X: c.backRank(), Y: kingFile})
		if king == nil || king.Type != King || king.Color != c || king.HasMoved {
			continue
		}
		for _, side := range []struct {
			file   int
			letter byte
		}{{kingsideRookFile, 'k'}, {queensideRookFile, 'q'}} {
			rook := b.At(Position{X: c.backRank(), Y: side.file})
			if rook == nil || rook.Type != Rook || rook.Color != c || rook.HasMoved {
				continue
			}
			letter := side.letter
			if c == White {
				letter -= 'a' - 'A'
			}
			sb.WriteByte(letter)
		}
	}
	if sb.Len() == 0 {
		return "-"
	}
	return sb.String()
}

func enPassantField(history []Move) string {
	if len(history) == 0 {
		return "-"
	}
	last := history[len(history)-1]
	if last.Piece.Type != Pawn || abs(last.To.X-last.From.X) != 2 {
		return "-"
	}
	return Position{X: (last.From.X + last.To.X) / 2, Y: last.To.Y}.Square()
}

func halfmoveClock(history []Move) int {
	n := 0
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Piece.Type == Pawn || history[i].CapturedPiece != nil {
			break
		}
		n++
	}
	return n
}
