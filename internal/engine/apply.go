package engine

// Sound classifies what a move did, for clients that play audio cues.
type Sound string

const (
	SoundNone    Sound = ""
	SoundMove    Sound = "move"
	SoundCapture Sound = "capture"
	SoundCastle  Sound = "castle"
	SoundCheck   Sound = "check"
)

// ApplyMove returns a new board with the piece on from moved to to. Castling
// also relocates the rook and en passant also removes the captured pawn.
// notify, when non-nil, receives the sound of the move; pass nil for a silent
// simulation. An empty from square returns b unchanged.
func ApplyMove(b Board, from, to Position, notify func(Sound)) Board {
	piece := b.At(from)
	if piece == nil {
		return b
	}
	next := b.Clone()
	sound := SoundMove
	if next.At(to) != nil {
		sound = SoundCapture
	}

	switch {
	case isEnPassantCapture(&b, *piece, from, to):
		next.set(Position{X: from.X, Y: to.Y}, nil)
		sound = SoundCapture
	case isCastleMove(*piece, from, to):
		rookFrom, rookTo := castleRookSquares(from, to)
		if rook := next.At(rookFrom); rook != nil {
			relocated := *rook
			relocated.HasMoved = true
			next.set(rookFrom, nil)
			next.set(rookTo, &relocated)
		}
		sound = SoundCastle
	}

	moved := *piece
	moved.HasMoved = true
	next.set(from, nil)
	next.set(to, &moved)

	if notify != nil {
		notify(sound)
	}
	return next
}
