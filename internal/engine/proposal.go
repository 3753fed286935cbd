package engine

// Proposal is the result of ProposeMove: either Applied or PendingPromotion.
type Proposal interface {
	proposal()
}

// Applied is a finished move: the new board, the history with the move
// appended, and the status of the side to move next.
type Applied struct {
	Board   Board
	History []Move
	Move    Move
	Status  Status
	Sound   Sound
}

// PendingPromotion is a pawn move onto the last rank that still needs a
// piece choice. Board has the pawn relocated but not yet replaced; nothing
// is recorded in history until CompletePromotion.
type PendingPromotion struct {
	Board   Board
	Move    Move
	before  Board
	history []Move
	sound   Sound
}

func (Applied) proposal()          {}
func (PendingPromotion) proposal() {}

// ProposeMove validates from -> to against the legal moves and applies it.
// ok is false, and nothing changes, when the move is illegal.
func ProposeMove(b Board, history []Move, from, to Position) (Proposal, bool) {
	if !IsLegalMove(b, from, to, history) {
		return nil, false
	}
	m := newMove(&b, from, to)
	var sound Sound
	next := ApplyMove(b, from, to, func(s Sound) { sound = s })

	if IsPromotionMove(m.Piece, to) {
		return PendingPromotion{
			Board:   next,
			Move:    m,
			before:  b,
			history: history,
			sound:   sound,
		}, true
	}
	return finish(next, history, m, sound), true
}

// CompletePromotion replaces the pawn with t and records the move. ok is
// false when t is not a piece a pawn may become.
func CompletePromotion(p PendingPromotion, t PieceType) (Applied, bool) {
	if !t.CanPromoteTo() {
		return Applied{}, false
	}
	next := Promote(p.Board, t, p.Move.To, p.Move.Piece.Color)
	m := p.Move
	m.IsPromoted = true
	m.PromotedTo = t
	return finish(next, p.history, m, p.sound), true
}

// CancelPromotion abandons the move and returns the board it started from.
func CancelPromotion(p PendingPromotion) Board {
	return p.before
}

// Play proposes a move and, if it promotes, completes it with promotion.
// A promotion given for a move that does not reach the last rank is
// ignored; a promoting move without a valid choice is rejected.
func Play(b Board, history []Move, from, to Position, promotion PieceType) (Applied, bool) {
	proposal, ok := ProposeMove(b, history, from, to)
	if !ok {
		return Applied{}, false
	}
	switch p := proposal.(type) {
	case Applied:
		return p, true
	case PendingPromotion:
		return CompletePromotion(p, promotion)
	}
	return Applied{}, false
}

func finish(next Board, history []Move, m Move, sound Sound) Applied {
	h := make([]Move, len(history), len(history)+1)
	copy(h, history)
	h = append(h, m)
	st := Evaluate(next, m.Piece.Color.Opponent(), h)
	if st.Check && !st.Checkmate {
		sound = SoundCheck
	}
	return Applied{Board: next, History: h, Move: m, Status: st, Sound: sound}
}
