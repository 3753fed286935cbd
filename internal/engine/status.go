package engine

// GameStatus is the lifecycle of a game. CHECKMATE, STALEMATE, RESIGNED and
// DRAW are terminal.
type GameStatus string

const (
	StatusWaitingForPlayer GameStatus = "WAITING_FOR_PLAYER"
	StatusInProgress       GameStatus = "IN_PROGRESS"
	StatusCheckmate        GameStatus = "CHECKMATE"
	StatusStalemate        GameStatus = "STALEMATE"
	StatusResigned         GameStatus = "RESIGNED"
	StatusDraw             GameStatus = "DRAW"
)

func (s GameStatus) IsTerminal() bool {
	switch s {
	case StatusCheckmate, StatusStalemate, StatusResigned, StatusDraw:
		return true
	}
	return false
}

// Status is the board-derived outcome for the side about to move.
type Status struct {
	Check     bool  `json:"check"`
	Checkmate bool  `json:"checkmate"`
	Stalemate bool  `json:"stalemate"`
	Winner    Color `json:"winner,omitempty"`
}

// Evaluate computes check, checkmate and stalemate for toMove.
func Evaluate(b Board, toMove Color, history []Move) Status {
	var st Status
	if king, ok := b.FindKing(toMove); ok {
		st.Check = IsKingInCheck(b, king)
	}
	if HasAnyLegalMove(b, toMove, history) {
		return st
	}
	if st.Check {
		st.Checkmate = true
		st.Winner = toMove.Opponent()
	} else {
		st.Stalemate = true
	}
	return st
}

// Advance moves current forward after a board change. Terminal states stay
// put, and resignations and draws are never derived from the board.
func Advance(current GameStatus, st Status) GameStatus {
	if current.IsTerminal() || current == StatusWaitingForPlayer {
		return current
	}
	switch {
	case st.Checkmate:
		return StatusCheckmate
	case st.Stalemate:
		return StatusStalemate
	}
	return StatusInProgress
}
