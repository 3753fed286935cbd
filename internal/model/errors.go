package model

import "errors"

var (
	ErrGameFull            = errors.New("game is full")
	ErrNotInGame           = errors.New("player not in game")
	ErrGameNotInProgress   = errors.New("game is not in progress")
	ErrGameInProgress      = errors.New("game is still in progress")
	ErrNotYourTurn         = errors.New("not your turn")
	ErrNotYourPiece        = errors.New("no piece of yours on that square")
	ErrIllegalMove         = errors.New("invalid move, not legal")
	ErrPromotionPending    = errors.New("a promotion choice is pending")
	ErrNoPendingPromotion  = errors.New("no promotion pending")
	ErrInvalidPromotion    = errors.New("invalid promotion piece")
	ErrNoDrawOffer         = errors.New("no draw offer to accept")
	ErrDrawOfferedByPlayer = errors.New("cannot accept your own draw offer")
)
